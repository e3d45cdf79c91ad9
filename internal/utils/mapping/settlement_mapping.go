package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/models"
)

// ToModelSettlement converts a domain Settlement to a model Settlement. The
// load linkage and calculation log are serialized to JSONB.
func ToModelSettlement(d domain.Settlement) (models.Settlement, error) {
	loadIDs, err := json.Marshal(d.LoadIDs)
	if err != nil {
		return models.Settlement{}, fmt.Errorf("failed to marshal load IDs: %w", err)
	}

	var calcLog []byte
	if d.CalcLog != nil {
		calcLog, err = json.Marshal(d.CalcLog)
		if err != nil {
			return models.Settlement{}, fmt.Errorf("failed to marshal calculation log: %w", err)
		}
	}

	return models.Settlement{
		SettlementID:     d.SettlementID,
		CompanyID:        d.CompanyID,
		DriverID:         d.DriverID,
		SettlementNumber: d.SettlementNumber,
		PeriodStart:      d.PeriodStart,
		PeriodEnd:        d.PeriodEnd,
		LoadIDs:          loadIDs,
		GrossPay:         d.GrossPay,
		TotalAdditions:   d.TotalAdditions,
		TotalDeductions:  d.TotalDeductions,
		TotalAdvances:    d.TotalAdvances,
		NetPay:           d.NetPay,
		CarriedForward:   d.CarriedForward,
		Status:           models.SettlementStatus(d.Status),
		PaymentMethod:    d.PaymentMethod,
		Notes:            d.Notes,
		CalculatedAt:     d.CalculatedAt,
		CalcLog:          calcLog,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainSettlement converts a model Settlement to a domain Settlement.
func ToDomainSettlement(m models.Settlement) (domain.Settlement, error) {
	var loadIDs []string
	if len(m.LoadIDs) > 0 {
		if err := json.Unmarshal(m.LoadIDs, &loadIDs); err != nil {
			return domain.Settlement{}, fmt.Errorf("failed to unmarshal load IDs: %w", err)
		}
	}

	var calcLog *domain.CalculationLog
	if len(m.CalcLog) > 0 {
		calcLog = &domain.CalculationLog{}
		if err := json.Unmarshal(m.CalcLog, calcLog); err != nil {
			return domain.Settlement{}, fmt.Errorf("failed to unmarshal calculation log: %w", err)
		}
	}

	return domain.Settlement{
		SettlementID:     m.SettlementID,
		CompanyID:        m.CompanyID,
		DriverID:         m.DriverID,
		SettlementNumber: m.SettlementNumber,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		LoadIDs:          loadIDs,
		GrossPay:         m.GrossPay,
		TotalAdditions:   m.TotalAdditions,
		TotalDeductions:  m.TotalDeductions,
		TotalAdvances:    m.TotalAdvances,
		NetPay:           m.NetPay,
		CarriedForward:   m.CarriedForward,
		Status:           domain.SettlementStatus(m.Status),
		PaymentMethod:    m.PaymentMethod,
		Notes:            m.Notes,
		CalculatedAt:     m.CalculatedAt,
		CalcLog:          calcLog,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToModelLineItem converts a domain SettlementLineItem to a model SettlementLineItem
func ToModelLineItem(d domain.SettlementLineItem) models.SettlementLineItem {
	return models.SettlementLineItem{
		LineItemID:   d.LineItemID,
		SettlementID: d.SettlementID,
		Kind:         models.RuleKind(d.Kind),
		Category:     models.LineItemCategory(d.Category),
		Description:  d.Description,
		Amount:       d.Amount,
		SourceRuleID: d.SourceRuleID,
		AdvanceID:    d.AdvanceID,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLineItem converts a model SettlementLineItem to a domain SettlementLineItem
func ToDomainLineItem(m models.SettlementLineItem) domain.SettlementLineItem {
	return domain.SettlementLineItem{
		LineItemID:   m.LineItemID,
		SettlementID: m.SettlementID,
		Kind:         domain.RuleKind(m.Kind),
		Category:     domain.LineItemCategory(m.Category),
		Description:  m.Description,
		Amount:       m.Amount,
		SourceRuleID: m.SourceRuleID,
		AdvanceID:    m.AdvanceID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineItemSlice converts a slice of model line items to domain line items
func ToDomainLineItemSlice(ms []models.SettlementLineItem) []domain.SettlementLineItem {
	ds := make([]domain.SettlementLineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}

// ToDomainStatusEvent converts a model SettlementStatusEvent to a domain SettlementStatusEvent
func ToDomainStatusEvent(m models.SettlementStatusEvent) domain.SettlementStatusEvent {
	return domain.SettlementStatusEvent{
		EventID:      m.EventID,
		SettlementID: m.SettlementID,
		FromStatus:   domain.SettlementStatus(m.FromStatus),
		ToStatus:     domain.SettlementStatus(m.ToStatus),
		ActorUserID:  m.ActorUserID,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// ToDomainStatusEventSlice converts a slice of model status events to domain events
func ToDomainStatusEventSlice(ms []models.SettlementStatusEvent) []domain.SettlementStatusEvent {
	ds := make([]domain.SettlementStatusEvent, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStatusEvent(m)
	}
	return ds
}
