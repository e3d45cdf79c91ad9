package mapping

import (
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/models"
)

// ToModelAdvance converts a domain DriverAdvance to a model DriverAdvance
func ToModelAdvance(d domain.DriverAdvance) models.DriverAdvance {
	return models.DriverAdvance{
		AdvanceID:    d.AdvanceID,
		CompanyID:    d.CompanyID,
		DriverID:     d.DriverID,
		Amount:       d.Amount,
		RequestDate:  d.RequestDate,
		Status:       models.AdvanceStatus(d.Status),
		Notes:        d.Notes,
		SettlementID: d.SettlementID,
		DecidedAt:    d.DecidedAt,
		DecidedBy:    d.DecidedBy,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAdvance converts a model DriverAdvance to a domain DriverAdvance
func ToDomainAdvance(m models.DriverAdvance) domain.DriverAdvance {
	return domain.DriverAdvance{
		AdvanceID:    m.AdvanceID,
		CompanyID:    m.CompanyID,
		DriverID:     m.DriverID,
		Amount:       m.Amount,
		RequestDate:  m.RequestDate,
		Status:       domain.AdvanceStatus(m.Status),
		Notes:        m.Notes,
		SettlementID: m.SettlementID,
		DecidedAt:    m.DecidedAt,
		DecidedBy:    m.DecidedBy,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAdvanceSlice converts a slice of model advances to domain advances
func ToDomainAdvanceSlice(ms []models.DriverAdvance) []domain.DriverAdvance {
	ds := make([]domain.DriverAdvance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAdvance(m)
	}
	return ds
}
