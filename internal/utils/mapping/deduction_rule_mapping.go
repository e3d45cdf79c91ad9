package mapping

import (
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/models"
)

// ToModelDeductionRule converts a domain DeductionRuleTemplate to a model DeductionRuleTemplate
func ToModelDeductionRule(d domain.DeductionRuleTemplate) models.DeductionRuleTemplate {
	m := models.DeductionRuleTemplate{
		RuleID:          d.RuleID,
		CompanyID:       d.CompanyID,
		Name:            d.Name,
		Kind:            models.RuleKind(d.Kind),
		CalculationType: models.CalculationType(d.CalculationType),
		Amount:          d.Amount,
		Percentage:      d.Percentage,
		PerMileRate:     d.PerMileRate,
		Frequency:       models.RuleFrequency(d.Frequency),
		DriverID:        d.DriverID,
		MinGrossPay:     d.MinGrossPay,
		MaxAmount:       d.MaxAmount,
		GoalAmount:      d.GoalAmount,
		CurrentAmount:   d.CurrentAmount,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.DriverTypeScope != nil {
		scope := models.DriverType(*d.DriverTypeScope)
		m.DriverTypeScope = &scope
	}
	return m
}

// ToDomainDeductionRule converts a model DeductionRuleTemplate to a domain DeductionRuleTemplate
func ToDomainDeductionRule(m models.DeductionRuleTemplate) domain.DeductionRuleTemplate {
	d := domain.DeductionRuleTemplate{
		RuleID:          m.RuleID,
		CompanyID:       m.CompanyID,
		Name:            m.Name,
		Kind:            domain.RuleKind(m.Kind),
		CalculationType: domain.CalculationType(m.CalculationType),
		Amount:          m.Amount,
		Percentage:      m.Percentage,
		PerMileRate:     m.PerMileRate,
		Frequency:       domain.RuleFrequency(m.Frequency),
		DriverID:        m.DriverID,
		MinGrossPay:     m.MinGrossPay,
		MaxAmount:       m.MaxAmount,
		GoalAmount:      m.GoalAmount,
		CurrentAmount:   m.CurrentAmount,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.DriverTypeScope != nil {
		scope := domain.DriverType(*m.DriverTypeScope)
		d.DriverTypeScope = &scope
	}
	return d
}

// ToDomainDeductionRuleSlice converts a slice of model templates to domain templates
func ToDomainDeductionRuleSlice(ms []models.DeductionRuleTemplate) []domain.DeductionRuleTemplate {
	ds := make([]domain.DeductionRuleTemplate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDeductionRule(m)
	}
	return ds
}

// ToDomainRuleApplication converts a model RuleApplication to a domain RuleApplication
func ToDomainRuleApplication(m models.RuleApplication) domain.RuleApplication {
	return domain.RuleApplication{
		ApplicationID: m.ApplicationID,
		RuleID:        m.RuleID,
		DriverID:      m.DriverID,
		SettlementID:  m.SettlementID,
		AppliedAt:     m.AppliedAt,
	}
}

// ToDomainRuleApplicationSlice converts a slice of model markers to domain markers
func ToDomainRuleApplicationSlice(ms []models.RuleApplication) []domain.RuleApplication {
	ds := make([]domain.RuleApplication, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRuleApplication(m)
	}
	return ds
}
