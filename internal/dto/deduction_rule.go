package dto

import (
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDeductionRuleRequest defines data for creating a deduction rule template.
// Exactly one of amount, percentage, or perMileRate must be set, matching the
// calculation type.
type CreateDeductionRuleRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Kind            domain.RuleKind        `json:"kind" binding:"required"`
	CalculationType domain.CalculationType `json:"calculationType" binding:"required,oneof=FIXED PERCENTAGE PER_MILE"`
	Amount          *decimal.Decimal       `json:"amount"`
	Percentage      *decimal.Decimal       `json:"percentage"`
	PerMileRate     *decimal.Decimal       `json:"perMileRate"`
	Frequency       domain.RuleFrequency   `json:"frequency" binding:"required,oneof=PER_SETTLEMENT WEEKLY BIWEEKLY MONTHLY ONE_TIME"`
	DriverTypeScope *domain.DriverType     `json:"driverTypeScope" binding:"omitempty,oneof=COMPANY_DRIVER OWNER_OPERATOR LEASE_OPERATOR"`
	DriverID        *string                `json:"driverID"`
	MinGrossPay     *decimal.Decimal       `json:"minGrossPay"`
	MaxAmount       *decimal.Decimal       `json:"maxAmount"`
	GoalAmount      *decimal.Decimal       `json:"goalAmount"`
}

// UpdateDeductionRuleRequest defines data for updating a template.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateDeductionRuleRequest struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	Percentage  *decimal.Decimal `json:"percentage"`
	PerMileRate *decimal.Decimal `json:"perMileRate"`
	MinGrossPay *decimal.Decimal `json:"minGrossPay"`
	MaxAmount   *decimal.Decimal `json:"maxAmount"`
	GoalAmount  *decimal.Decimal `json:"goalAmount"`
	IsActive    *bool            `json:"isActive"`
}

// ListDeductionRulesParams defines query parameters for listing templates.
type ListDeductionRulesParams struct {
	IncludeInactive bool `form:"includeInactive,default=false"`
	Limit           int  `form:"limit,default=20"`
	Offset          int  `form:"offset,default=0"`
}

// DeductionRuleResponse defines data returned for a template.
type DeductionRuleResponse struct {
	RuleID          string                  `json:"ruleID"`
	CompanyID       string                  `json:"companyID"`
	Name            string                  `json:"name"`
	Kind            domain.RuleKind         `json:"kind"`
	Category        domain.LineItemCategory `json:"category"`
	CalculationType domain.CalculationType  `json:"calculationType"`
	Amount          *decimal.Decimal        `json:"amount,omitempty"`
	Percentage      *decimal.Decimal        `json:"percentage,omitempty"`
	PerMileRate     *decimal.Decimal        `json:"perMileRate,omitempty"`
	Frequency       domain.RuleFrequency    `json:"frequency"`
	DriverTypeScope *domain.DriverType      `json:"driverTypeScope,omitempty"`
	DriverID        *string                 `json:"driverID,omitempty"`
	MinGrossPay     *decimal.Decimal        `json:"minGrossPay,omitempty"`
	MaxAmount       *decimal.Decimal        `json:"maxAmount,omitempty"`
	GoalAmount      *decimal.Decimal        `json:"goalAmount,omitempty"`
	CurrentAmount   decimal.Decimal         `json:"currentAmount"`
	IsActive        bool                    `json:"isActive"`
	CreatedAt       time.Time               `json:"createdAt"`
	LastUpdatedAt   time.Time               `json:"lastUpdatedAt"`
}

// ToDeductionRuleResponse converts domain.DeductionRuleTemplate to DTO.
func ToDeductionRuleResponse(t *domain.DeductionRuleTemplate) DeductionRuleResponse {
	return DeductionRuleResponse{
		RuleID:          t.RuleID,
		CompanyID:       t.CompanyID,
		Name:            t.Name,
		Kind:            t.Kind,
		Category:        t.Kind.Category(),
		CalculationType: t.CalculationType,
		Amount:          t.Amount,
		Percentage:      t.Percentage,
		PerMileRate:     t.PerMileRate,
		Frequency:       t.Frequency,
		DriverTypeScope: t.DriverTypeScope,
		DriverID:        t.DriverID,
		MinGrossPay:     t.MinGrossPay,
		MaxAmount:       t.MaxAmount,
		GoalAmount:      t.GoalAmount,
		CurrentAmount:   t.CurrentAmount,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
		LastUpdatedAt:   t.LastUpdatedAt,
	}
}

// ListDeductionRulesResponse wraps a list of templates.
type ListDeductionRulesResponse struct {
	Rules []DeductionRuleResponse `json:"rules"`
}

// ToListDeductionRulesResponse converts a slice of templates to DTO.
func ToListDeductionRulesResponse(ts []domain.DeductionRuleTemplate) ListDeductionRulesResponse {
	list := make([]DeductionRuleResponse, len(ts))
	for i, t := range ts {
		list[i] = ToDeductionRuleResponse(&t)
	}
	return ListDeductionRulesResponse{Rules: list}
}
