package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleKind mirrors the line item kind enum.
type RuleKind string

// CalculationType mirrors the rule calculation enum.
type CalculationType string

// RuleFrequency mirrors the rule frequency enum.
type RuleFrequency string

// DeductionRuleTemplate represents a deduction/addition rule template row.
type DeductionRuleTemplate struct {
	RuleID    string   `db:"rule_id"`
	CompanyID string   `db:"company_id"`
	Name      string   `db:"name"`
	Kind      RuleKind `db:"kind"`

	CalculationType CalculationType  `db:"calculation_type"`
	Amount          *decimal.Decimal `db:"amount"`
	Percentage      *decimal.Decimal `db:"percentage"`
	PerMileRate     *decimal.Decimal `db:"per_mile_rate"`

	Frequency RuleFrequency `db:"frequency"`

	DriverTypeScope *DriverType `db:"driver_type_scope"`
	DriverID        *string     `db:"driver_id"`

	MinGrossPay *decimal.Decimal `db:"min_gross_pay"`
	MaxAmount   *decimal.Decimal `db:"max_amount"`

	GoalAmount    *decimal.Decimal `db:"goal_amount"`
	CurrentAmount decimal.Decimal  `db:"current_amount"`

	IsActive bool `db:"is_active"`
	AuditFields
}

// RuleApplication represents a template usage marker row.
type RuleApplication struct {
	ApplicationID string    `db:"application_id"`
	RuleID        string    `db:"rule_id"`
	DriverID      string    `db:"driver_id"`
	SettlementID  string    `db:"settlement_id"`
	AppliedAt     time.Time `db:"applied_at"`
}
