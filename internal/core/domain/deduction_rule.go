package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTemplateNameMissing      = errors.New("template name is required")
	ErrTemplateKindUnknown      = errors.New("unknown template kind")
	ErrTemplateCalcTypeUnknown  = errors.New("unknown calculation type")
	ErrTemplateFrequencyUnknown = errors.New("unknown frequency")
	ErrTemplateRateMismatch     = errors.New("exactly one rate field matching the calculation type must be set")
	ErrTemplateRateNegative     = errors.New("rate must not be negative")
	ErrTemplateGoalNotPositive  = errors.New("goal amount must be positive")
)

// LineItemCategory is the sign discriminator for settlement line items.
type LineItemCategory string

const (
	CategoryDeduction LineItemCategory = "deduction"
	CategoryAddition  LineItemCategory = "addition"
)

// RuleKind tags a template (and the line items it produces) with what the
// money is for. The category is derived from the kind, never stored
// independently, so the two can never disagree.
type RuleKind string

const (
	// Deductions
	KindFuelAdvance  RuleKind = "FUEL_ADVANCE"
	KindCashAdvance  RuleKind = "CASH_ADVANCE"
	KindInsurance    RuleKind = "INSURANCE"
	KindTruckPayment RuleKind = "TRUCK_PAYMENT"
	KindEscrow       RuleKind = "ESCROW"
	KindMaintenance  RuleKind = "MAINTENANCE"
	KindPermits      RuleKind = "PERMITS"
	KindOther        RuleKind = "OTHER"

	// Additions
	KindBonus         RuleKind = "BONUS"
	KindOvertime      RuleKind = "OVERTIME"
	KindIncentive     RuleKind = "INCENTIVE"
	KindReimbursement RuleKind = "REIMBURSEMENT"
)

var additionKinds = map[RuleKind]bool{
	KindBonus:         true,
	KindOvertime:      true,
	KindIncentive:     true,
	KindReimbursement: true,
}

// Category returns the sign category implied by the kind.
func (k RuleKind) Category() LineItemCategory {
	if additionKinds[k] {
		return CategoryAddition
	}
	return CategoryDeduction
}

// IsValid reports whether the kind is one of the known values.
func (k RuleKind) IsValid() bool {
	switch k {
	case KindFuelAdvance, KindCashAdvance, KindInsurance, KindTruckPayment,
		KindEscrow, KindMaintenance, KindPermits, KindOther,
		KindBonus, KindOvertime, KindIncentive, KindReimbursement:
		return true
	}
	return false
}

// CalculationType defines how a template's raw amount is computed.
type CalculationType string

const (
	CalcFixed      CalculationType = "FIXED"
	CalcPercentage CalculationType = "PERCENTAGE"
	CalcPerMile    CalculationType = "PER_MILE"
)

// RuleFrequency gates how often a template may contribute.
type RuleFrequency string

const (
	FreqPerSettlement RuleFrequency = "PER_SETTLEMENT"
	FreqWeekly        RuleFrequency = "WEEKLY"
	FreqBiweekly      RuleFrequency = "BIWEEKLY"
	FreqMonthly       RuleFrequency = "MONTHLY"
	FreqOneTime       RuleFrequency = "ONE_TIME"
)

// DeductionRuleTemplate is a company-scoped reusable deduction or addition
// rule evaluated against a driver and settlement period.
type DeductionRuleTemplate struct {
	RuleID    string   `json:"ruleID"`    // Primary Key (e.g., UUID)
	CompanyID string   `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	Name      string   `json:"name"`
	Kind      RuleKind `json:"kind"`

	CalculationType CalculationType  `json:"calculationType"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`      // FIXED
	Percentage      *decimal.Decimal `json:"percentage,omitempty"`  // PERCENTAGE of gross pay
	PerMileRate     *decimal.Decimal `json:"perMileRate,omitempty"` // PER_MILE over period miles

	Frequency RuleFrequency `json:"frequency"`

	// Scope restrictions. Nil means unrestricted.
	DriverTypeScope *DriverType `json:"driverTypeScope,omitempty"`
	DriverID        *string     `json:"driverID,omitempty"` // Restrict to one driver

	MinGrossPay *decimal.Decimal `json:"minGrossPay,omitempty"` // Skip when gross pay below threshold
	MaxAmount   *decimal.Decimal `json:"maxAmount,omitempty"`   // Cap, applied after the goal clamp

	// Goal tracking for progressive templates (e.g. escrow build-up).
	GoalAmount    *decimal.Decimal `json:"goalAmount,omitempty"`
	CurrentAmount decimal.Decimal  `json:"currentAmount"`

	IsActive    bool `json:"isActive"`
	AuditFields
}

// Validate checks the template's structural rules: the kind must be known and
// exactly the rate field matching the calculation type must be populated.
func (t DeductionRuleTemplate) Validate() error {
	if t.Name == "" {
		return ErrTemplateNameMissing
	}
	if !t.Kind.IsValid() {
		return ErrTemplateKindUnknown
	}
	switch t.CalculationType {
	case CalcFixed:
		if t.Amount == nil || t.Percentage != nil || t.PerMileRate != nil {
			return ErrTemplateRateMismatch
		}
		if t.Amount.IsNegative() {
			return ErrTemplateRateNegative
		}
	case CalcPercentage:
		if t.Percentage == nil || t.Amount != nil || t.PerMileRate != nil {
			return ErrTemplateRateMismatch
		}
		if t.Percentage.IsNegative() {
			return ErrTemplateRateNegative
		}
	case CalcPerMile:
		if t.PerMileRate == nil || t.Amount != nil || t.Percentage != nil {
			return ErrTemplateRateMismatch
		}
		if t.PerMileRate.IsNegative() {
			return ErrTemplateRateNegative
		}
	default:
		return ErrTemplateCalcTypeUnknown
	}
	switch t.Frequency {
	case FreqPerSettlement, FreqWeekly, FreqBiweekly, FreqMonthly, FreqOneTime:
	default:
		return ErrTemplateFrequencyUnknown
	}
	if t.GoalAmount != nil && !t.GoalAmount.IsPositive() {
		return ErrTemplateGoalNotPositive
	}
	return nil
}

// AppliesTo reports whether the template's scope matches the given driver.
func (t DeductionRuleTemplate) AppliesTo(driverID string, driverType DriverType) bool {
	if t.DriverID != nil && *t.DriverID != driverID {
		return false
	}
	if t.DriverTypeScope != nil && *t.DriverTypeScope != driverType {
		return false
	}
	return true
}

// GoalReached reports whether a goal-tracked template has hit its target.
func (t DeductionRuleTemplate) GoalReached() bool {
	return t.GoalAmount != nil && t.CurrentAmount.GreaterThanOrEqual(*t.GoalAmount)
}

// RuleApplication is the usage marker recording that a template contributed
// to a settlement for a driver. ONE_TIME and period frequencies gate on it.
type RuleApplication struct {
	ApplicationID string    `json:"applicationID"`
	RuleID        string    `json:"ruleID"`
	DriverID      string    `json:"driverID"`
	SettlementID  string    `json:"settlementID"`
	AppliedAt     time.Time `json:"appliedAt"`
}
