package services

import (
	"fmt"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EvaluationInput carries the facts a settlement presents to the rule engine.
type EvaluationInput struct {
	Driver     domain.Driver
	GrossPay   decimal.Decimal
	TotalMiles decimal.Decimal
	PeriodEnd  time.Time

	// PriorApplications are the driver's existing usage markers for the
	// templates under evaluation. Frequency gating is decided from these.
	PriorApplications []domain.RuleApplication
}

// RuleContribution is one template's contribution to a settlement.
type RuleContribution struct {
	Rule   domain.DeductionRuleTemplate
	Amount decimal.Decimal

	// NewProgress is the template's updated goal progress, set only for
	// goal-tracked templates.
	NewProgress *decimal.Decimal
}

// EvaluationResult is the full outcome of evaluating a company's templates
// against one settlement.
type EvaluationResult struct {
	Contributions []RuleContribution
	Warnings      []string
}

// RuleEngine evaluates deduction rule templates against a settlement. It is
// stateless and performs no I/O; the caller supplies the facts and persists
// the contributions.
type RuleEngine struct{}

// NewRuleEngine creates a new RuleEngine.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Evaluate runs every template through the evaluation pipeline: scope match,
// frequency gating, minimum gross pay threshold, raw amount, goal clamp, and
// maximum amount cap. Templates that end at zero contribute nothing.
func (e *RuleEngine) Evaluate(rules []domain.DeductionRuleTemplate, in EvaluationInput) EvaluationResult {
	var result EvaluationResult

	applicationsByRule := make(map[string][]domain.RuleApplication)
	for _, app := range in.PriorApplications {
		applicationsByRule[app.RuleID] = append(applicationsByRule[app.RuleID], app)
	}

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !rule.AppliesTo(in.Driver.DriverID, in.Driver.DriverType) {
			continue
		}
		if !e.frequencyAllows(rule, applicationsByRule[rule.RuleID], in.PeriodEnd) {
			continue
		}
		if rule.MinGrossPay != nil && in.GrossPay.LessThan(*rule.MinGrossPay) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rule %q skipped: gross pay $%s below minimum $%s", rule.Name, in.GrossPay, rule.MinGrossPay))
			continue
		}

		amount := e.rawAmount(rule, in)

		var newProgress *decimal.Decimal
		if rule.GoalAmount != nil {
			if rule.GoalReached() {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("rule %q skipped: goal of $%s already reached", rule.Name, rule.GoalAmount))
				continue
			}
			remaining := rule.GoalAmount.Sub(rule.CurrentAmount)
			if amount.GreaterThan(remaining) {
				amount = remaining
			}
		}

		if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
			amount = *rule.MaxAmount
		}

		amount = amount.Round(2)
		if !amount.IsPositive() {
			continue
		}

		if rule.GoalAmount != nil {
			progress := rule.CurrentAmount.Add(amount)
			newProgress = &progress
		}

		result.Contributions = append(result.Contributions, RuleContribution{
			Rule:        rule,
			Amount:      amount,
			NewProgress: newProgress,
		})
	}

	return result
}

// frequencyAllows reports whether the template may contribute given its prior
// usage markers. PER_SETTLEMENT always contributes; ONE_TIME contributes once
// ever; the period frequencies contribute at most once per period, measured
// back from the settlement period end.
func (e *RuleEngine) frequencyAllows(rule domain.DeductionRuleTemplate, prior []domain.RuleApplication, periodEnd time.Time) bool {
	switch rule.Frequency {
	case domain.FreqPerSettlement:
		return true
	case domain.FreqOneTime:
		return len(prior) == 0
	case domain.FreqWeekly:
		return !appliedSince(prior, periodEnd.AddDate(0, 0, -7))
	case domain.FreqBiweekly:
		return !appliedSince(prior, periodEnd.AddDate(0, 0, -14))
	case domain.FreqMonthly:
		return !appliedSince(prior, periodEnd.AddDate(0, -1, 0))
	default:
		return false
	}
}

// rawAmount computes the template's amount before clamps and caps.
func (e *RuleEngine) rawAmount(rule domain.DeductionRuleTemplate, in EvaluationInput) decimal.Decimal {
	switch rule.CalculationType {
	case domain.CalcFixed:
		if rule.Amount != nil {
			return *rule.Amount
		}
	case domain.CalcPercentage:
		if rule.Percentage != nil {
			return in.GrossPay.Mul(*rule.Percentage).Div(hundred)
		}
	case domain.CalcPerMile:
		if rule.PerMileRate != nil {
			return in.TotalMiles.Mul(*rule.PerMileRate)
		}
	}
	return decimal.Zero
}

func appliedSince(applications []domain.RuleApplication, cutoff time.Time) bool {
	for _, app := range applications {
		if app.AppliedAt.After(cutoff) {
			return true
		}
	}
	return false
}
