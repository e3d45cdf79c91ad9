package services_test

import (
	"testing"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixedRule(name, amount string) domain.DeductionRuleTemplate {
	return domain.DeductionRuleTemplate{
		RuleID:          name,
		Name:            name,
		Kind:            domain.KindInsurance,
		CalculationType: domain.CalcFixed,
		Amount:          decPtr(amount),
		Frequency:       domain.FreqPerSettlement,
		IsActive:        true,
	}
}

func engineInput(driver domain.Driver, gross string) services.EvaluationInput {
	return services.EvaluationInput{
		Driver:    driver,
		GrossPay:  dec(gross),
		PeriodEnd: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRuleEngine_Evaluate_AmountCalculation(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}

	t.Run("fixed amount", func(t *testing.T) {
		result := engine.Evaluate([]domain.DeductionRuleTemplate{fixedRule("ins", "150")}, engineInput(driver, "2000"))
		require.Len(t, result.Contributions, 1)
		assert.True(t, dec("150").Equal(result.Contributions[0].Amount))
	})

	t.Run("percentage of gross pay", func(t *testing.T) {
		rule := domain.DeductionRuleTemplate{
			RuleID:          "pct",
			Name:            "dispatch fee",
			Kind:            domain.KindOther,
			CalculationType: domain.CalcPercentage,
			Percentage:      decPtr("10"),
			Frequency:       domain.FreqPerSettlement,
			IsActive:        true,
		}
		result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "2450"))
		require.Len(t, result.Contributions, 1)
		assert.True(t, dec("245").Equal(result.Contributions[0].Amount))
	})

	t.Run("per mile over period miles", func(t *testing.T) {
		rule := domain.DeductionRuleTemplate{
			RuleID:          "pm",
			Name:            "trailer lease",
			Kind:            domain.KindTruckPayment,
			CalculationType: domain.CalcPerMile,
			PerMileRate:     decPtr("0.05"),
			Frequency:       domain.FreqPerSettlement,
			IsActive:        true,
		}
		in := engineInput(driver, "2000")
		in.TotalMiles = dec("1800")
		result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, in)
		require.Len(t, result.Contributions, 1)
		assert.True(t, dec("90").Equal(result.Contributions[0].Amount))
	})

	t.Run("inactive rules are skipped", func(t *testing.T) {
		rule := fixedRule("ins", "150")
		rule.IsActive = false
		result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "2000"))
		assert.Empty(t, result.Contributions)
	})

	t.Run("zero amounts contribute nothing", func(t *testing.T) {
		result := engine.Evaluate([]domain.DeductionRuleTemplate{fixedRule("ins", "0")}, engineInput(driver, "2000"))
		assert.Empty(t, result.Contributions)
	})
}

func TestRuleEngine_Evaluate_Scope(t *testing.T) {
	engine := services.NewRuleEngine()
	companyDriver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}
	ownerOperator := domain.Driver{DriverID: "d2", DriverType: domain.OwnerOperator}

	scoped := fixedRule("oo-insurance", "300")
	ooScope := domain.OwnerOperator
	scoped.DriverTypeScope = &ooScope

	result := engine.Evaluate([]domain.DeductionRuleTemplate{scoped}, engineInput(companyDriver, "2000"))
	assert.Empty(t, result.Contributions)

	result = engine.Evaluate([]domain.DeductionRuleTemplate{scoped}, engineInput(ownerOperator, "2000"))
	assert.Len(t, result.Contributions, 1)

	perDriver := fixedRule("d1-only", "50")
	d1 := "d1"
	perDriver.DriverID = &d1

	result = engine.Evaluate([]domain.DeductionRuleTemplate{perDriver}, engineInput(ownerOperator, "2000"))
	assert.Empty(t, result.Contributions)

	result = engine.Evaluate([]domain.DeductionRuleTemplate{perDriver}, engineInput(companyDriver, "2000"))
	assert.Len(t, result.Contributions, 1)
}

func TestRuleEngine_Evaluate_MinGrossPay(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}

	rule := fixedRule("escrow", "200")
	rule.MinGrossPay = decPtr("1000")

	result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "800"))
	assert.Empty(t, result.Contributions)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "below minimum")

	result = engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "1000"))
	assert.Len(t, result.Contributions, 1)
}

func TestRuleEngine_Evaluate_MaxAmountCap(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}

	rule := domain.DeductionRuleTemplate{
		RuleID:          "pct",
		Name:            "dispatch fee",
		Kind:            domain.KindOther,
		CalculationType: domain.CalcPercentage,
		Percentage:      decPtr("20"),
		MaxAmount:       decPtr("300"),
		Frequency:       domain.FreqPerSettlement,
		IsActive:        true,
	}

	result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "5000"))
	require.Len(t, result.Contributions, 1)
	assert.True(t, dec("300").Equal(result.Contributions[0].Amount))
}

func TestRuleEngine_Evaluate_GoalClamp(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}

	rule := fixedRule("escrow", "300")
	rule.GoalAmount = decPtr("1000")
	rule.CurrentAmount = dec("900")

	// Only $100 remains toward the goal.
	result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "2000"))
	require.Len(t, result.Contributions, 1)
	contrib := result.Contributions[0]
	assert.True(t, dec("100").Equal(contrib.Amount))
	require.NotNil(t, contrib.NewProgress)
	assert.True(t, dec("1000").Equal(*contrib.NewProgress))

	// Goal already reached: nothing more is collected.
	rule.CurrentAmount = dec("1000")
	result = engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "2000"))
	assert.Empty(t, result.Contributions)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "already reached")
}

func TestRuleEngine_Evaluate_GoalClampBeforeMaxCap(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}

	rule := fixedRule("escrow", "500")
	rule.GoalAmount = decPtr("1000")
	rule.CurrentAmount = dec("960")
	rule.MaxAmount = decPtr("200")

	// Remaining goal (40) is below the cap; the clamp wins.
	result := engine.Evaluate([]domain.DeductionRuleTemplate{rule}, engineInput(driver, "2000"))
	require.Len(t, result.Contributions, 1)
	assert.True(t, dec("40").Equal(result.Contributions[0].Amount))
}

func TestRuleEngine_Evaluate_FrequencyGating(t *testing.T) {
	engine := services.NewRuleEngine()
	driver := domain.Driver{DriverID: "d1", DriverType: domain.CompanyDriver}
	periodEnd := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	appliedAt := func(daysBefore int) []domain.RuleApplication {
		return []domain.RuleApplication{{
			RuleID:    "r1",
			DriverID:  "d1",
			AppliedAt: periodEnd.AddDate(0, 0, -daysBefore),
		}}
	}

	newRule := func(freq domain.RuleFrequency) domain.DeductionRuleTemplate {
		rule := fixedRule("r1", "100")
		rule.Frequency = freq
		return rule
	}

	tests := []struct {
		name      string
		frequency domain.RuleFrequency
		prior     []domain.RuleApplication
		wantApply bool
	}{
		{"per settlement always applies", domain.FreqPerSettlement, appliedAt(1), true},
		{"one time applies when never used", domain.FreqOneTime, nil, true},
		{"one time never applies again", domain.FreqOneTime, appliedAt(400), false},
		{"weekly blocked within the week", domain.FreqWeekly, appliedAt(3), false},
		{"weekly applies after a week", domain.FreqWeekly, appliedAt(8), true},
		{"biweekly blocked within two weeks", domain.FreqBiweekly, appliedAt(10), false},
		{"biweekly applies after two weeks", domain.FreqBiweekly, appliedAt(15), true},
		{"monthly blocked within the month", domain.FreqMonthly, appliedAt(20), false},
		{"monthly applies after a month", domain.FreqMonthly, appliedAt(35), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := services.EvaluationInput{
				Driver:            driver,
				GrossPay:          dec("2000"),
				PeriodEnd:         periodEnd,
				PriorApplications: tt.prior,
			}
			result := engine.Evaluate([]domain.DeductionRuleTemplate{newRule(tt.frequency)}, in)
			if tt.wantApply {
				assert.Len(t, result.Contributions, 1)
			} else {
				assert.Empty(t, result.Contributions)
			}
		})
	}
}
