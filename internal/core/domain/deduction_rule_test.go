package domain_test

import (
	"testing"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRuleKind_Category(t *testing.T) {
	tests := []struct {
		kind domain.RuleKind
		want domain.LineItemCategory
	}{
		{domain.KindFuelAdvance, domain.CategoryDeduction},
		{domain.KindCashAdvance, domain.CategoryDeduction},
		{domain.KindInsurance, domain.CategoryDeduction},
		{domain.KindTruckPayment, domain.CategoryDeduction},
		{domain.KindEscrow, domain.CategoryDeduction},
		{domain.KindMaintenance, domain.CategoryDeduction},
		{domain.KindPermits, domain.CategoryDeduction},
		{domain.KindOther, domain.CategoryDeduction},
		{domain.KindBonus, domain.CategoryAddition},
		{domain.KindOvertime, domain.CategoryAddition},
		{domain.KindIncentive, domain.CategoryAddition},
		{domain.KindReimbursement, domain.CategoryAddition},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Category())
		})
	}
}

func TestDeductionRuleTemplate_Validate(t *testing.T) {
	tests := []struct {
		name     string
		template domain.DeductionRuleTemplate
		wantErr  error
	}{
		{
			name: "valid fixed template",
			template: domain.DeductionRuleTemplate{
				Name:            "Weekly insurance",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(150.00)),
				Frequency:       domain.FreqWeekly,
			},
		},
		{
			name: "valid percentage template",
			template: domain.DeductionRuleTemplate{
				Name:            "Dispatch fee",
				Kind:            domain.KindOther,
				CalculationType: domain.CalcPercentage,
				Percentage:      decimalPtr(decimal.NewFromFloat(5.00)),
				Frequency:       domain.FreqPerSettlement,
			},
		},
		{
			name: "valid per mile template with goal",
			template: domain.DeductionRuleTemplate{
				Name:            "Escrow build-up",
				Kind:            domain.KindEscrow,
				CalculationType: domain.CalcPerMile,
				PerMileRate:     decimalPtr(decimal.NewFromFloat(0.05)),
				Frequency:       domain.FreqPerSettlement,
				GoalAmount:      decimalPtr(decimal.NewFromFloat(2500.00)),
			},
		},
		{
			name: "missing name",
			template: domain.DeductionRuleTemplate{
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(150.00)),
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateNameMissing,
		},
		{
			name: "unknown kind",
			template: domain.DeductionRuleTemplate{
				Name:            "Bad kind",
				Kind:            domain.RuleKind("TOLLS"),
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(10.00)),
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateKindUnknown,
		},
		{
			name: "fixed template missing amount",
			template: domain.DeductionRuleTemplate{
				Name:            "No rate",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateRateMismatch,
		},
		{
			name: "fixed template with extra percentage",
			template: domain.DeductionRuleTemplate{
				Name:            "Two rates",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(150.00)),
				Percentage:      decimalPtr(decimal.NewFromFloat(5.00)),
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateRateMismatch,
		},
		{
			name: "negative amount",
			template: domain.DeductionRuleTemplate{
				Name:            "Negative",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(-10.00)),
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateRateNegative,
		},
		{
			name: "unknown calculation type",
			template: domain.DeductionRuleTemplate{
				Name:            "Bad calc",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalculationType("FLAT"),
				Frequency:       domain.FreqWeekly,
			},
			wantErr: domain.ErrTemplateCalcTypeUnknown,
		},
		{
			name: "unknown frequency",
			template: domain.DeductionRuleTemplate{
				Name:            "Bad freq",
				Kind:            domain.KindInsurance,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(150.00)),
				Frequency:       domain.RuleFrequency("QUARTERLY"),
			},
			wantErr: domain.ErrTemplateFrequencyUnknown,
		},
		{
			name: "zero goal amount",
			template: domain.DeductionRuleTemplate{
				Name:            "Zero goal",
				Kind:            domain.KindEscrow,
				CalculationType: domain.CalcFixed,
				Amount:          decimalPtr(decimal.NewFromFloat(100.00)),
				Frequency:       domain.FreqPerSettlement,
				GoalAmount:      decimalPtr(decimal.Zero),
			},
			wantErr: domain.ErrTemplateGoalNotPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeductionRuleTemplate_AppliesTo(t *testing.T) {
	ownerOp := domain.OwnerOperator
	tests := []struct {
		name       string
		template   domain.DeductionRuleTemplate
		driverID   string
		driverType domain.DriverType
		want       bool
	}{
		{
			name:       "unrestricted matches anyone",
			template:   domain.DeductionRuleTemplate{},
			driverID:   "driver-1",
			driverType: domain.CompanyDriver,
			want:       true,
		},
		{
			name:       "driver type scope matches",
			template:   domain.DeductionRuleTemplate{DriverTypeScope: &ownerOp},
			driverID:   "driver-1",
			driverType: domain.OwnerOperator,
			want:       true,
		},
		{
			name:       "driver type scope excludes",
			template:   domain.DeductionRuleTemplate{DriverTypeScope: &ownerOp},
			driverID:   "driver-1",
			driverType: domain.CompanyDriver,
			want:       false,
		},
		{
			name:       "driver id scope matches",
			template:   domain.DeductionRuleTemplate{DriverID: stringPtr("driver-1")},
			driverID:   "driver-1",
			driverType: domain.CompanyDriver,
			want:       true,
		},
		{
			name:       "driver id scope excludes",
			template:   domain.DeductionRuleTemplate{DriverID: stringPtr("driver-1")},
			driverID:   "driver-2",
			driverType: domain.CompanyDriver,
			want:       false,
		},
		{
			name:       "both scopes must match",
			template:   domain.DeductionRuleTemplate{DriverID: stringPtr("driver-1"), DriverTypeScope: &ownerOp},
			driverID:   "driver-1",
			driverType: domain.CompanyDriver,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.template.AppliesTo(tt.driverID, tt.driverType))
		})
	}
}

func TestDeductionRuleTemplate_GoalReached(t *testing.T) {
	goal := decimal.NewFromFloat(1000.00)

	noGoal := domain.DeductionRuleTemplate{CurrentAmount: decimal.NewFromFloat(5000.00)}
	assert.False(t, noGoal.GoalReached())

	below := domain.DeductionRuleTemplate{GoalAmount: &goal, CurrentAmount: decimal.NewFromFloat(999.99)}
	assert.False(t, below.GoalReached())

	exact := domain.DeductionRuleTemplate{GoalAmount: &goal, CurrentAmount: decimal.NewFromFloat(1000.00)}
	assert.True(t, exact.GoalReached())
}

// Helper functions
func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}
