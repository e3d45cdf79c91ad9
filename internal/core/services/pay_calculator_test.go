package services_test

import (
	"testing"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPayCalculator_ComputeLoadPay(t *testing.T) {
	calc := services.NewPayCalculator()

	tests := []struct {
		name         string
		driver       domain.Driver
		load         domain.Load
		wantAmount   string
		wantWarnings int
	}{
		{
			name:       "per mile uses total miles",
			driver:     domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.55")},
			load:       domain.Load{LoadNumber: "L-100", TotalMiles: dec("550")},
			wantAmount: "302.5",
		},
		{
			name:       "per mile falls back to loaded plus empty miles",
			driver:     domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.50")},
			load:       domain.Load{LoadNumber: "L-101", LoadedMiles: dec("480"), EmptyMiles: dec("70")},
			wantAmount: "275",
		},
		{
			name:         "per mile with no miles warns",
			driver:       domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.55")},
			load:         domain.Load{LoadNumber: "L-102"},
			wantAmount:   "0",
			wantWarnings: 1,
		},
		{
			name:       "per load ignores miles",
			driver:     domain.Driver{PayType: domain.PayPerLoad, PayRate: dec("650")},
			load:       domain.Load{LoadNumber: "L-103", TotalMiles: dec("1200")},
			wantAmount: "650",
		},
		{
			name:       "percentage of revenue",
			driver:     domain.Driver{PayType: domain.PayPercentage, PayRate: dec("25")},
			load:       domain.Load{LoadNumber: "L-104", Revenue: dec("2000")},
			wantAmount: "500",
		},
		{
			name:         "percentage above 100 warns but still computes",
			driver:       domain.Driver{PayType: domain.PayPercentage, PayRate: dec("120")},
			load:         domain.Load{LoadNumber: "L-105", Revenue: dec("1000")},
			wantAmount:   "1200",
			wantWarnings: 1,
		},
		{
			name:         "percentage of zero revenue warns",
			driver:       domain.Driver{PayType: domain.PayPercentage, PayRate: dec("25")},
			load:         domain.Load{LoadNumber: "L-106"},
			wantAmount:   "0",
			wantWarnings: 1,
		},
		{
			name:       "hourly derives hours from miles",
			driver:     domain.Driver{PayType: domain.PayHourly, PayRate: dec("30")},
			load:       domain.Load{LoadNumber: "L-107", TotalMiles: dec("500")},
			wantAmount: "300", // 500 miles / 50 mph = 10 hours
		},
		{
			name:         "hourly without miles assumes default hours",
			driver:       domain.Driver{PayType: domain.PayHourly, PayRate: dec("30")},
			load:         domain.Load{LoadNumber: "L-108"},
			wantAmount:   "300",
			wantWarnings: 1,
		},
		{
			name:         "weekly pays nothing per load",
			driver:       domain.Driver{PayType: domain.PayWeekly, PayRate: dec("1500")},
			load:         domain.Load{LoadNumber: "L-109", TotalMiles: dec("800")},
			wantAmount:   "0",
			wantWarnings: 1,
		},
		{
			name:         "negative rate treated as zero",
			driver:       domain.Driver{PayType: domain.PayPerLoad, PayRate: dec("-100")},
			load:         domain.Load{LoadNumber: "L-110"},
			wantAmount:   "0",
			wantWarnings: 1,
		},
		{
			name:         "unknown pay type pays nothing",
			driver:       domain.Driver{PayType: domain.PayType("SALARY"), PayRate: dec("100")},
			load:         domain.Load{LoadNumber: "L-111"},
			wantAmount:   "0",
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.ComputeLoadPay(tt.driver, tt.load)
			assert.True(t, dec(tt.wantAmount).Equal(result.Amount),
				"expected %s, got %s", tt.wantAmount, result.Amount)
			assert.Len(t, result.Warnings, tt.wantWarnings)
			assert.NotEmpty(t, result.Formula)
		})
	}
}

func TestPayCalculator_ComputeLoadPay_ManualOverride(t *testing.T) {
	calc := services.NewPayCalculator()
	driver := domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.55")}

	override := dec("425.00")
	load := domain.Load{LoadNumber: "L-200", TotalMiles: dec("550"), DriverPay: &override}

	result := calc.ComputeLoadPay(driver, load)
	assert.True(t, override.Equal(result.Amount))
	assert.Contains(t, result.Formula, "manual override")
	assert.Empty(t, result.Warnings)
}

func TestPayCalculator_ComputeLoadPay_ZeroOverrideIgnored(t *testing.T) {
	calc := services.NewPayCalculator()
	driver := domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.50")}

	// A zero override is treated as unset; the pay policy applies.
	override := decimal.Zero
	load := domain.Load{LoadNumber: "L-201", TotalMiles: dec("100"), DriverPay: &override}

	result := calc.ComputeLoadPay(driver, load)
	assert.True(t, dec("50").Equal(result.Amount))
}

func TestPayCalculator_ComputeWeeklyPay(t *testing.T) {
	calc := services.NewPayCalculator()
	driver := domain.Driver{PayType: domain.PayWeekly, PayRate: dec("1500")}

	t.Run("paid once when loads settle", func(t *testing.T) {
		result := calc.ComputeWeeklyPay(driver, 4)
		require.True(t, dec("1500").Equal(result.Amount))
	})

	t.Run("nothing without settling loads", func(t *testing.T) {
		result := calc.ComputeWeeklyPay(driver, 0)
		assert.True(t, result.Amount.IsZero())
	})

	t.Run("nothing for non weekly drivers", func(t *testing.T) {
		perMile := domain.Driver{PayType: domain.PayPerMile, PayRate: dec("0.55")}
		result := calc.ComputeWeeklyPay(perMile, 4)
		assert.True(t, result.Amount.IsZero())
	})
}
