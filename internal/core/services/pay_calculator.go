package services

import (
	"fmt"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	// avgMilesPerHour converts load miles into an hour estimate for hourly drivers.
	avgMilesPerHour = 50
	// defaultHoursPerLoad is assumed when an hourly driver's load has no miles.
	defaultHoursPerLoad = 10
)

var (
	hundred = decimal.NewFromInt(100)
)

// PayResult is the outcome of computing pay for a single load: the rounded
// amount, a human readable formula for the calculation log, and any warnings
// an operator should review.
type PayResult struct {
	Amount   decimal.Decimal
	Formula  string
	Warnings []string
}

// PayCalculator computes driver pay per load from the driver's pay policy.
// It is stateless; all inputs arrive as arguments and results are deterministic.
type PayCalculator struct{}

// NewPayCalculator creates a new PayCalculator.
func NewPayCalculator() *PayCalculator {
	return &PayCalculator{}
}

// ComputeLoadPay computes the pay for one load under the driver's pay policy.
// A positive manual driver pay on the load wins over the policy. Negative pay
// rates are treated as zero with a warning rather than producing negative pay.
func (c *PayCalculator) ComputeLoadPay(driver domain.Driver, load domain.Load) PayResult {
	if load.DriverPay != nil && load.DriverPay.IsPositive() {
		return PayResult{
			Amount:  load.DriverPay.Round(2),
			Formula: fmt.Sprintf("manual override: $%s", load.DriverPay.Round(2)),
		}
	}

	var warnings []string
	rate := driver.PayRate
	if rate.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("negative pay rate %s treated as zero", rate))
		rate = decimal.Zero
	}

	switch driver.PayType {
	case domain.PayPerMile:
		miles := load.Miles()
		if miles.IsZero() {
			warnings = append(warnings, fmt.Sprintf("load %s has no miles recorded", load.LoadNumber))
		}
		amount := rate.Mul(miles).Round(2)
		return PayResult{
			Amount:   amount,
			Formula:  fmt.Sprintf("%s miles x $%s/mile", miles, rate),
			Warnings: warnings,
		}

	case domain.PayPerLoad:
		return PayResult{
			Amount:   rate.Round(2),
			Formula:  fmt.Sprintf("flat $%s per load", rate),
			Warnings: warnings,
		}

	case domain.PayPercentage:
		if rate.GreaterThan(hundred) {
			warnings = append(warnings, fmt.Sprintf("percentage rate %s%% exceeds 100%%", rate))
		}
		if load.Revenue.IsZero() {
			warnings = append(warnings, fmt.Sprintf("load %s has zero revenue", load.LoadNumber))
		}
		amount := load.Revenue.Mul(rate).Div(hundred).Round(2)
		return PayResult{
			Amount:   amount,
			Formula:  fmt.Sprintf("%s%% of $%s revenue", rate, load.Revenue),
			Warnings: warnings,
		}

	case domain.PayHourly:
		miles := load.Miles()
		var hours decimal.Decimal
		if miles.IsPositive() {
			hours = miles.Div(decimal.NewFromInt(avgMilesPerHour))
		} else {
			hours = decimal.NewFromInt(defaultHoursPerLoad)
			warnings = append(warnings, fmt.Sprintf("load %s has no miles, assuming %d hours", load.LoadNumber, defaultHoursPerLoad))
		}
		amount := rate.Mul(hours).Round(2)
		return PayResult{
			Amount:   amount,
			Formula:  fmt.Sprintf("%s hours x $%s/hour", hours.Round(2), rate),
			Warnings: warnings,
		}

	case domain.PayWeekly:
		// Weekly pay is flat per settlement, never per load.
		warnings = append(warnings, "weekly pay is applied per settlement, not per load")
		return PayResult{
			Amount:   decimal.Zero,
			Formula:  "weekly pay applied at settlement level",
			Warnings: warnings,
		}

	default:
		warnings = append(warnings, fmt.Sprintf("unknown pay type %s", driver.PayType))
		return PayResult{
			Amount:   decimal.Zero,
			Formula:  "unknown pay type",
			Warnings: warnings,
		}
	}
}

// ComputeWeeklyPay returns the flat weekly amount for a weekly driver. It is
// applied once per settlement and only when at least one load is settling.
func (c *PayCalculator) ComputeWeeklyPay(driver domain.Driver, settlingLoads int) PayResult {
	if driver.PayType != domain.PayWeekly || settlingLoads == 0 {
		return PayResult{Amount: decimal.Zero}
	}

	var warnings []string
	rate := driver.PayRate
	if rate.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("negative pay rate %s treated as zero", rate))
		rate = decimal.Zero
	}

	return PayResult{
		Amount:   rate.Round(2),
		Formula:  fmt.Sprintf("flat weekly rate $%s", rate),
		Warnings: warnings,
	}
}
