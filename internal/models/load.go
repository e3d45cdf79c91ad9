package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoadStatus mirrors the load billing status enum.
type LoadStatus string

// Load represents a load row, restricted to the pay-relevant columns.
type Load struct {
	LoadID      string           `db:"load_id"`
	CompanyID   string           `db:"company_id"`
	DriverID    string           `db:"driver_id"`
	LoadNumber  string           `db:"load_number"`
	TotalMiles  decimal.Decimal  `db:"total_miles"`
	LoadedMiles decimal.Decimal  `db:"loaded_miles"`
	EmptyMiles  decimal.Decimal  `db:"empty_miles"`
	Revenue     decimal.Decimal  `db:"revenue"`
	DriverPay   *decimal.Decimal `db:"driver_pay"` // Nullable manual override

	Status             LoadStatus `db:"status"`
	ReadyForSettlement bool       `db:"ready_for_settlement"`
	DeliveredAt        *time.Time `db:"delivered_at"`
	AuditFields
}
