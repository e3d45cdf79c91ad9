package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceStatus mirrors the advance lifecycle enum.
type AdvanceStatus string

// DriverAdvance represents a driver cash advance row.
type DriverAdvance struct {
	AdvanceID   string          `db:"advance_id"`
	CompanyID   string          `db:"company_id"`
	DriverID    string          `db:"driver_id"`
	Amount      decimal.Decimal `db:"amount"`
	RequestDate time.Time       `db:"request_date"`
	Status      AdvanceStatus   `db:"status"`
	Notes       string          `db:"notes"`

	SettlementID *string `db:"settlement_id"` // Nullable until attached

	DecidedAt *time.Time `db:"decided_at"`
	DecidedBy *string    `db:"decided_by"`
	AuditFields
}
