package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus mirrors the settlement lifecycle enum.
type SettlementStatus string

// LineItemCategory mirrors the line item sign discriminator.
type LineItemCategory string

// Settlement represents a settlement row. The load linkage and the
// calculation log are stored as JSONB columns.
type Settlement struct {
	SettlementID     string    `db:"settlement_id"`
	CompanyID        string    `db:"company_id"`
	DriverID         string    `db:"driver_id"`
	SettlementNumber string    `db:"settlement_number"`
	PeriodStart      time.Time `db:"period_start"`
	PeriodEnd        time.Time `db:"period_end"`
	LoadIDs          []byte    `db:"load_ids"` // JSONB array of load IDs

	GrossPay        decimal.Decimal `db:"gross_pay"`
	TotalAdditions  decimal.Decimal `db:"total_additions"`
	TotalDeductions decimal.Decimal `db:"total_deductions"`
	TotalAdvances   decimal.Decimal `db:"total_advances"`
	NetPay          decimal.Decimal `db:"net_pay"`
	CarriedForward  decimal.Decimal `db:"carried_forward"`

	Status        SettlementStatus `db:"status"`
	PaymentMethod *string          `db:"payment_method"`
	Notes         string           `db:"notes"`
	CalculatedAt  time.Time        `db:"calculated_at"`
	CalcLog       []byte           `db:"calc_log"` // Nullable JSONB
	AuditFields
}

// SettlementLineItem represents a settlement line item row.
type SettlementLineItem struct {
	LineItemID   string           `db:"line_item_id"`
	SettlementID string           `db:"settlement_id"`
	Kind         RuleKind         `db:"kind"`
	Category     LineItemCategory `db:"category"`
	Description  string           `db:"description"`
	Amount       decimal.Decimal  `db:"amount"`
	SourceRuleID *string          `db:"source_rule_id"`
	AdvanceID    *string          `db:"advance_id"`
	AuditFields
}

// SettlementStatusEvent represents one settlement status audit row.
type SettlementStatusEvent struct {
	EventID      string           `db:"event_id"`
	SettlementID string           `db:"settlement_id"`
	FromStatus   SettlementStatus `db:"from_status"`
	ToStatus     SettlementStatus `db:"to_status"`
	ActorUserID  string           `db:"actor_user_id"`
	Reason       string           `db:"reason"`
	CreatedAt    time.Time        `db:"created_at"`
}
