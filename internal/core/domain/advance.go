package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceStatus indicates the state of a driver cash advance.
type AdvanceStatus string

const (
	AdvancePending  AdvanceStatus = "PENDING"
	AdvanceApproved AdvanceStatus = "APPROVED"
	AdvanceRejected AdvanceStatus = "REJECTED"
	AdvancePaid     AdvanceStatus = "PAID"
)

// advanceTransitions is the full set of legal state moves.
var advanceTransitions = map[AdvanceStatus][]AdvanceStatus{
	AdvancePending:  {AdvanceApproved, AdvanceRejected},
	AdvanceApproved: {AdvancePaid},
}

// CanTransition reports whether moving from s to target is legal.
func (s AdvanceStatus) CanTransition(target AdvanceStatus) bool {
	for _, allowed := range advanceTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Attachable reports whether an advance in this state may be attached to a
// settlement. Rejected and paid advances are never attachable.
func (s AdvanceStatus) Attachable() bool {
	return s == AdvancePending || s == AdvanceApproved
}

// DriverAdvance is cash paid to a driver ahead of settlement, later offset
// against net pay.
type DriverAdvance struct {
	AdvanceID   string          `json:"advanceID"` // Primary Key (e.g., UUID)
	CompanyID   string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	DriverID    string          `json:"driverID"`
	Amount      decimal.Decimal `json:"amount"` // Decimal > 0
	RequestDate time.Time       `json:"requestDate"`
	Status      AdvanceStatus   `json:"status"`
	Notes       string          `json:"notes"`

	// SettlementID is set once the advance is attached to a settlement period.
	SettlementID *string `json:"settlementID,omitempty"`

	DecidedAt *time.Time `json:"decidedAt,omitempty"`
	DecidedBy *string    `json:"decidedBy,omitempty"`
	AuditFields
}
