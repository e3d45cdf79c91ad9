package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus indicates where a settlement sits in the approval lifecycle.
type SettlementStatus string

const (
	SettlementDraft           SettlementStatus = "DRAFT"
	SettlementPendingApproval SettlementStatus = "PENDING_APPROVAL"
	SettlementApproved        SettlementStatus = "APPROVED"
	SettlementRejected        SettlementStatus = "REJECTED"
	SettlementPaid            SettlementStatus = "PAID"
)

// settlementTransitions is the full set of legal state moves. REJECTED may be
// reopened to DRAFT by an authorized actor.
var settlementTransitions = map[SettlementStatus][]SettlementStatus{
	SettlementDraft:           {SettlementPendingApproval},
	SettlementPendingApproval: {SettlementApproved, SettlementRejected},
	SettlementApproved:        {SettlementPaid},
	SettlementRejected:        {SettlementDraft},
}

// CanTransition reports whether moving from s to target is legal.
func (s SettlementStatus) CanTransition(target SettlementStatus) bool {
	for _, allowed := range settlementTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Editable reports whether line items and advance attachments may still
// mutate a settlement in this state. Approved settlements are structurally
// immutable and may only move to PAID.
func (s SettlementStatus) Editable() bool {
	return s == SettlementDraft || s == SettlementPendingApproval
}

// liveStatuses are the settlement states that block generating a second
// settlement for the same driver and period.
var liveStatuses = []SettlementStatus{
	SettlementDraft, SettlementPendingApproval, SettlementApproved, SettlementPaid,
}

// LiveStatuses returns the states counted when checking for duplicates.
func LiveStatuses() []SettlementStatus {
	return liveStatuses
}

// CalcLogEntry records how one load's pay was computed, kept with the
// settlement so an operator can review atypical results before approval.
type CalcLogEntry struct {
	LoadID     string          `json:"loadID"`
	LoadNumber string          `json:"loadNumber"`
	Formula    string          `json:"formula"`
	Rate       decimal.Decimal `json:"rate"`
	Miles      decimal.Decimal `json:"miles"`
	Revenue    decimal.Decimal `json:"revenue"`
	Amount     decimal.Decimal `json:"amount"`
}

// CalculationLog is the audit record of a settlement computation.
type CalculationLog struct {
	Entries      []CalcLogEntry `json:"entries"`
	Warnings     []string       `json:"warnings,omitempty"`
	CalculatedAt time.Time      `json:"calculatedAt"`
}

// Settlement is a periodic payroll document for one driver: gross pay from
// the period's loads, deduction/addition line items, attached advances, and
// the derived net pay.
type Settlement struct {
	SettlementID     string    `json:"settlementID"` // Primary Key (e.g., UUID)
	CompanyID        string    `json:"companyID"`    // FK -> companies.company_id (NON-NULL)
	DriverID         string    `json:"driverID"`
	SettlementNumber string    `json:"settlementNumber"`
	PeriodStart      time.Time `json:"periodStart"` // PeriodStart <= PeriodEnd
	PeriodEnd        time.Time `json:"periodEnd"`
	LoadIDs          []string  `json:"loadIDs"`

	GrossPay        decimal.Decimal `json:"grossPay"`
	TotalAdditions  decimal.Decimal `json:"totalAdditions"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	TotalAdvances   decimal.Decimal `json:"totalAdvances"`
	NetPay          decimal.Decimal `json:"netPay"`
	// CarriedForward is the negative balance rolled into the next settlement
	// when gross pay cannot cover the adjustments. NetPay is floored at zero.
	CarriedForward decimal.Decimal `json:"carriedForward"`

	Status        SettlementStatus `json:"status"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"` // Required on approval
	Notes         string           `json:"notes"`
	CalculatedAt  time.Time        `json:"calculatedAt"`
	CalcLog       *CalculationLog  `json:"calculationLog,omitempty"`

	// Loaded separately in most read paths.
	LineItems []SettlementLineItem `json:"lineItems,omitempty"`

	AuditFields
}

// Recompute recalculates the derived totals from the given line items and
// attached advances. It is pure and idempotent: recomputing from the same
// inputs always yields the same totals. The net pay invariant:
//
//	netPay = max(0, grossPay + totalAdditions - totalDeductions - totalAdvances)
//
// with the shortfall recorded as CarriedForward.
func (s *Settlement) Recompute(lineItems []SettlementLineItem, advances []DriverAdvance) {
	additions := decimal.Zero
	deductions := decimal.Zero
	for _, li := range lineItems {
		// Advance-linked items are counted through the advances themselves.
		if li.AdvanceID != nil {
			continue
		}
		switch li.Category {
		case CategoryAddition:
			additions = additions.Add(li.Amount)
		case CategoryDeduction:
			deductions = deductions.Add(li.Amount)
		}
	}

	advanceTotal := decimal.Zero
	for _, adv := range advances {
		advanceTotal = advanceTotal.Add(adv.Amount)
	}

	s.TotalAdditions = additions
	s.TotalDeductions = deductions
	s.TotalAdvances = advanceTotal

	net := s.GrossPay.Add(additions).Sub(deductions).Sub(advanceTotal)
	if net.IsNegative() {
		s.CarriedForward = net.Neg()
		s.NetPay = decimal.Zero
	} else {
		s.CarriedForward = decimal.Zero
		s.NetPay = net
	}
}

// SettlementStatusEvent is one entry in a settlement's approval audit trail.
type SettlementStatusEvent struct {
	EventID      string           `json:"eventID"`
	SettlementID string           `json:"settlementID"`
	FromStatus   SettlementStatus `json:"fromStatus"`
	ToStatus     SettlementStatus `json:"toStatus"`
	ActorUserID  string           `json:"actorUserID"`
	Reason       string           `json:"reason,omitempty"` // Required for rejection
	CreatedAt    time.Time        `json:"createdAt"`
}
