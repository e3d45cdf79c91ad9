package domain

import (
	"github.com/shopspring/decimal"
)

// SettlementLineItem is one deduction or addition on a settlement. Amount is
// always stored positive; the sign is implied by the category, which is
// derived from the kind.
type SettlementLineItem struct {
	LineItemID   string           `json:"lineItemID"` // Primary Key (e.g., UUID)
	SettlementID string           `json:"settlementID"`
	Kind         RuleKind         `json:"kind"`
	Category     LineItemCategory `json:"category"` // Always Kind.Category()
	Description  string           `json:"description"`
	Amount       decimal.Decimal  `json:"amount"` // Decimal > 0

	// SourceRuleID links back to the template that produced this item.
	// Manual entries have none.
	SourceRuleID *string `json:"sourceRuleID,omitempty"`

	// AdvanceID links a deduction generated from a cash advance.
	AdvanceID *string `json:"advanceID,omitempty"`

	AuditFields
}

// NewLineItem builds a line item with the category derived from the kind.
func NewLineItem(settlementID string, kind RuleKind, description string, amount decimal.Decimal) SettlementLineItem {
	return SettlementLineItem{
		SettlementID: settlementID,
		Kind:         kind,
		Category:     kind.Category(),
		Description:  description,
		Amount:       amount,
	}
}
