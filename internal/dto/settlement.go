package dto

import (
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GenerateSettlementRequest defines data for generating a draft settlement.
type GenerateSettlementRequest struct {
	DriverID    string    `json:"driverID" binding:"required"`
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
	Notes       string    `json:"notes"`
}

// AddLineItemRequest defines data for a manual settlement line item.
type AddLineItemRequest struct {
	Kind        domain.RuleKind `json:"kind" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// ApproveSettlementRequest carries the payment method recorded on approval.
type ApproveSettlementRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// RejectSettlementRequest carries the mandatory rejection note.
type RejectSettlementRequest struct {
	Note string `json:"note" binding:"required"`
}

// ListSettlementsParams defines query parameters for listing settlements.
type ListSettlementsParams struct {
	DriverID  *string                  `form:"driverID"`
	Status    *domain.SettlementStatus `form:"status" binding:"omitempty,oneof=DRAFT PENDING_APPROVAL APPROVED REJECTED PAID"`
	Limit     int                      `form:"limit,default=20"`
	NextToken *string                  `form:"nextToken"`
}

// LineItemResponse defines data returned for a settlement line item.
type LineItemResponse struct {
	LineItemID   string                  `json:"lineItemID"`
	SettlementID string                  `json:"settlementID"`
	Kind         domain.RuleKind         `json:"kind"`
	Category     domain.LineItemCategory `json:"category"`
	Description  string                  `json:"description"`
	Amount       decimal.Decimal         `json:"amount"`
	SourceRuleID *string                 `json:"sourceRuleID,omitempty"`
	AdvanceID    *string                 `json:"advanceID,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	CreatedBy    string                  `json:"createdBy"`
}

// ToLineItemResponse converts domain.SettlementLineItem to DTO.
func ToLineItemResponse(li *domain.SettlementLineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:   li.LineItemID,
		SettlementID: li.SettlementID,
		Kind:         li.Kind,
		Category:     li.Category,
		Description:  li.Description,
		Amount:       li.Amount,
		SourceRuleID: li.SourceRuleID,
		AdvanceID:    li.AdvanceID,
		CreatedAt:    li.CreatedAt,
		CreatedBy:    li.CreatedBy,
	}
}

// SettlementResponse defines data returned for a settlement.
type SettlementResponse struct {
	SettlementID     string                  `json:"settlementID"`
	CompanyID        string                  `json:"companyID"`
	DriverID         string                  `json:"driverID"`
	SettlementNumber string                  `json:"settlementNumber"`
	PeriodStart      time.Time               `json:"periodStart"`
	PeriodEnd        time.Time               `json:"periodEnd"`
	LoadIDs          []string                `json:"loadIDs"`
	GrossPay         decimal.Decimal         `json:"grossPay"`
	TotalAdditions   decimal.Decimal         `json:"totalAdditions"`
	TotalDeductions  decimal.Decimal         `json:"totalDeductions"`
	TotalAdvances    decimal.Decimal         `json:"totalAdvances"`
	NetPay           decimal.Decimal         `json:"netPay"`
	CarriedForward   decimal.Decimal         `json:"carriedForward"`
	Status           domain.SettlementStatus `json:"status"`
	PaymentMethod    *string                 `json:"paymentMethod,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	CalculatedAt     time.Time               `json:"calculatedAt"`
	CalculationLog   *domain.CalculationLog  `json:"calculationLog,omitempty"`
	LineItems        []LineItemResponse      `json:"lineItems,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	CreatedBy        string                  `json:"createdBy"`
	LastUpdatedAt    time.Time               `json:"lastUpdatedAt"`
	LastUpdatedBy    string                  `json:"lastUpdatedBy"`
}

// ToSettlementResponse converts domain.Settlement to DTO.
func ToSettlementResponse(s *domain.Settlement) SettlementResponse {
	lineItems := make([]LineItemResponse, len(s.LineItems))
	for i, li := range s.LineItems {
		lineItems[i] = ToLineItemResponse(&li)
	}
	return SettlementResponse{
		SettlementID:     s.SettlementID,
		CompanyID:        s.CompanyID,
		DriverID:         s.DriverID,
		SettlementNumber: s.SettlementNumber,
		PeriodStart:      s.PeriodStart,
		PeriodEnd:        s.PeriodEnd,
		LoadIDs:          s.LoadIDs,
		GrossPay:         s.GrossPay,
		TotalAdditions:   s.TotalAdditions,
		TotalDeductions:  s.TotalDeductions,
		TotalAdvances:    s.TotalAdvances,
		NetPay:           s.NetPay,
		CarriedForward:   s.CarriedForward,
		Status:           s.Status,
		PaymentMethod:    s.PaymentMethod,
		Notes:            s.Notes,
		CalculatedAt:     s.CalculatedAt,
		CalculationLog:   s.CalcLog,
		LineItems:        lineItems,
		CreatedAt:        s.CreatedAt,
		CreatedBy:        s.CreatedBy,
		LastUpdatedAt:    s.LastUpdatedAt,
		LastUpdatedBy:    s.LastUpdatedBy,
	}
}

// ListSettlementsResponse wraps a page of settlements with the token for the
// next page.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ToListSettlementsResponse converts a page of domain.Settlement to DTO.
func ToListSettlementsResponse(ss []domain.Settlement, nextToken *string) ListSettlementsResponse {
	list := make([]SettlementResponse, len(ss))
	for i, s := range ss {
		list[i] = ToSettlementResponse(&s)
	}
	return ListSettlementsResponse{Settlements: list, NextToken: nextToken}
}

// StatusEventResponse defines data returned for a settlement status event.
type StatusEventResponse struct {
	EventID      string                  `json:"eventID"`
	SettlementID string                  `json:"settlementID"`
	FromStatus   domain.SettlementStatus `json:"fromStatus"`
	ToStatus     domain.SettlementStatus `json:"toStatus"`
	ActorUserID  string                  `json:"actorUserID"`
	Reason       string                  `json:"reason,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// ToStatusEventResponses converts status events to DTOs.
func ToStatusEventResponses(events []domain.SettlementStatusEvent) []StatusEventResponse {
	list := make([]StatusEventResponse, len(events))
	for i, e := range events {
		list[i] = StatusEventResponse{
			EventID:      e.EventID,
			SettlementID: e.SettlementID,
			FromStatus:   e.FromStatus,
			ToStatus:     e.ToStatus,
			ActorUserID:  e.ActorUserID,
			Reason:       e.Reason,
			CreatedAt:    e.CreatedAt,
		}
	}
	return list
}
