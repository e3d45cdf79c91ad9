package dto

import (
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAdvanceRequest defines data for recording a new driver advance.
type CreateAdvanceRequest struct {
	DriverID    string          `json:"driverID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	RequestDate *time.Time      `json:"requestDate"`
	Notes       string          `json:"notes"`
}

// DecideAdvanceRequest carries the note for an advance decision.
type DecideAdvanceRequest struct {
	Note string `json:"note"`
}

// ListAdvancesParams defines query parameters for listing advances.
// When Attachable is set, only unattached advances still eligible for
// settlement attachment are returned and DriverID is required.
type ListAdvancesParams struct {
	DriverID   *string               `form:"driverID"`
	Status     *domain.AdvanceStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED PAID"`
	Attachable bool                  `form:"attachable"`
	Limit      int                   `form:"limit,default=20"`
	NextToken  *string               `form:"nextToken"`
}

// AdvanceResponse defines data returned for an advance.
type AdvanceResponse struct {
	AdvanceID     string               `json:"advanceID"`
	CompanyID     string               `json:"companyID"`
	DriverID      string               `json:"driverID"`
	Amount        decimal.Decimal      `json:"amount"`
	RequestDate   time.Time            `json:"requestDate"`
	Status        domain.AdvanceStatus `json:"status"`
	Notes         string               `json:"notes,omitempty"`
	SettlementID  *string              `json:"settlementID,omitempty"`
	DecidedAt     *time.Time           `json:"decidedAt,omitempty"`
	DecidedBy     *string              `json:"decidedBy,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

// ToAdvanceResponse converts domain.DriverAdvance to DTO.
func ToAdvanceResponse(a *domain.DriverAdvance) AdvanceResponse {
	return AdvanceResponse{
		AdvanceID:     a.AdvanceID,
		CompanyID:     a.CompanyID,
		DriverID:      a.DriverID,
		Amount:        a.Amount,
		RequestDate:   a.RequestDate,
		Status:        a.Status,
		Notes:         a.Notes,
		SettlementID:  a.SettlementID,
		DecidedAt:     a.DecidedAt,
		DecidedBy:     a.DecidedBy,
		CreatedAt:     a.CreatedAt,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}

// ListAdvancesResponse wraps a page of advances with the token for the next page.
type ListAdvancesResponse struct {
	Advances  []AdvanceResponse `json:"advances"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListAdvancesResponse converts a page of advances to DTO.
func ToListAdvancesResponse(as []domain.DriverAdvance, nextToken *string) ListAdvancesResponse {
	list := make([]AdvanceResponse, len(as))
	for i, a := range as {
		list[i] = ToAdvanceResponse(&a)
	}
	return ListAdvancesResponse{Advances: list, NextToken: nextToken}
}
