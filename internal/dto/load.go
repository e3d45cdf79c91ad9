package dto

import (
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoadRequest defines data for creating a new load.
type CreateLoadRequest struct {
	DriverID    string            `json:"driverID" binding:"required"`
	LoadNumber  string            `json:"loadNumber" binding:"required"`
	TotalMiles  decimal.Decimal   `json:"totalMiles"`
	LoadedMiles decimal.Decimal   `json:"loadedMiles"`
	EmptyMiles  decimal.Decimal   `json:"emptyMiles"`
	Revenue     decimal.Decimal   `json:"revenue" binding:"required"`
	DriverPay   *decimal.Decimal  `json:"driverPay"`
	Status      domain.LoadStatus `json:"status" binding:"required,oneof=IN_TRANSIT DELIVERED INVOICED PAID CANCELLED"`
	DeliveredAt *time.Time        `json:"deliveredAt"`
}

// UpdateLoadRequest defines data for updating a load.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateLoadRequest struct {
	TotalMiles  *decimal.Decimal   `json:"totalMiles"`
	LoadedMiles *decimal.Decimal   `json:"loadedMiles"`
	EmptyMiles  *decimal.Decimal   `json:"emptyMiles"`
	Revenue     *decimal.Decimal   `json:"revenue"`
	DriverPay   *decimal.Decimal   `json:"driverPay"`
	Status      *domain.LoadStatus `json:"status" binding:"omitempty,oneof=IN_TRANSIT DELIVERED INVOICED PAID CANCELLED"`
	DeliveredAt *time.Time         `json:"deliveredAt"`
}

// ListLoadsParams defines query parameters for listing loads.
type ListLoadsParams struct {
	DriverID  *string `form:"driverID"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// LoadResponse defines data returned for a load.
type LoadResponse struct {
	LoadID             string            `json:"loadID"`
	CompanyID          string            `json:"companyID"`
	DriverID           string            `json:"driverID"`
	LoadNumber         string            `json:"loadNumber"`
	TotalMiles         decimal.Decimal   `json:"totalMiles"`
	LoadedMiles        decimal.Decimal   `json:"loadedMiles"`
	EmptyMiles         decimal.Decimal   `json:"emptyMiles"`
	Revenue            decimal.Decimal   `json:"revenue"`
	DriverPay          *decimal.Decimal  `json:"driverPay,omitempty"`
	Status             domain.LoadStatus `json:"status"`
	ReadyForSettlement bool              `json:"readyForSettlement"`
	DeliveredAt        *time.Time        `json:"deliveredAt,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	LastUpdatedAt      time.Time         `json:"lastUpdatedAt"`
}

// ToLoadResponse converts domain.Load to DTO.
func ToLoadResponse(l *domain.Load) LoadResponse {
	return LoadResponse{
		LoadID:             l.LoadID,
		CompanyID:          l.CompanyID,
		DriverID:           l.DriverID,
		LoadNumber:         l.LoadNumber,
		TotalMiles:         l.TotalMiles,
		LoadedMiles:        l.LoadedMiles,
		EmptyMiles:         l.EmptyMiles,
		Revenue:            l.Revenue,
		DriverPay:          l.DriverPay,
		Status:             l.Status,
		ReadyForSettlement: l.ReadyForSettlement,
		DeliveredAt:        l.DeliveredAt,
		CreatedAt:          l.CreatedAt,
		LastUpdatedAt:      l.LastUpdatedAt,
	}
}

// ListLoadsResponse wraps a page of loads with the token for the next page.
type ListLoadsResponse struct {
	Loads     []LoadResponse `json:"loads"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToListLoadsResponse converts a page of domain.Load to DTO.
func ToListLoadsResponse(ls []domain.Load, nextToken *string) ListLoadsResponse {
	list := make([]LoadResponse, len(ls))
	for i, l := range ls {
		list[i] = ToLoadResponse(&l)
	}
	return ListLoadsResponse{Loads: list, NextToken: nextToken}
}
