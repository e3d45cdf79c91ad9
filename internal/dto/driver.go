package dto

import (
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDriverRequest defines data for creating a new driver.
type CreateDriverRequest struct {
	Name       string            `json:"name" binding:"required"`
	PayType    domain.PayType    `json:"payType" binding:"required,oneof=PER_MILE PER_LOAD PERCENTAGE HOURLY WEEKLY"`
	PayRate    decimal.Decimal   `json:"payRate" binding:"required"`
	DriverType domain.DriverType `json:"driverType" binding:"required,oneof=COMPANY_DRIVER OWNER_OPERATOR LEASE_OPERATOR"`
}

// UpdateDriverRequest defines data for updating a driver.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateDriverRequest struct {
	Name       *string            `json:"name"`
	PayType    *domain.PayType    `json:"payType" binding:"omitempty,oneof=PER_MILE PER_LOAD PERCENTAGE HOURLY WEEKLY"`
	PayRate    *decimal.Decimal   `json:"payRate"`
	DriverType *domain.DriverType `json:"driverType" binding:"omitempty,oneof=COMPANY_DRIVER OWNER_OPERATOR LEASE_OPERATOR"`
}

// ListDriversParams defines query parameters for listing drivers.
type ListDriversParams struct {
	IncludeInactive bool `form:"includeInactive,default=false"`
	Limit           int  `form:"limit,default=20"`
	Offset          int  `form:"offset,default=0"`
}

// DriverResponse defines data returned for a driver.
type DriverResponse struct {
	DriverID      string            `json:"driverID"`
	CompanyID     string            `json:"companyID"`
	Name          string            `json:"name"`
	PayType       domain.PayType    `json:"payType"`
	PayRate       decimal.Decimal   `json:"payRate"`
	DriverType    domain.DriverType `json:"driverType"`
	IsActive      bool              `json:"isActive"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// ToDriverResponse converts domain.Driver to DTO.
func ToDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		DriverID:      d.DriverID,
		CompanyID:     d.CompanyID,
		Name:          d.Name,
		PayType:       d.PayType,
		PayRate:       d.PayRate,
		DriverType:    d.DriverType,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ListDriversResponse wraps a list of drivers.
type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

// ToListDriversResponse converts a slice of domain.Driver to DTO.
func ToListDriversResponse(ds []domain.Driver) ListDriversResponse {
	list := make([]DriverResponse, len(ds))
	for i, d := range ds {
		list[i] = ToDriverResponse(&d)
	}
	return ListDriversResponse{Drivers: list}
}
