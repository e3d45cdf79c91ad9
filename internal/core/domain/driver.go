package domain

import (
	"github.com/shopspring/decimal"
)

// PayType defines how a driver's per-load compensation is computed.
type PayType string

const (
	PayPerMile    PayType = "PER_MILE"
	PayPerLoad    PayType = "PER_LOAD"
	PayPercentage PayType = "PERCENTAGE"
	PayHourly     PayType = "HOURLY"
	PayWeekly     PayType = "WEEKLY" // Flat weekly salary, resolved at settlement level, never per load
)

// DriverType classifies the driver's contractual relationship with the company.
// Deduction rule templates may be scoped to a single driver type.
type DriverType string

const (
	CompanyDriver  DriverType = "COMPANY_DRIVER"
	OwnerOperator  DriverType = "OWNER_OPERATOR"
	LeaseOperator  DriverType = "LEASE_OPERATOR"
)

// Driver holds the pay-relevant slice of a driver record.
type Driver struct {
	DriverID    string          `json:"driverID"`  // Primary Key (e.g., UUID)
	CompanyID   string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	Name        string          `json:"name"`
	PayType     PayType         `json:"payType"`
	PayRate     decimal.Decimal `json:"payRate"` // Semantics depend on PayType (per mile, percent, hourly, flat)
	DriverType  DriverType      `json:"driverType"`
	IsActive    bool            `json:"isActive"`
	AuditFields                 // Embed CreatedAt, CreatedBy, etc.
}
