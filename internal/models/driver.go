package models

import "github.com/shopspring/decimal"

// PayType mirrors the driver pay policy enum.
type PayType string

// DriverType mirrors the driver classification enum.
type DriverType string

// Driver represents a driver row.
type Driver struct {
	DriverID   string          `db:"driver_id"`
	CompanyID  string          `db:"company_id"`
	Name       string          `db:"name"`
	PayType    PayType         `db:"pay_type"`
	PayRate    decimal.Decimal `db:"pay_rate"`
	DriverType DriverType      `db:"driver_type"`
	IsActive   bool            `db:"is_active"`
	AuditFields
}
