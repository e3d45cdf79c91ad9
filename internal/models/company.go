package models

import "time"

// Company represents a tenant row.
type Company struct {
	CompanyID string `db:"company_id"`
	Name      string `db:"name"`
	DOTNumber string `db:"dot_number"` // Nullable in DB, empty string here
	IsActive  bool   `db:"is_active"`
	AuditFields
}

// UserCompanyRole mirrors the membership role enum.
type UserCompanyRole string

// UserCompany represents the membership of a user in a company.
type UserCompany struct {
	UserID    string          `db:"user_id"`
	CompanyID string          `db:"company_id"`
	Role      UserCompanyRole `db:"role"`
	JoinedAt  time.Time       `db:"joined_at"`
	AuditFields
}
