package domain

import "time"

// Company represents a tenant: a trucking company whose drivers, loads and
// settlements are isolated from every other tenant.
type Company struct {
	CompanyID   string `json:"companyID"` // Primary Key (e.g., UUID)
	Name        string `json:"name"`
	DOTNumber   string `json:"dotNumber"` // Optional DOT registration number
	IsActive    bool   `json:"isActive"`
	AuditFields        // Embed common audit fields
}

// UserCompanyRole defines the possible roles a user can have within a company.
type UserCompanyRole string

const (
	RoleAdmin    UserCompanyRole = "ADMIN"
	RoleMember   UserCompanyRole = "MEMBER"
	RoleReadOnly UserCompanyRole = "READONLY"
	RoleRemoved  UserCompanyRole = "REMOVED" // For users who have been removed from the company
)

// UserCompany represents the membership of a User in a Company.
type UserCompany struct {
	UserID    string          `json:"userID"`
	UserName  string          `json:"userName"`
	CompanyID string          `json:"companyID"`
	Role      UserCompanyRole `json:"role"`
	JoinedAt  time.Time       `json:"joinedAt"`
}
