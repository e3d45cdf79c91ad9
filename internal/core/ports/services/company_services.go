package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
)

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	// GetCompanyByID retrieves a specific company by its ID.
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListUserCompanies retrieves companies a user belongs to.
	// If includeDisabled is true, it includes inactive companies.
	ListUserCompanies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Company, error)

	// ListCompanyUsers retrieves all users and their roles for a specific company.
	// Only members of the company can access this data.
	ListCompanyUsers(ctx context.Context, companyID string, requestingUserID string) ([]domain.UserCompany, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// CreateCompany persists a new company with the creator as admin.
	CreateCompany(ctx context.Context, name, dotNumber, creatorUserID string) (*domain.Company, error)

	// UpdateCompany updates a company's details.
	UpdateCompany(ctx context.Context, companyID, name, dotNumber string, requestingUserID string) (*domain.Company, error)

	// DeactivateCompany marks a company as inactive.
	DeactivateCompany(ctx context.Context, companyID string, requestingUserID string) error

	// ActivateCompany marks a company as active.
	ActivateCompany(ctx context.Context, companyID string, requestingUserID string) error
}

// CompanyMembershipSvc defines operations for managing company membership
type CompanyMembershipSvc interface {
	// AddUserToCompany adds a user to a company with a specific role.
	AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.UserCompanyRole) error

	// RemoveUserFromCompany removes a user from a company.
	// Only company admins can remove users from a company.
	RemoveUserFromCompany(ctx context.Context, requestingUserID, targetUserID, companyID string) error

	// UpdateUserCompanyRole updates a user's role in a company.
	// Only company admins can update user roles.
	UpdateUserCompanyRole(ctx context.Context, requestingUserID, targetUserID, companyID string, newRole domain.UserCompanyRole) error
}

// CompanyAuthorizerSvc defines operations for company authorization
type CompanyAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a company.
	AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error
}

// CompanySvcFacade combines all company-related service interfaces
// This is a facade for clients that need access to all operations
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
	CompanyMembershipSvc
	CompanyAuthorizerSvc
}
