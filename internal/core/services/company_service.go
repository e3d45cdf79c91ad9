package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
)

// companyService implements the CompanySvcFacade interface
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
}

// NewCompanyService creates a new company service with the provided dependencies
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo: companyRepo,
	}
}

// Ensure companyService implements the CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// GetCompanyByID retrieves a company by its ID
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find company by ID",
				slog.String("company_id", companyID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Company retrieved successfully",
		slog.String("company_id", company.CompanyID))
	return company, nil
}

// ListUserCompanies retrieves all companies a user belongs to
func (s *companyService) ListUserCompanies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompaniesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list companies for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if !includeDisabled {
		active := make([]domain.Company, 0, len(companies))
		for _, c := range companies {
			if c.IsActive {
				active = append(active, c)
			}
		}
		companies = active
	}

	if companies == nil {
		return []domain.Company{}, nil
	}

	s.LogDebug(ctx, "Companies listed successfully",
		slog.Int("count", len(companies)),
		slog.String("user_id", userID))
	return companies, nil
}

// ListCompanyUsers retrieves all users and their roles for a company
func (s *companyService) ListCompanyUsers(ctx context.Context, companyID string, requestingUserID string) ([]domain.UserCompany, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.companyRepo.ListCompanyUsers(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company users",
			slog.String("company_id", companyID))
		return nil, err
	}
	return members, nil
}

// CreateCompany creates a new company with the creator as admin
func (s *companyService) CreateCompany(ctx context.Context, name, dotNumber, creatorUserID string) (*domain.Company, error) {
	now := time.Now()
	companyID := uuid.NewString()

	company := domain.Company{
		CompanyID: companyID,
		Name:      name,
		DOTNumber: dotNumber,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.companyRepo.SaveCompany(ctx, company)
	if err != nil {
		s.LogError(ctx, err, "Failed to save company",
			slog.String("company_id", company.CompanyID))
		return nil, err
	}

	// Add creator as an admin to the new company
	membershipErr := s.AddUserToCompany(ctx, creatorUserID, creatorUserID, companyID, domain.RoleAdmin)
	if membershipErr != nil {
		s.LogError(ctx, membershipErr, "Failed to add creator as admin to new company",
			slog.String("company_id", company.CompanyID),
			slog.String("user_id", creatorUserID))
		// The company itself was created; surface the membership failure in logs only.
	}

	s.LogInfo(ctx, "Company created successfully",
		slog.String("company_id", company.CompanyID),
		slog.String("creator_id", creatorUserID))
	return &company, nil
}

// UpdateCompany updates a company's details
func (s *companyService) UpdateCompany(ctx context.Context, companyID, name, dotNumber string, requestingUserID string) (*domain.Company, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	company.Name = name
	company.DOTNumber = dotNumber
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		s.LogError(ctx, err, "Failed to update company",
			slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Company updated successfully",
		slog.String("company_id", companyID))
	return company, nil
}

// DeactivateCompany marks a company as inactive
func (s *companyService) DeactivateCompany(ctx context.Context, companyID string, requestingUserID string) error {
	return s.setCompanyActive(ctx, companyID, requestingUserID, false)
}

// ActivateCompany marks a company as active
func (s *companyService) ActivateCompany(ctx context.Context, companyID string, requestingUserID string) error {
	return s.setCompanyActive(ctx, companyID, requestingUserID, true)
}

func (s *companyService) setCompanyActive(ctx context.Context, companyID string, requestingUserID string, active bool) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return err
	}

	if company.IsActive == active {
		return nil
	}

	company.IsActive = active
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		s.LogError(ctx, err, "Failed to change company active state",
			slog.String("company_id", companyID),
			slog.Bool("active", active))
		return err
	}

	s.LogInfo(ctx, "Company active state changed",
		slog.String("company_id", companyID),
		slog.Bool("active", active))
	return nil
}

// AddUserToCompany adds a user to a company with a specific role
func (s *companyService) AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.UserCompanyRole) error {
	// Self-assignment is permitted (e.g., creator adding self as admin)
	if addingUserID != targetUserID {
		err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin)
		if err != nil {
			s.LogError(ctx, err, "User not authorized to add members to company",
				slog.String("adding_user_id", addingUserID),
				slog.String("company_id", companyID))
			return err
		}
	}

	membership := domain.UserCompany{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	err := s.companyRepo.AddUserToCompany(ctx, membership)
	if err != nil {
		s.LogError(ctx, err, "Failed to add user to company",
			slog.String("target_user_id", targetUserID),
			slog.String("company_id", companyID))
		return err
	}

	s.LogInfo(ctx, "User added to company successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("company_id", companyID),
		slog.String("role", string(role)))
	return nil
}

// RemoveUserFromCompany removes a user from a company
func (s *companyService) RemoveUserFromCompany(ctx context.Context, requestingUserID, targetUserID, companyID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	membership, err := s.companyRepo.FindUserCompanyRole(ctx, targetUserID, companyID)
	if err != nil {
		return err
	}

	membership.Role = domain.RoleRemoved
	if err := s.companyRepo.UpdateUserCompanyRole(ctx, *membership); err != nil {
		s.LogError(ctx, err, "Failed to remove user from company",
			slog.String("target_user_id", targetUserID),
			slog.String("company_id", companyID))
		return err
	}

	s.LogInfo(ctx, "User removed from company",
		slog.String("target_user_id", targetUserID),
		slog.String("company_id", companyID))
	return nil
}

// UpdateUserCompanyRole updates a user's role in a company
func (s *companyService) UpdateUserCompanyRole(ctx context.Context, requestingUserID, targetUserID, companyID string, newRole domain.UserCompanyRole) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	membership, err := s.companyRepo.FindUserCompanyRole(ctx, targetUserID, companyID)
	if err != nil {
		return err
	}

	membership.Role = newRole
	if err := s.companyRepo.UpdateUserCompanyRole(ctx, *membership); err != nil {
		s.LogError(ctx, err, "Failed to update user company role",
			slog.String("target_user_id", targetUserID),
			slog.String("company_id", companyID),
			slog.String("role", string(newRole)))
		return err
	}

	s.LogInfo(ctx, "User company role updated",
		slog.String("target_user_id", targetUserID),
		slog.String("company_id", companyID),
		slog.String("role", string(newRole)))
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a company
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error {
	membership, err := s.companyRepo.FindUserCompanyRole(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of company",
				slog.String("user_id", userID),
				slog.String("company_id", companyID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user company role",
			slog.String("user_id", userID),
			slog.String("company_id", companyID))
		return err
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.UserCompanyRole) bool {
	switch requiredRole {
	case domain.RoleReadOnly:
		return userRole == domain.RoleReadOnly || userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleMember:
		return userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
