package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

var (
	ErrDriverNameMissing = errors.New("driver name is required")
)

// driverService implements the DriverSvcFacade interface
type driverService struct {
	BaseService
	driverRepo portsrepo.DriverRepositoryFacade
}

// NewDriverService creates a new driver service with the provided dependencies
func NewDriverService(driverRepo portsrepo.DriverRepositoryFacade, companyAuthorizer portssvc.CompanyAuthorizerSvc) portssvc.DriverSvcFacade {
	return &driverService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		driverRepo:  driverRepo,
	}
}

// Ensure driverService implements the DriverSvcFacade interface
var _ portssvc.DriverSvcFacade = (*driverService)(nil)

// GetDriverByID retrieves a driver within a company.
func (s *driverService) GetDriverByID(ctx context.Context, companyID, driverID string, requestingUserID string) (*domain.Driver, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find driver by ID", slog.String("driver_id", driverID))
		}
		return nil, err
	}

	// Obscure existence of drivers in other companies.
	if driver.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	return driver, nil
}

// ListDrivers retrieves a paginated list of drivers in a company.
func (s *driverService) ListDrivers(ctx context.Context, companyID string, requestingUserID string, params dto.ListDriversParams) ([]domain.Driver, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	drivers, err := s.driverRepo.ListDriversByCompany(ctx, companyID, params.IncludeInactive, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list drivers", slog.String("company_id", companyID))
		return nil, err
	}

	if drivers == nil {
		return []domain.Driver{}, nil
	}
	return drivers, nil
}

// CreateDriver persists a new driver.
func (s *driverService) CreateDriver(ctx context.Context, companyID string, req dto.CreateDriverRequest, creatorUserID string) (*domain.Driver, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDriverNameMissing)
	}
	if req.PayRate.IsNegative() {
		return nil, fmt.Errorf("%w: pay rate must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	driver := domain.Driver{
		DriverID:   uuid.NewString(),
		CompanyID:  companyID,
		Name:       req.Name,
		PayType:    req.PayType,
		PayRate:    req.PayRate,
		DriverType: req.DriverType,
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.driverRepo.SaveDriver(ctx, driver); err != nil {
		s.LogError(ctx, err, "Failed to save driver", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Driver created successfully",
		slog.String("driver_id", driver.DriverID),
		slog.String("company_id", companyID))
	return &driver, nil
}

// UpdateDriver updates a driver's details. Pay policy changes take effect on
// the next settlement generation; existing settlements keep their figures.
func (s *driverService) UpdateDriver(ctx context.Context, companyID, driverID string, req dto.UpdateDriverRequest, requestingUserID string) (*domain.Driver, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	updated := false
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDriverNameMissing)
		}
		driver.Name = *req.Name
		updated = true
	}
	if req.PayType != nil {
		driver.PayType = *req.PayType
		updated = true
	}
	if req.PayRate != nil {
		if req.PayRate.IsNegative() {
			return nil, fmt.Errorf("%w: pay rate must not be negative", apperrors.ErrValidation)
		}
		driver.PayRate = *req.PayRate
		updated = true
	}
	if req.DriverType != nil {
		driver.DriverType = *req.DriverType
		updated = true
	}

	if !updated {
		return driver, nil
	}

	driver.LastUpdatedAt = time.Now()
	driver.LastUpdatedBy = requestingUserID

	if err := s.driverRepo.UpdateDriver(ctx, *driver); err != nil {
		s.LogError(ctx, err, "Failed to update driver", slog.String("driver_id", driverID))
		return nil, err
	}

	s.LogInfo(ctx, "Driver updated successfully", slog.String("driver_id", driverID))
	return driver, nil
}

// DeactivateDriver marks a driver as inactive.
func (s *driverService) DeactivateDriver(ctx context.Context, companyID, driverID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.CompanyID != companyID {
		return apperrors.ErrNotFound
	}

	if err := s.driverRepo.MarkDriverInactive(ctx, driverID, requestingUserID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate driver", slog.String("driver_id", driverID))
		return err
	}

	s.LogInfo(ctx, "Driver deactivated", slog.String("driver_id", driverID))
	return nil
}
