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
	ErrLoadNotDelivered = errors.New("only delivered loads can be marked ready for settlement")
)

// loadService implements the LoadSvcFacade interface
type loadService struct {
	BaseService
	loadRepo   portsrepo.LoadRepositoryFacade
	driverRepo portsrepo.DriverRepositoryFacade
}

// NewLoadService creates a new load service with the provided dependencies
func NewLoadService(loadRepo portsrepo.LoadRepositoryFacade, driverRepo portsrepo.DriverRepositoryFacade, companyAuthorizer portssvc.CompanyAuthorizerSvc) portssvc.LoadSvcFacade {
	return &loadService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		loadRepo:    loadRepo,
		driverRepo:  driverRepo,
	}
}

// Ensure loadService implements the LoadSvcFacade interface
var _ portssvc.LoadSvcFacade = (*loadService)(nil)

// GetLoadByID retrieves a load within a company.
func (s *loadService) GetLoadByID(ctx context.Context, companyID, loadID string, requestingUserID string) (*domain.Load, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	load, err := s.loadRepo.FindLoadByID(ctx, loadID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find load by ID", slog.String("load_id", loadID))
		}
		return nil, err
	}

	if load.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	return load, nil
}

// ListLoads retrieves a paginated list of loads in a company.
func (s *loadService) ListLoads(ctx context.Context, companyID string, requestingUserID string, params dto.ListLoadsParams) (*dto.ListLoadsResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	loads, nextToken, err := s.loadRepo.ListLoadsByCompany(ctx, companyID, params.DriverID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loads", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to retrieve loads: %w", err)
	}

	resp := dto.ToListLoadsResponse(loads, nextToken)
	return &resp, nil
}

// CreateLoad persists a new load after validating the driver assignment.
func (s *loadService) CreateLoad(ctx context.Context, companyID string, req dto.CreateLoadRequest, creatorUserID string) (*domain.Load, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, req.DriverID)
		}
		return nil, err
	}
	if driver.CompanyID != companyID {
		return nil, fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, req.DriverID)
	}

	if req.Revenue.IsNegative() {
		return nil, fmt.Errorf("%w: revenue must not be negative", apperrors.ErrValidation)
	}
	if req.TotalMiles.IsNegative() || req.LoadedMiles.IsNegative() || req.EmptyMiles.IsNegative() {
		return nil, fmt.Errorf("%w: miles must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	load := domain.Load{
		LoadID:      uuid.NewString(),
		CompanyID:   companyID,
		DriverID:    req.DriverID,
		LoadNumber:  req.LoadNumber,
		TotalMiles:  req.TotalMiles,
		LoadedMiles: req.LoadedMiles,
		EmptyMiles:  req.EmptyMiles,
		Revenue:     req.Revenue,
		DriverPay:   req.DriverPay,
		Status:      req.Status,
		DeliveredAt: req.DeliveredAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.loadRepo.SaveLoad(ctx, load); err != nil {
		s.LogError(ctx, err, "Failed to save load", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Load created successfully",
		slog.String("load_id", load.LoadID),
		slog.String("company_id", companyID))
	return &load, nil
}

// UpdateLoad updates a load's details.
func (s *loadService) UpdateLoad(ctx context.Context, companyID, loadID string, req dto.UpdateLoadRequest, requestingUserID string) (*domain.Load, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	load, err := s.loadRepo.FindLoadByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	updated := false
	if req.TotalMiles != nil {
		load.TotalMiles = *req.TotalMiles
		updated = true
	}
	if req.LoadedMiles != nil {
		load.LoadedMiles = *req.LoadedMiles
		updated = true
	}
	if req.EmptyMiles != nil {
		load.EmptyMiles = *req.EmptyMiles
		updated = true
	}
	if req.Revenue != nil {
		if req.Revenue.IsNegative() {
			return nil, fmt.Errorf("%w: revenue must not be negative", apperrors.ErrValidation)
		}
		load.Revenue = *req.Revenue
		updated = true
	}
	if req.DriverPay != nil {
		load.DriverPay = req.DriverPay
		updated = true
	}
	if req.Status != nil {
		load.Status = *req.Status
		updated = true
	}
	if req.DeliveredAt != nil {
		load.DeliveredAt = req.DeliveredAt
		updated = true
	}

	if !updated {
		return load, nil
	}

	load.LastUpdatedAt = time.Now()
	load.LastUpdatedBy = requestingUserID

	if err := s.loadRepo.UpdateLoad(ctx, *load); err != nil {
		s.LogError(ctx, err, "Failed to update load", slog.String("load_id", loadID))
		return nil, err
	}

	s.LogInfo(ctx, "Load updated successfully", slog.String("load_id", loadID))
	return load, nil
}

// MarkReadyForSettlement flags a delivered load for settlement generation.
func (s *loadService) MarkReadyForSettlement(ctx context.Context, companyID, loadID string, requestingUserID string) (*domain.Load, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	load, err := s.loadRepo.FindLoadByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	if load.Status != domain.LoadDelivered && load.Status != domain.LoadInvoiced && load.Status != domain.LoadPaid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrLoadNotDelivered)
	}

	if load.ReadyForSettlement {
		return load, nil
	}

	load.ReadyForSettlement = true
	load.LastUpdatedAt = time.Now()
	load.LastUpdatedBy = requestingUserID

	if err := s.loadRepo.UpdateLoad(ctx, *load); err != nil {
		s.LogError(ctx, err, "Failed to mark load ready for settlement", slog.String("load_id", loadID))
		return nil, err
	}

	s.LogInfo(ctx, "Load marked ready for settlement", slog.String("load_id", loadID))
	return load, nil
}
