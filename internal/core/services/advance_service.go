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
	ErrAdvanceAmountNotPositive = errors.New("advance amount must be positive")
)

// advanceService implements the AdvanceSvcFacade interface
type advanceService struct {
	BaseService
	advanceRepo portsrepo.AdvanceRepositoryFacade
	driverRepo  portsrepo.DriverRepositoryFacade
}

// NewAdvanceService creates a new advance service with the provided dependencies
func NewAdvanceService(advanceRepo portsrepo.AdvanceRepositoryFacade, driverRepo portsrepo.DriverRepositoryFacade, companyAuthorizer portssvc.CompanyAuthorizerSvc) portssvc.AdvanceSvcFacade {
	return &advanceService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		advanceRepo: advanceRepo,
		driverRepo:  driverRepo,
	}
}

// Ensure advanceService implements the AdvanceSvcFacade interface
var _ portssvc.AdvanceSvcFacade = (*advanceService)(nil)

// GetAdvanceByID retrieves an advance within a company.
func (s *advanceService) GetAdvanceByID(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	advance, err := s.advanceRepo.FindAdvanceByID(ctx, advanceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find advance by ID", slog.String("advance_id", advanceID))
		}
		return nil, err
	}

	if advance.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	return advance, nil
}

// ListAdvances retrieves a paginated list of advances in a company.
func (s *advanceService) ListAdvances(ctx context.Context, companyID string, requestingUserID string, params dto.ListAdvancesParams) (*dto.ListAdvancesResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	if params.Attachable {
		if params.DriverID == nil || *params.DriverID == "" {
			return nil, fmt.Errorf("%w: driverID is required when filtering attachable advances", apperrors.ErrValidation)
		}
		advances, err := s.advanceRepo.FindAttachableAdvances(ctx, companyID, *params.DriverID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list attachable advances", slog.String("company_id", companyID))
			return nil, err
		}
		resp := dto.ToListAdvancesResponse(advances, nil)
		return &resp, nil
	}

	advances, nextToken, err := s.advanceRepo.ListAdvancesByCompany(ctx, companyID, params.DriverID, params.Status, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list advances", slog.String("company_id", companyID))
		return nil, err
	}

	resp := dto.ToListAdvancesResponse(advances, nextToken)
	return &resp, nil
}

// RequestAdvance records a new pending advance for a driver.
func (s *advanceService) RequestAdvance(ctx context.Context, companyID string, req dto.CreateAdvanceRequest, creatorUserID string) (*domain.DriverAdvance, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAdvanceAmountNotPositive)
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

	now := time.Now()
	requestDate := now
	if req.RequestDate != nil {
		requestDate = *req.RequestDate
	}

	advance := domain.DriverAdvance{
		AdvanceID:   uuid.NewString(),
		CompanyID:   companyID,
		DriverID:    req.DriverID,
		Amount:      req.Amount,
		RequestDate: requestDate,
		Status:      domain.AdvancePending,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.advanceRepo.SaveAdvance(ctx, advance); err != nil {
		s.LogError(ctx, err, "Failed to save advance", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Advance requested",
		slog.String("advance_id", advance.AdvanceID),
		slog.String("driver_id", advance.DriverID))
	return &advance, nil
}

// ApproveAdvance moves a pending advance to approved.
func (s *advanceService) ApproveAdvance(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	return s.decideAdvance(ctx, companyID, advanceID, requestingUserID, domain.AdvanceApproved, "")
}

// RejectAdvance moves a pending advance to rejected. An advance already
// attached to a settlement is detached and the settlement recomputed within
// the same transaction.
func (s *advanceService) RejectAdvance(ctx context.Context, companyID, advanceID string, req dto.DecideAdvanceRequest, requestingUserID string) (*domain.DriverAdvance, error) {
	return s.decideAdvance(ctx, companyID, advanceID, requestingUserID, domain.AdvanceRejected, req.Note)
}

// MarkAdvancePaid moves an approved advance to paid.
func (s *advanceService) MarkAdvancePaid(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	return s.decideAdvance(ctx, companyID, advanceID, requestingUserID, domain.AdvancePaid, "")
}

func (s *advanceService) decideAdvance(ctx context.Context, companyID, advanceID, requestingUserID string, target domain.AdvanceStatus, note string) (*domain.DriverAdvance, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	advance, err := s.advanceRepo.FindAdvanceByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if advance.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	if !advance.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: advance cannot move from %s to %s",
			apperrors.ErrInvalidTransition, advance.Status, target)
	}

	now := time.Now()
	advance.Status = target
	advance.DecidedAt = &now
	advance.DecidedBy = &requestingUserID
	if note != "" {
		advance.Notes = note
	}
	advance.LastUpdatedAt = now
	advance.LastUpdatedBy = requestingUserID

	if target == domain.AdvanceRejected {
		// Rejection of an attached advance cascades into the settlement.
		if err := s.advanceRepo.RejectAdvance(ctx, *advance); err != nil {
			s.LogError(ctx, err, "Failed to reject advance", slog.String("advance_id", advanceID))
			return nil, err
		}
		advance.SettlementID = nil
	} else {
		if err := s.advanceRepo.UpdateAdvance(ctx, *advance); err != nil {
			s.LogError(ctx, err, "Failed to update advance status", slog.String("advance_id", advanceID))
			return nil, err
		}
	}

	s.LogInfo(ctx, "Advance status changed",
		slog.String("advance_id", advanceID),
		slog.String("status", string(target)))
	return advance, nil
}
