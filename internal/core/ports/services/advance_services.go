package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// AdvanceReaderSvc defines read operations for driver advances
type AdvanceReaderSvc interface {
	// GetAdvanceByID retrieves an advance within a company.
	GetAdvanceByID(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error)

	// ListAdvances retrieves a paginated list of advances in a company.
	ListAdvances(ctx context.Context, companyID string, requestingUserID string, params dto.ListAdvancesParams) (*dto.ListAdvancesResponse, error)
}

// AdvanceWriterSvc defines write operations for driver advances
type AdvanceWriterSvc interface {
	// RequestAdvance records a new pending advance for a driver.
	RequestAdvance(ctx context.Context, companyID string, req dto.CreateAdvanceRequest, creatorUserID string) (*domain.DriverAdvance, error)

	// ApproveAdvance moves a pending advance to approved.
	ApproveAdvance(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error)

	// RejectAdvance moves a pending advance to rejected. If the advance is
	// attached to a settlement it is detached and the settlement recomputed.
	RejectAdvance(ctx context.Context, companyID, advanceID string, req dto.DecideAdvanceRequest, requestingUserID string) (*domain.DriverAdvance, error)

	// MarkAdvancePaid moves an approved advance to paid, meaning the cash was
	// handed out.
	MarkAdvancePaid(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error)
}

// AdvanceSvcFacade combines all advance-related service interfaces
type AdvanceSvcFacade interface {
	AdvanceReaderSvc
	AdvanceWriterSvc
}
