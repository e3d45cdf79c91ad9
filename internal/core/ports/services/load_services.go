package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// LoadReaderSvc defines read operations for load data
type LoadReaderSvc interface {
	// GetLoadByID retrieves a load within a company.
	GetLoadByID(ctx context.Context, companyID, loadID string, requestingUserID string) (*domain.Load, error)

	// ListLoads retrieves a paginated list of loads in a company.
	ListLoads(ctx context.Context, companyID string, requestingUserID string, params dto.ListLoadsParams) (*dto.ListLoadsResponse, error)
}

// LoadWriterSvc defines write operations for load data
type LoadWriterSvc interface {
	// CreateLoad persists a new load.
	CreateLoad(ctx context.Context, companyID string, req dto.CreateLoadRequest, creatorUserID string) (*domain.Load, error)

	// UpdateLoad updates a load's details.
	UpdateLoad(ctx context.Context, companyID, loadID string, req dto.UpdateLoadRequest, requestingUserID string) (*domain.Load, error)

	// MarkReadyForSettlement flags a delivered load as ready to be picked up by
	// settlement generation.
	MarkReadyForSettlement(ctx context.Context, companyID, loadID string, requestingUserID string) (*domain.Load, error)
}

// LoadSvcFacade combines all load-related service interfaces
type LoadSvcFacade interface {
	LoadReaderSvc
	LoadWriterSvc
}
