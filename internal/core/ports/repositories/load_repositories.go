package repositories

import (
	"context"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
)

// LoadReader defines read operations for load data
type LoadReader interface {
	// FindLoadByID retrieves a specific load by its ID.
	FindLoadByID(ctx context.Context, loadID string) (*domain.Load, error)

	// FindLoadsByIDs retrieves the loads for the given IDs.
	FindLoadsByIDs(ctx context.Context, loadIDs []string) ([]domain.Load, error)

	// ListLoadsByCompany retrieves a paginated list of loads for a company using
	// token-based pagination. It returns the loads, a token for the next page,
	// and an error.
	ListLoadsByCompany(ctx context.Context, companyID string, driverID *string, limit int, nextToken *string) ([]domain.Load, *string, error)

	// FindSettleableLoads retrieves the unsettled loads for a driver delivered
	// within the given period that are eligible for settlement.
	FindSettleableLoads(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time) ([]domain.Load, error)
}

// LoadWriter defines write operations for load data
type LoadWriter interface {
	// SaveLoad persists a new load.
	SaveLoad(ctx context.Context, load domain.Load) error

	// UpdateLoad updates an existing load's details using optimistic versioning.
	UpdateLoad(ctx context.Context, load domain.Load) error
}

// LoadRepositoryFacade combines all load-related repository interfaces
type LoadRepositoryFacade interface {
	LoadReader
	LoadWriter
}
