package repositories

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
)

// AdvanceReader defines read operations for driver advance data
type AdvanceReader interface {
	// FindAdvanceByID retrieves a specific advance by its ID.
	FindAdvanceByID(ctx context.Context, advanceID string) (*domain.DriverAdvance, error)

	// ListAdvancesByCompany retrieves a page of advances for a company, newest
	// request first, optionally filtered by driver and status. The returned
	// token fetches the next page when more rows remain.
	ListAdvancesByCompany(ctx context.Context, companyID string, driverID *string, status *domain.AdvanceStatus, limit int, nextToken *string) ([]domain.DriverAdvance, *string, error)

	// FindAdvancesBySettlementID retrieves the advances attached to a settlement.
	FindAdvancesBySettlementID(ctx context.Context, settlementID string) ([]domain.DriverAdvance, error)

	// FindAttachableAdvances retrieves a driver's unattached advances that are
	// eligible for attachment to a settlement.
	FindAttachableAdvances(ctx context.Context, companyID, driverID string) ([]domain.DriverAdvance, error)
}

// AdvanceWriter defines write operations for driver advance data
type AdvanceWriter interface {
	// SaveAdvance persists a new advance.
	SaveAdvance(ctx context.Context, advance domain.DriverAdvance) error

	// UpdateAdvance updates an existing advance using optimistic versioning.
	UpdateAdvance(ctx context.Context, advance domain.DriverAdvance) error

	// RejectAdvance marks an advance rejected. When the advance is attached to
	// a settlement, the linked deduction line item is removed and the
	// settlement totals are recomputed within the same transaction.
	RejectAdvance(ctx context.Context, advance domain.DriverAdvance) error
}

// AdvanceRepositoryFacade combines all advance-related repository interfaces
// This is a facade for clients that need access to all operations
type AdvanceRepositoryFacade interface {
	AdvanceReader
	AdvanceWriter
}

// AdvanceRepositoryWithTx extends AdvanceRepositoryFacade with transaction capabilities
type AdvanceRepositoryWithTx interface {
	AdvanceRepositoryFacade
	TransactionManager
}
