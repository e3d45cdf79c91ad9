package repositories

import (
	"context"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
)

// DriverReader defines read operations for driver data
type DriverReader interface {
	// FindDriverByID retrieves a specific driver by its ID.
	FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error)

	// ListDriversByCompany retrieves a paginated list of drivers for a company.
	// When includeInactive is false only active drivers are returned.
	ListDriversByCompany(ctx context.Context, companyID string, includeInactive bool, limit int, offset int) ([]domain.Driver, error)
}

// DriverWriter defines write operations for driver data
type DriverWriter interface {
	// SaveDriver persists a new driver.
	SaveDriver(ctx context.Context, driver domain.Driver) error

	// UpdateDriver updates an existing driver's details using optimistic versioning.
	UpdateDriver(ctx context.Context, driver domain.Driver) error

	// MarkDriverInactive deactivates a driver.
	MarkDriverInactive(ctx context.Context, driverID string, updatedBy string, updatedAt time.Time) error
}

// DriverRepositoryFacade combines all driver-related repository interfaces
type DriverRepositoryFacade interface {
	DriverReader
	DriverWriter
}
