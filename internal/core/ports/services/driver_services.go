package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// DriverReaderSvc defines read operations for driver data
type DriverReaderSvc interface {
	// GetDriverByID retrieves a driver within a company.
	GetDriverByID(ctx context.Context, companyID, driverID string, requestingUserID string) (*domain.Driver, error)

	// ListDrivers retrieves a paginated list of drivers in a company.
	ListDrivers(ctx context.Context, companyID string, requestingUserID string, params dto.ListDriversParams) ([]domain.Driver, error)
}

// DriverWriterSvc defines write operations for driver data
type DriverWriterSvc interface {
	// CreateDriver persists a new driver.
	CreateDriver(ctx context.Context, companyID string, req dto.CreateDriverRequest, creatorUserID string) (*domain.Driver, error)

	// UpdateDriver updates a driver's details, including pay policy changes.
	UpdateDriver(ctx context.Context, companyID, driverID string, req dto.UpdateDriverRequest, requestingUserID string) (*domain.Driver, error)

	// DeactivateDriver marks a driver as inactive. Inactive drivers keep their
	// history but are excluded from settlement generation.
	DeactivateDriver(ctx context.Context, companyID, driverID string, requestingUserID string) error
}

// DriverSvcFacade combines all driver-related service interfaces
type DriverSvcFacade interface {
	DriverReaderSvc
	DriverWriterSvc
}
