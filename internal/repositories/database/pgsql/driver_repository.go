package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	"github.com/haulbooks/settlements_backend/internal/models"
	"github.com/haulbooks/settlements_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDriverRepository struct {
	db *pgxpool.Pool
}

func newPgxDriverRepository(db *pgxpool.Pool) portsrepo.DriverRepositoryFacade {
	return &PgxDriverRepository{db: db}
}

// Ensure PgxDriverRepository implements portsrepo.DriverRepositoryFacade
var _ portsrepo.DriverRepositoryFacade = (*PgxDriverRepository)(nil)

const selectDriverFields = `
	driver_id, company_id, name, pay_type, pay_rate, driver_type, is_active,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var m models.Driver
	err := row.Scan(
		&m.DriverID,
		&m.CompanyID,
		&m.Name,
		&m.PayType,
		&m.PayRate,
		&m.DriverType,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxDriverRepository) SaveDriver(ctx context.Context, driver domain.Driver) error {
	modelDriver := mapping.ToModelDriver(driver)
	query := `
        INSERT INTO drivers (driver_id, company_id, name, pay_type, pay_rate, driver_type, is_active, created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
    `
	_, err := r.db.Exec(ctx, query,
		modelDriver.DriverID,
		modelDriver.CompanyID,
		modelDriver.Name,
		modelDriver.PayType,
		modelDriver.PayRate,
		modelDriver.DriverType,
		modelDriver.IsActive,
		modelDriver.CreatedAt,
		modelDriver.CreatedBy,
		modelDriver.LastUpdatedAt,
		modelDriver.LastUpdatedBy,
		modelDriver.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperrors.NewConflictError(fmt.Sprintf("driver %s already exists", driver.DriverID))
			case "23503":
				return apperrors.NewValidationFailedError("company does not exist", err)
			}
		}
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

func (r *PgxDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	query := `
		SELECT ` + selectDriverFields + `
		FROM drivers
		WHERE driver_id = $1;
	`
	modelDriver, err := scanDriver(r.db.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver by ID %s: %w", driverID, err)
	}

	domainDriver := mapping.ToDomainDriver(*modelDriver)
	return &domainDriver, nil
}

func (r *PgxDriverRepository) ListDriversByCompany(ctx context.Context, companyID string, includeInactive bool, limit int, offset int) ([]domain.Driver, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + selectDriverFields + `
        FROM drivers
        WHERE company_id = $1 AND ($2 OR is_active)
        ORDER BY name, driver_id
        LIMIT $3 OFFSET $4;
    `
	rows, err := r.db.Query(ctx, query, companyID, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	modelDrivers := []models.Driver{}
	for rows.Next() {
		modelDriver, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", err)
		}
		modelDrivers = append(modelDrivers, *modelDriver)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", rows.Err())
	}

	return mapping.ToDomainDriverSlice(modelDrivers), nil
}

func (r *PgxDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	modelDriver := mapping.ToModelDriver(driver)
	query := `
        UPDATE drivers
        SET name = $1, pay_type = $2, pay_rate = $3, driver_type = $4, is_active = $5,
            last_updated_at = $6, last_updated_by = $7, version = version + 1
        WHERE driver_id = $8 AND version = $9;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelDriver.Name,
		modelDriver.PayType,
		modelDriver.PayRate,
		modelDriver.DriverType,
		modelDriver.IsActive,
		modelDriver.LastUpdatedAt,
		modelDriver.LastUpdatedBy,
		modelDriver.DriverID,
		modelDriver.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update driver query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the driver is gone or the version moved under us.
		return fmt.Errorf("driver not found or modified concurrently: %w", apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxDriverRepository) MarkDriverInactive(ctx context.Context, driverID string, updatedBy string, updatedAt time.Time) error {
	query := `
        UPDATE drivers
        SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2, version = version + 1
        WHERE driver_id = $3 AND is_active;
    `
	cmdTag, err := r.db.Exec(ctx, query, updatedAt, updatedBy, driverID)
	if err != nil {
		return fmt.Errorf("failed to mark driver inactive: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("driver not found or already inactive: %w", apperrors.ErrNotFound)
	}
	return nil
}
