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
	"github.com/haulbooks/settlements_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLoadRepository struct {
	db *pgxpool.Pool
}

func newPgxLoadRepository(db *pgxpool.Pool) portsrepo.LoadRepositoryFacade {
	return &PgxLoadRepository{db: db}
}

// Ensure PgxLoadRepository implements portsrepo.LoadRepositoryFacade
var _ portsrepo.LoadRepositoryFacade = (*PgxLoadRepository)(nil)

const selectLoadFields = `
	load_id, company_id, driver_id, load_number, total_miles, loaded_miles, empty_miles,
	revenue, driver_pay, status, ready_for_settlement, delivered_at,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanLoad(row pgx.Row) (*models.Load, error) {
	var m models.Load
	err := row.Scan(
		&m.LoadID,
		&m.CompanyID,
		&m.DriverID,
		&m.LoadNumber,
		&m.TotalMiles,
		&m.LoadedMiles,
		&m.EmptyMiles,
		&m.Revenue,
		&m.DriverPay,
		&m.Status,
		&m.ReadyForSettlement,
		&m.DeliveredAt,
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

func collectLoads(rows pgx.Rows) ([]models.Load, error) {
	defer rows.Close()
	modelLoads := []models.Load{}
	for rows.Next() {
		modelLoad, err := scanLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load row: %w", err)
		}
		modelLoads = append(modelLoads, *modelLoad)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating load rows: %w", rows.Err())
	}
	return modelLoads, nil
}

func (r *PgxLoadRepository) SaveLoad(ctx context.Context, load domain.Load) error {
	modelLoad := mapping.ToModelLoad(load)
	query := `
        INSERT INTO loads (load_id, company_id, driver_id, load_number, total_miles, loaded_miles, empty_miles,
            revenue, driver_pay, status, ready_for_settlement, delivered_at,
            created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
    `
	_, err := r.db.Exec(ctx, query,
		modelLoad.LoadID,
		modelLoad.CompanyID,
		modelLoad.DriverID,
		modelLoad.LoadNumber,
		modelLoad.TotalMiles,
		modelLoad.LoadedMiles,
		modelLoad.EmptyMiles,
		modelLoad.Revenue,
		modelLoad.DriverPay,
		modelLoad.Status,
		modelLoad.ReadyForSettlement,
		modelLoad.DeliveredAt,
		modelLoad.CreatedAt,
		modelLoad.CreatedBy,
		modelLoad.LastUpdatedAt,
		modelLoad.LastUpdatedBy,
		modelLoad.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperrors.NewConflictError(fmt.Sprintf("load number %s already exists for this company", load.LoadNumber))
			case "23503":
				return apperrors.NewValidationFailedError("company or driver does not exist", err)
			}
		}
		return fmt.Errorf("failed to save load: %w", err)
	}
	return nil
}

func (r *PgxLoadRepository) FindLoadByID(ctx context.Context, loadID string) (*domain.Load, error) {
	query := `
		SELECT ` + selectLoadFields + `
		FROM loads
		WHERE load_id = $1;
	`
	modelLoad, err := scanLoad(r.db.QueryRow(ctx, query, loadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find load by ID %s: %w", loadID, err)
	}

	domainLoad := mapping.ToDomainLoad(*modelLoad)
	return &domainLoad, nil
}

func (r *PgxLoadRepository) FindLoadsByIDs(ctx context.Context, loadIDs []string) ([]domain.Load, error) {
	if len(loadIDs) == 0 {
		return []domain.Load{}, nil
	}

	query := `
		SELECT ` + selectLoadFields + `
		FROM loads
		WHERE load_id = ANY($1)
		ORDER BY delivered_at NULLS LAST, load_id;
	`
	rows, err := r.db.Query(ctx, query, loadIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query loads by IDs: %w", err)
	}
	modelLoads, err := collectLoads(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainLoadSlice(modelLoads), nil
}

// ListLoadsByCompany pages newest first using an opaque token over
// (created_at, load_id).
func (r *PgxLoadRepository) ListLoadsByCompany(ctx context.Context, companyID string, driverID *string, limit int, nextToken *string) ([]domain.Load, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	args := []interface{}{companyID, driverID, fetchLimit}
	cursorClause := ""
	if nextToken != nil && *nextToken != "" {
		createdAt, loadID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid pagination token", err)
		}
		cursorClause = "AND (created_at, load_id) < ($4, $5)"
		args = append(args, createdAt, loadID)
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM loads
        WHERE company_id = $1 AND ($2::text IS NULL OR driver_id = $2)
        %s
        ORDER BY created_at DESC, load_id DESC
        LIMIT $3;
    `, selectLoadFields, cursorClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query loads: %w", err)
	}
	modelLoads, err := collectLoads(rows)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(modelLoads) == fetchLimit {
		modelLoads = modelLoads[:limit]
		last := modelLoads[len(modelLoads)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.LoadID)
		token = &t
	}

	return mapping.ToDomainLoadSlice(modelLoads), token, nil
}

func (r *PgxLoadRepository) FindSettleableLoads(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time) ([]domain.Load, error) {
	query := `
		SELECT ` + selectLoadFields + `
		FROM loads
		WHERE company_id = $1
		  AND driver_id = $2
		  AND ready_for_settlement
		  AND delivered_at IS NOT NULL
		  AND delivered_at >= $3
		  AND delivered_at <= $4
		  AND NOT EXISTS (
			SELECT 1
			FROM settlements s
			WHERE s.load_ids @> to_jsonb(loads.load_id::text)
			  AND s.status NOT IN ('REJECTED')
		  )
		ORDER BY delivered_at, load_id;
	`
	rows, err := r.db.Query(ctx, query, companyID, driverID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query settleable loads: %w", err)
	}
	modelLoads, err := collectLoads(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainLoadSlice(modelLoads), nil
}

func (r *PgxLoadRepository) UpdateLoad(ctx context.Context, load domain.Load) error {
	modelLoad := mapping.ToModelLoad(load)
	query := `
        UPDATE loads
        SET driver_id = $1, load_number = $2, total_miles = $3, loaded_miles = $4, empty_miles = $5,
            revenue = $6, driver_pay = $7, status = $8, ready_for_settlement = $9, delivered_at = $10,
            last_updated_at = $11, last_updated_by = $12, version = version + 1
        WHERE load_id = $13 AND version = $14;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelLoad.DriverID,
		modelLoad.LoadNumber,
		modelLoad.TotalMiles,
		modelLoad.LoadedMiles,
		modelLoad.EmptyMiles,
		modelLoad.Revenue,
		modelLoad.DriverPay,
		modelLoad.Status,
		modelLoad.ReadyForSettlement,
		modelLoad.DeliveredAt,
		modelLoad.LastUpdatedAt,
		modelLoad.LastUpdatedBy,
		modelLoad.LoadID,
		modelLoad.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update load query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("load not found or modified concurrently: %w", apperrors.ErrConflict)
	}
	return nil
}
