package pgsql

import (
	"context"
	"errors"
	"fmt"

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

type PgxAdvanceRepository struct {
	BaseRepository
}

func newPgxAdvanceRepository(db *pgxpool.Pool) portsrepo.AdvanceRepositoryWithTx {
	return &PgxAdvanceRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure PgxAdvanceRepository implements portsrepo.AdvanceRepositoryWithTx
var _ portsrepo.AdvanceRepositoryWithTx = (*PgxAdvanceRepository)(nil)

const selectAdvanceFields = `
	advance_id, company_id, driver_id, amount, request_date, status, notes,
	settlement_id, decided_at, decided_by,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanAdvance(row pgx.Row) (*models.DriverAdvance, error) {
	var m models.DriverAdvance
	err := row.Scan(
		&m.AdvanceID,
		&m.CompanyID,
		&m.DriverID,
		&m.Amount,
		&m.RequestDate,
		&m.Status,
		&m.Notes,
		&m.SettlementID,
		&m.DecidedAt,
		&m.DecidedBy,
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

func collectAdvances(rows pgx.Rows) ([]models.DriverAdvance, error) {
	defer rows.Close()
	modelAdvances := []models.DriverAdvance{}
	for rows.Next() {
		modelAdvance, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance row: %w", err)
		}
		modelAdvances = append(modelAdvances, *modelAdvance)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating advance rows: %w", rows.Err())
	}
	return modelAdvances, nil
}

func (r *PgxAdvanceRepository) SaveAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	modelAdvance := mapping.ToModelAdvance(advance)
	query := `
        INSERT INTO driver_advances (advance_id, company_id, driver_id, amount, request_date, status, notes,
            settlement_id, decided_at, decided_by,
            created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
    `
	_, err := r.Pool.Exec(ctx, query,
		modelAdvance.AdvanceID,
		modelAdvance.CompanyID,
		modelAdvance.DriverID,
		modelAdvance.Amount,
		modelAdvance.RequestDate,
		modelAdvance.Status,
		modelAdvance.Notes,
		modelAdvance.SettlementID,
		modelAdvance.DecidedAt,
		modelAdvance.DecidedBy,
		modelAdvance.CreatedAt,
		modelAdvance.CreatedBy,
		modelAdvance.LastUpdatedAt,
		modelAdvance.LastUpdatedBy,
		modelAdvance.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperrors.NewConflictError(fmt.Sprintf("advance %s already exists", advance.AdvanceID))
			case "23503":
				return apperrors.NewValidationFailedError("company or driver does not exist", err)
			}
		}
		return fmt.Errorf("failed to save advance: %w", err)
	}
	return nil
}

func (r *PgxAdvanceRepository) FindAdvanceByID(ctx context.Context, advanceID string) (*domain.DriverAdvance, error) {
	query := `
		SELECT ` + selectAdvanceFields + `
		FROM driver_advances
		WHERE advance_id = $1;
	`
	modelAdvance, err := scanAdvance(r.Pool.QueryRow(ctx, query, advanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find advance by ID %s: %w", advanceID, err)
	}

	domainAdvance := mapping.ToDomainAdvance(*modelAdvance)
	return &domainAdvance, nil
}

// ListAdvancesByCompany pages newest request first using an opaque token over
// (request_date, advance_id).
func (r *PgxAdvanceRepository) ListAdvancesByCompany(ctx context.Context, companyID string, driverID *string, status *domain.AdvanceStatus, limit int, nextToken *string) ([]domain.DriverAdvance, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	args := []interface{}{companyID, driverID, statusFilter, fetchLimit}
	cursorClause := ""
	if nextToken != nil && *nextToken != "" {
		requestDate, advanceID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid pagination token", err)
		}
		cursorClause = "AND (request_date, advance_id) < ($5, $6)"
		args = append(args, requestDate, advanceID)
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM driver_advances
        WHERE company_id = $1
          AND ($2::text IS NULL OR driver_id = $2)
          AND ($3::text IS NULL OR status = $3)
        %s
        ORDER BY request_date DESC, advance_id DESC
        LIMIT $4;
    `, selectAdvanceFields, cursorClause)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query advances: %w", err)
	}
	modelAdvances, err := collectAdvances(rows)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(modelAdvances) == fetchLimit {
		modelAdvances = modelAdvances[:limit]
		last := modelAdvances[len(modelAdvances)-1]
		t := pagination.EncodeToken(last.RequestDate, last.AdvanceID)
		token = &t
	}

	return mapping.ToDomainAdvanceSlice(modelAdvances), token, nil
}

func (r *PgxAdvanceRepository) FindAdvancesBySettlementID(ctx context.Context, settlementID string) ([]domain.DriverAdvance, error) {
	query := `
		SELECT ` + selectAdvanceFields + `
		FROM driver_advances
		WHERE settlement_id = $1
		ORDER BY request_date, advance_id;
	`
	rows, err := r.Pool.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query advances for settlement %s: %w", settlementID, err)
	}
	modelAdvances, err := collectAdvances(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainAdvanceSlice(modelAdvances), nil
}

func (r *PgxAdvanceRepository) FindAttachableAdvances(ctx context.Context, companyID, driverID string) ([]domain.DriverAdvance, error) {
	query := `
		SELECT ` + selectAdvanceFields + `
		FROM driver_advances
		WHERE company_id = $1
		  AND driver_id = $2
		  AND settlement_id IS NULL
		  AND status IN ('PENDING', 'APPROVED')
		ORDER BY request_date, advance_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachable advances: %w", err)
	}
	modelAdvances, err := collectAdvances(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainAdvanceSlice(modelAdvances), nil
}

func (r *PgxAdvanceRepository) UpdateAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	return updateAdvanceRow(ctx, r.Pool, advance)
}

// RejectAdvance marks the advance rejected and, when it was attached to a
// settlement, removes the linked deduction line item and recomputes the
// settlement totals within the same transaction. Detaching from a settlement
// that is no longer editable fails with ErrSettlementLocked.
func (r *PgxAdvanceRepository) RejectAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	if advance.SettlementID == nil {
		return updateAdvanceRow(ctx, r.Pool, advance)
	}
	settlementID := *advance.SettlementID

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlementID); err != nil {
		return err
	}

	detached := advance
	detached.SettlementID = nil
	if err := updateAdvanceRow(ctx, tx, detached); err != nil {
		return err
	}

	delQuery := `DELETE FROM settlement_line_items WHERE settlement_id = $1 AND advance_id = $2;`
	if _, err := tx.Exec(ctx, delQuery, settlementID, advance.AdvanceID); err != nil {
		return apperrors.NewAppError(500, "failed to remove advance line item", err)
	}

	if _, err := recomputeSettlementTotals(ctx, tx, settlementID, advance.LastUpdatedBy, advance.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// updateAdvanceRow works against either the pool or an open transaction.
func updateAdvanceRow(ctx context.Context, q queryExecutor, advance domain.DriverAdvance) error {
	modelAdvance := mapping.ToModelAdvance(advance)
	query := `
        UPDATE driver_advances
        SET amount = $1, request_date = $2, status = $3, notes = $4,
            settlement_id = $5, decided_at = $6, decided_by = $7,
            last_updated_at = $8, last_updated_by = $9, version = version + 1
        WHERE advance_id = $10 AND version = $11;
    `
	cmdTag, err := q.Exec(ctx, query,
		modelAdvance.Amount,
		modelAdvance.RequestDate,
		modelAdvance.Status,
		modelAdvance.Notes,
		modelAdvance.SettlementID,
		modelAdvance.DecidedAt,
		modelAdvance.DecidedBy,
		modelAdvance.LastUpdatedAt,
		modelAdvance.LastUpdatedBy,
		modelAdvance.AdvanceID,
		modelAdvance.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update advance query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("advance not found or modified concurrently: %w", apperrors.ErrConflict)
	}
	return nil
}
