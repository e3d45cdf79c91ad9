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
	"github.com/shopspring/decimal"
)

// queryExecutor is the subset of pgx shared by *pgxpool.Pool and pgx.Tx,
// letting row-level helpers run inside or outside a transaction.
type queryExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxSettlementRepository struct {
	BaseRepository
}

func newPgxSettlementRepository(db *pgxpool.Pool) portsrepo.SettlementRepositoryWithTx {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure PgxSettlementRepository implements portsrepo.SettlementRepositoryWithTx
var _ portsrepo.SettlementRepositoryWithTx = (*PgxSettlementRepository)(nil)

const selectSettlementFields = `
	settlement_id, company_id, driver_id, settlement_number, period_start, period_end, load_ids,
	gross_pay, total_additions, total_deductions, total_advances, net_pay, carried_forward,
	status, payment_method, notes, calculated_at, calc_log,
	created_at, created_by, last_updated_at, last_updated_by, version
`

const selectLineItemFields = `
	line_item_id, settlement_id, kind, category, description, amount, source_rule_id, advance_id,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanSettlement(row pgx.Row) (*models.Settlement, error) {
	var m models.Settlement
	err := row.Scan(
		&m.SettlementID,
		&m.CompanyID,
		&m.DriverID,
		&m.SettlementNumber,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.LoadIDs,
		&m.GrossPay,
		&m.TotalAdditions,
		&m.TotalDeductions,
		&m.TotalAdvances,
		&m.NetPay,
		&m.CarriedForward,
		&m.Status,
		&m.PaymentMethod,
		&m.Notes,
		&m.CalculatedAt,
		&m.CalcLog,
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

func scanLineItem(row pgx.Row) (*models.SettlementLineItem, error) {
	var m models.SettlementLineItem
	err := row.Scan(
		&m.LineItemID,
		&m.SettlementID,
		&m.Kind,
		&m.Category,
		&m.Description,
		&m.Amount,
		&m.SourceRuleID,
		&m.AdvanceID,
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

// lockSettlementRow acquires a row lock on the settlement for the duration of
// the transaction, serializing concurrent mutations of the same settlement.
func lockSettlementRow(ctx context.Context, tx pgx.Tx, settlementID string) (*models.Settlement, error) {
	query := `
		SELECT ` + selectSettlementFields + `
		FROM settlements
		WHERE settlement_id = $1
		FOR UPDATE;
	`
	modelSettlement, err := scanSettlement(tx.QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock settlement %s: %w", settlementID, err)
	}
	return modelSettlement, nil
}

// lockEditableSettlementRow locks the settlement row and re-checks its status
// under the lock. The service layer checks editability before opening the
// transaction, but an approval can commit in between; the locked row is the
// only status that counts.
func lockEditableSettlementRow(ctx context.Context, tx pgx.Tx, settlementID string) (*models.Settlement, error) {
	modelSettlement, err := lockSettlementRow(ctx, tx, settlementID)
	if err != nil {
		return nil, err
	}
	if !domain.SettlementStatus(modelSettlement.Status).Editable() {
		return nil, fmt.Errorf("settlement %s is %s: %w", settlementID, modelSettlement.Status, apperrors.ErrSettlementLocked)
	}
	return modelSettlement, nil
}

func findLineItems(ctx context.Context, q queryExecutor, settlementID string) ([]models.SettlementLineItem, error) {
	query := `
		SELECT ` + selectLineItemFields + `
		FROM settlement_line_items
		WHERE settlement_id = $1
		ORDER BY created_at, line_item_id;
	`
	rows, err := q.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	items := []models.SettlementLineItem{}
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		items = append(items, *item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating line item rows: %w", rows.Err())
	}
	return items, nil
}

func findAttachedAdvances(ctx context.Context, q queryExecutor, settlementID string) ([]models.DriverAdvance, error) {
	query := `
		SELECT ` + selectAdvanceFields + `
		FROM driver_advances
		WHERE settlement_id = $1
		ORDER BY request_date, advance_id;
	`
	rows, err := q.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attached advances: %w", err)
	}
	return collectAdvances(rows)
}

// recomputeSettlementTotals re-derives the persisted totals from the current
// child rows and writes them back. The caller must hold the settlement row
// lock. Returns the settlement as stored after the update, line items included.
func recomputeSettlementTotals(ctx context.Context, tx pgx.Tx, settlementID string, updatedBy string, updatedAt time.Time) (*domain.Settlement, error) {
	query := `
		SELECT ` + selectSettlementFields + `
		FROM settlements
		WHERE settlement_id = $1;
	`
	modelSettlement, err := scanSettlement(tx.QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to re-read settlement %s: %w", settlementID, err)
	}

	modelItems, err := findLineItems(ctx, tx, settlementID)
	if err != nil {
		return nil, err
	}
	modelAdvances, err := findAttachedAdvances(ctx, tx, settlementID)
	if err != nil {
		return nil, err
	}

	settlement, err := mapping.ToDomainSettlement(*modelSettlement)
	if err != nil {
		return nil, err
	}
	settlement.LineItems = mapping.ToDomainLineItemSlice(modelItems)
	settlement.Recompute(settlement.LineItems, mapping.ToDomainAdvanceSlice(modelAdvances))
	settlement.LastUpdatedAt = updatedAt
	settlement.LastUpdatedBy = updatedBy
	settlement.Version++

	updateQuery := `
		UPDATE settlements
		SET total_additions = $1, total_deductions = $2, total_advances = $3,
		    net_pay = $4, carried_forward = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE settlement_id = $8;
	`
	_, err = tx.Exec(ctx, updateQuery,
		settlement.TotalAdditions,
		settlement.TotalDeductions,
		settlement.TotalAdvances,
		settlement.NetPay,
		settlement.CarriedForward,
		settlement.LastUpdatedAt,
		settlement.LastUpdatedBy,
		settlementID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update settlement totals", err)
	}

	return &settlement, nil
}

func queueLineItemInsert(batch *pgx.Batch, item models.SettlementLineItem) {
	query := `
		INSERT INTO settlement_line_items (line_item_id, settlement_id, kind, category, description, amount,
			source_rule_id, advance_id,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch.Queue(query,
		item.LineItemID,
		item.SettlementID,
		item.Kind,
		item.Category,
		item.Description,
		item.Amount,
		item.SourceRuleID,
		item.AdvanceID,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
		item.Version,
	)
}

func queueRuleApplicationInsert(batch *pgx.Batch, app domain.RuleApplication) {
	query := `
		INSERT INTO rule_applications (application_id, rule_id, driver_id, settlement_id, applied_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	batch.Queue(query, app.ApplicationID, app.RuleID, app.DriverID, app.SettlementID, app.AppliedAt)
}

func queueRuleProgressUpdate(batch *pgx.Batch, ruleID string, progress decimal.Decimal, updatedBy string, updatedAt time.Time) {
	query := `
		UPDATE deduction_rules
		SET current_amount = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE rule_id = $4;
	`
	batch.Queue(query, progress, updatedAt, updatedBy, ruleID)
}

func queueStatusEventInsert(batch *pgx.Batch, event domain.SettlementStatusEvent) {
	query := `
		INSERT INTO settlement_status_events (event_id, settlement_id, from_status, to_status, actor_user_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch.Queue(query, event.EventID, event.SettlementID, string(event.FromStatus), string(event.ToStatus), event.ActorUserID, event.Reason, event.CreatedAt)
}

func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `
		SELECT ` + selectSettlementFields + `
		FROM settlements
		WHERE settlement_id = $1;
	`
	modelSettlement, err := scanSettlement(r.Pool.QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement by ID %s: %w", settlementID, err)
	}

	settlement, err := mapping.ToDomainSettlement(*modelSettlement)
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// ListSettlementsByCompany pages newest first using an opaque token over
// (created_at, settlement_id).
func (r *PgxSettlementRepository) ListSettlementsByCompany(ctx context.Context, companyID string, driverID *string, status *domain.SettlementStatus, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
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
		createdAt, settlementID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid pagination token", err)
		}
		cursorClause = "AND (created_at, settlement_id) < ($5, $6)"
		args = append(args, createdAt, settlementID)
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM settlements
        WHERE company_id = $1
          AND ($2::text IS NULL OR driver_id = $2)
          AND ($3::text IS NULL OR status = $3)
        %s
        ORDER BY created_at DESC, settlement_id DESC
        LIMIT $4;
    `, selectSettlementFields, cursorClause)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	modelSettlements := []models.Settlement{}
	for rows.Next() {
		modelSettlement, err := scanSettlement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		modelSettlements = append(modelSettlements, *modelSettlement)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating settlement rows: %w", rows.Err())
	}

	var token *string
	if len(modelSettlements) == fetchLimit {
		modelSettlements = modelSettlements[:limit]
		last := modelSettlements[len(modelSettlements)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.SettlementID)
		token = &t
	}

	settlements := make([]domain.Settlement, len(modelSettlements))
	for i, m := range modelSettlements {
		settlements[i], err = mapping.ToDomainSettlement(m)
		if err != nil {
			return nil, nil, err
		}
	}
	return settlements, token, nil
}

func (r *PgxSettlementRepository) FindLineItemsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementLineItem, error) {
	modelItems, err := findLineItems(ctx, r.Pool, settlementID)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainLineItemSlice(modelItems), nil
}

func (r *PgxSettlementRepository) FindStatusEventsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementStatusEvent, error) {
	query := `
		SELECT event_id, settlement_id, from_status, to_status, actor_user_id, reason, created_at
		FROM settlement_status_events
		WHERE settlement_id = $1
		ORDER BY created_at, event_id;
	`
	rows, err := r.Pool.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status events: %w", err)
	}
	defer rows.Close()

	modelEvents := []models.SettlementStatusEvent{}
	for rows.Next() {
		var m models.SettlementStatusEvent
		err := rows.Scan(&m.EventID, &m.SettlementID, &m.FromStatus, &m.ToStatus, &m.ActorUserID, &m.Reason, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status event row: %w", err)
		}
		modelEvents = append(modelEvents, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating status event rows: %w", rows.Err())
	}

	return mapping.ToDomainStatusEventSlice(modelEvents), nil
}

func (r *PgxSettlementRepository) FindSettlementForPeriod(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time, statuses []domain.SettlementStatus) (*domain.Settlement, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	// Overlap check: any settlement whose period intersects [start, end].
	query := `
		SELECT ` + selectSettlementFields + `
		FROM settlements
		WHERE company_id = $1
		  AND driver_id = $2
		  AND period_start <= $4
		  AND period_end >= $3
		  AND status = ANY($5)
		ORDER BY created_at DESC
		LIMIT 1;
	`
	modelSettlement, err := scanSettlement(r.Pool.QueryRow(ctx, query, companyID, driverID, periodStart, periodEnd, statusStrings))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find settlement for period: %w", err)
	}

	settlement, err := mapping.ToDomainSettlement(*modelSettlement)
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// SaveSettlement persists a freshly generated settlement with its line items,
// template usage markers, and template goal progress in one transaction.
func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement, lineItems []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) error {
	modelSettlement, err := mapping.ToModelSettlement(settlement)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO settlements (settlement_id, company_id, driver_id, settlement_number, period_start, period_end, load_ids,
			gross_pay, total_additions, total_deductions, total_advances, net_pay, carried_forward,
			status, payment_method, notes, calculated_at, calc_log,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err = tx.Exec(ctx, insertQuery,
		modelSettlement.SettlementID,
		modelSettlement.CompanyID,
		modelSettlement.DriverID,
		modelSettlement.SettlementNumber,
		modelSettlement.PeriodStart,
		modelSettlement.PeriodEnd,
		modelSettlement.LoadIDs,
		modelSettlement.GrossPay,
		modelSettlement.TotalAdditions,
		modelSettlement.TotalDeductions,
		modelSettlement.TotalAdvances,
		modelSettlement.NetPay,
		modelSettlement.CarriedForward,
		modelSettlement.Status,
		modelSettlement.PaymentMethod,
		modelSettlement.Notes,
		modelSettlement.CalculatedAt,
		modelSettlement.CalcLog,
		modelSettlement.CreatedAt,
		modelSettlement.CreatedBy,
		modelSettlement.LastUpdatedAt,
		modelSettlement.LastUpdatedBy,
		modelSettlement.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflictError(fmt.Sprintf("settlement %s already exists", settlement.SettlementNumber))
		}
		return apperrors.NewAppError(500, "failed to insert settlement", err)
	}

	batch := &pgx.Batch{}
	for _, item := range lineItems {
		queueLineItemInsert(batch, mapping.ToModelLineItem(item))
	}
	for _, app := range applications {
		queueRuleApplicationInsert(batch, app)
	}
	for ruleID, progress := range ruleProgress {
		queueRuleProgressUpdate(batch, ruleID, progress, settlement.CreatedBy, settlement.CreatedAt)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to persist settlement children", err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSettlementRepository) AddLineItem(ctx context.Context, settlementID string, item domain.SettlementLineItem) (*domain.Settlement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlementID); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	queueLineItemInsert(batch, mapping.ToModelLineItem(item))
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert line item", err)
	}

	settlement, err := recomputeSettlementTotals(ctx, tx, settlementID, item.CreatedBy, item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *PgxSettlementRepository) RemoveLineItem(ctx context.Context, settlementID, lineItemID, updatedBy string) (*domain.Settlement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlementID); err != nil {
		return nil, err
	}

	delQuery := `DELETE FROM settlement_line_items WHERE settlement_id = $1 AND line_item_id = $2;`
	cmdTag, err := tx.Exec(ctx, delQuery, settlementID, lineItemID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete line item", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("line item not found: %w", apperrors.ErrNotFound)
	}

	settlement, err := recomputeSettlementTotals(ctx, tx, settlementID, updatedBy, time.Now())
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *PgxSettlementRepository) AttachAdvance(ctx context.Context, settlementID string, advance domain.DriverAdvance, item domain.SettlementLineItem) (*domain.Settlement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlementID); err != nil {
		return nil, err
	}

	if err := updateAdvanceRow(ctx, tx, advance); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	queueLineItemInsert(batch, mapping.ToModelLineItem(item))
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert advance line item", err)
	}

	settlement, err := recomputeSettlementTotals(ctx, tx, settlementID, item.CreatedBy, item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *PgxSettlementRepository) DetachAdvance(ctx context.Context, settlementID, advanceID, updatedBy string) (*domain.Settlement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlementID); err != nil {
		return nil, err
	}

	now := time.Now()
	detachQuery := `
		UPDATE driver_advances
		SET settlement_id = NULL, last_updated_at = $1, last_updated_by = $2, version = version + 1
		WHERE advance_id = $3 AND settlement_id = $4;
	`
	cmdTag, err := tx.Exec(ctx, detachQuery, now, updatedBy, advanceID, settlementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to detach advance", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("advance not attached to settlement: %w", apperrors.ErrNotFound)
	}

	delQuery := `DELETE FROM settlement_line_items WHERE settlement_id = $1 AND advance_id = $2;`
	if _, err := tx.Exec(ctx, delQuery, settlementID, advanceID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete advance line item", err)
	}

	settlement, err := recomputeSettlementTotals(ctx, tx, settlementID, updatedBy, now)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return settlement, nil
}

// ReplaceGeneratedLineItems swaps template-generated line items for the
// recalculated set. Manual items and advance-linked items are untouched. The
// settlement's own usage markers are replaced and template goal progress is
// set to the recalculated values.
func (r *PgxSettlementRepository) ReplaceGeneratedLineItems(ctx context.Context, settlement domain.Settlement, generated []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) (*domain.Settlement, error) {
	modelSettlement, err := mapping.ToModelSettlement(settlement)
	if err != nil {
		return nil, err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockEditableSettlementRow(ctx, tx, settlement.SettlementID); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE settlements
		SET load_ids = $1, gross_pay = $2, calculated_at = $3, calc_log = $4,
		    last_updated_at = $5, last_updated_by = $6, version = version + 1
		WHERE settlement_id = $7;
	`
	_, err = tx.Exec(ctx, updateQuery,
		modelSettlement.LoadIDs,
		modelSettlement.GrossPay,
		modelSettlement.CalculatedAt,
		modelSettlement.CalcLog,
		modelSettlement.LastUpdatedAt,
		modelSettlement.LastUpdatedBy,
		modelSettlement.SettlementID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update settlement calculation", err)
	}

	delItemsQuery := `
		DELETE FROM settlement_line_items
		WHERE settlement_id = $1 AND source_rule_id IS NOT NULL;
	`
	if _, err := tx.Exec(ctx, delItemsQuery, settlement.SettlementID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete generated line items", err)
	}

	delAppsQuery := `DELETE FROM rule_applications WHERE settlement_id = $1;`
	if _, err := tx.Exec(ctx, delAppsQuery, settlement.SettlementID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete usage markers", err)
	}

	batch := &pgx.Batch{}
	for _, item := range generated {
		queueLineItemInsert(batch, mapping.ToModelLineItem(item))
	}
	for _, app := range applications {
		queueRuleApplicationInsert(batch, app)
	}
	for ruleID, progress := range ruleProgress {
		queueRuleProgressUpdate(batch, ruleID, progress, settlement.LastUpdatedBy, settlement.LastUpdatedAt)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return nil, apperrors.NewAppError(500, "failed to persist recalculated children", err)
		}
	}

	recomputed, err := recomputeSettlementTotals(ctx, tx, settlement.SettlementID, settlement.LastUpdatedBy, settlement.LastUpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return recomputed, nil
}

// UpdateSettlementStatus transitions the settlement and appends the status
// event in the same transaction.
func (r *PgxSettlementRepository) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, event domain.SettlementStatusEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE settlements
		SET status = $1, payment_method = $2, notes = $3,
		    last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE settlement_id = $6 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		string(settlement.Status),
		settlement.PaymentMethod,
		settlement.Notes,
		settlement.LastUpdatedAt,
		settlement.LastUpdatedBy,
		settlement.SettlementID,
		string(event.FromStatus),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update settlement status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		// The status moved under us; the transition was validated against stale state.
		return fmt.Errorf("settlement status changed concurrently: %w", apperrors.ErrConflict)
	}

	batch := &pgx.Batch{}
	queueStatusEventInsert(batch, event)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert status event", err)
	}

	return r.Commit(ctx, tx)
}
