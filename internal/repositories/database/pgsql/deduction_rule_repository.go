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

type PgxDeductionRuleRepository struct {
	db *pgxpool.Pool
}

func newPgxDeductionRuleRepository(db *pgxpool.Pool) portsrepo.DeductionRuleRepositoryFacade {
	return &PgxDeductionRuleRepository{db: db}
}

// Ensure PgxDeductionRuleRepository implements portsrepo.DeductionRuleRepositoryFacade
var _ portsrepo.DeductionRuleRepositoryFacade = (*PgxDeductionRuleRepository)(nil)

const selectRuleFields = `
	rule_id, company_id, name, kind, calculation_type, amount, percentage, per_mile_rate,
	frequency, driver_type_scope, driver_id, min_gross_pay, max_amount,
	goal_amount, current_amount, is_active,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanRule(row pgx.Row) (*models.DeductionRuleTemplate, error) {
	var m models.DeductionRuleTemplate
	err := row.Scan(
		&m.RuleID,
		&m.CompanyID,
		&m.Name,
		&m.Kind,
		&m.CalculationType,
		&m.Amount,
		&m.Percentage,
		&m.PerMileRate,
		&m.Frequency,
		&m.DriverTypeScope,
		&m.DriverID,
		&m.MinGrossPay,
		&m.MaxAmount,
		&m.GoalAmount,
		&m.CurrentAmount,
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

func collectRules(rows pgx.Rows) ([]models.DeductionRuleTemplate, error) {
	defer rows.Close()
	modelRules := []models.DeductionRuleTemplate{}
	for rows.Next() {
		modelRule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		modelRules = append(modelRules, *modelRule)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", rows.Err())
	}
	return modelRules, nil
}

func (r *PgxDeductionRuleRepository) SaveRule(ctx context.Context, rule domain.DeductionRuleTemplate) error {
	modelRule := mapping.ToModelDeductionRule(rule)
	query := `
        INSERT INTO deduction_rules (rule_id, company_id, name, kind, calculation_type, amount, percentage, per_mile_rate,
            frequency, driver_type_scope, driver_id, min_gross_pay, max_amount,
            goal_amount, current_amount, is_active,
            created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
    `
	_, err := r.db.Exec(ctx, query,
		modelRule.RuleID,
		modelRule.CompanyID,
		modelRule.Name,
		modelRule.Kind,
		modelRule.CalculationType,
		modelRule.Amount,
		modelRule.Percentage,
		modelRule.PerMileRate,
		modelRule.Frequency,
		modelRule.DriverTypeScope,
		modelRule.DriverID,
		modelRule.MinGrossPay,
		modelRule.MaxAmount,
		modelRule.GoalAmount,
		modelRule.CurrentAmount,
		modelRule.IsActive,
		modelRule.CreatedAt,
		modelRule.CreatedBy,
		modelRule.LastUpdatedAt,
		modelRule.LastUpdatedBy,
		modelRule.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperrors.NewConflictError(fmt.Sprintf("rule %s already exists", rule.RuleID))
			case "23503":
				return apperrors.NewValidationFailedError("company or driver does not exist", err)
			}
		}
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func (r *PgxDeductionRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.DeductionRuleTemplate, error) {
	query := `
		SELECT ` + selectRuleFields + `
		FROM deduction_rules
		WHERE rule_id = $1;
	`
	modelRule, err := scanRule(r.db.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule by ID %s: %w", ruleID, err)
	}

	domainRule := mapping.ToDomainDeductionRule(*modelRule)
	return &domainRule, nil
}

func (r *PgxDeductionRuleRepository) ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool, limit int, offset int) ([]domain.DeductionRuleTemplate, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + selectRuleFields + `
        FROM deduction_rules
        WHERE company_id = $1 AND ($2 OR is_active)
        ORDER BY name, rule_id
        LIMIT $3 OFFSET $4;
    `
	rows, err := r.db.Query(ctx, query, companyID, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	modelRules, err := collectRules(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainDeductionRuleSlice(modelRules), nil
}

func (r *PgxDeductionRuleRepository) FindActiveRulesByCompany(ctx context.Context, companyID string) ([]domain.DeductionRuleTemplate, error) {
	query := `
		SELECT ` + selectRuleFields + `
		FROM deduction_rules
		WHERE company_id = $1 AND is_active
		ORDER BY name, rule_id;
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active rules: %w", err)
	}
	modelRules, err := collectRules(rows)
	if err != nil {
		return nil, err
	}

	return mapping.ToDomainDeductionRuleSlice(modelRules), nil
}

func (r *PgxDeductionRuleRepository) CountActiveRulesByCompany(ctx context.Context, companyID string) (int64, error) {
	query := `SELECT COUNT(*) FROM deduction_rules WHERE company_id = $1 AND is_active;`
	var count int64
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active rules: %w", err)
	}
	return count, nil
}

func (r *PgxDeductionRuleRepository) UpdateRule(ctx context.Context, rule domain.DeductionRuleTemplate) error {
	modelRule := mapping.ToModelDeductionRule(rule)
	query := `
        UPDATE deduction_rules
        SET name = $1, kind = $2, calculation_type = $3, amount = $4, percentage = $5, per_mile_rate = $6,
            frequency = $7, driver_type_scope = $8, driver_id = $9, min_gross_pay = $10, max_amount = $11,
            goal_amount = $12, current_amount = $13, is_active = $14,
            last_updated_at = $15, last_updated_by = $16, version = version + 1
        WHERE rule_id = $17 AND version = $18;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelRule.Name,
		modelRule.Kind,
		modelRule.CalculationType,
		modelRule.Amount,
		modelRule.Percentage,
		modelRule.PerMileRate,
		modelRule.Frequency,
		modelRule.DriverTypeScope,
		modelRule.DriverID,
		modelRule.MinGrossPay,
		modelRule.MaxAmount,
		modelRule.GoalAmount,
		modelRule.CurrentAmount,
		modelRule.IsActive,
		modelRule.LastUpdatedAt,
		modelRule.LastUpdatedBy,
		modelRule.RuleID,
		modelRule.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update rule query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("rule not found or modified concurrently: %w", apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxDeductionRuleRepository) MarkRuleInactive(ctx context.Context, ruleID string, updatedBy string, updatedAt time.Time) error {
	query := `
        UPDATE deduction_rules
        SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2, version = version + 1
        WHERE rule_id = $3 AND is_active;
    `
	cmdTag, err := r.db.Exec(ctx, query, updatedAt, updatedBy, ruleID)
	if err != nil {
		return fmt.Errorf("failed to mark rule inactive: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("rule not found or already inactive: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxDeductionRuleRepository) FindRuleApplications(ctx context.Context, driverID string, ruleIDs []string) ([]domain.RuleApplication, error) {
	if len(ruleIDs) == 0 {
		return []domain.RuleApplication{}, nil
	}

	query := `
		SELECT application_id, rule_id, driver_id, settlement_id, applied_at
		FROM rule_applications
		WHERE driver_id = $1 AND rule_id = ANY($2)
		ORDER BY applied_at DESC;
	`
	rows, err := r.db.Query(ctx, query, driverID, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule applications: %w", err)
	}
	defer rows.Close()

	modelApps := []models.RuleApplication{}
	for rows.Next() {
		var m models.RuleApplication
		err := rows.Scan(&m.ApplicationID, &m.RuleID, &m.DriverID, &m.SettlementID, &m.AppliedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule application row: %w", err)
		}
		modelApps = append(modelApps, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating rule application rows: %w", rows.Err())
	}

	return mapping.ToDomainRuleApplicationSlice(modelApps), nil
}
