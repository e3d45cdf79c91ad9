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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompanyRepository struct {
	db *pgxpool.Pool
}

func newPgxCompanyRepository(db *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{db: db}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const selectCompanyFields = `
	company_id, name, dot_number, is_active,
	created_at, created_by, last_updated_at, last_updated_by, version
`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var m models.Company
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&m.DOTNumber,
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

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	modelCompany := mapping.ToModelCompany(company)
	query := `
        INSERT INTO companies (company_id, name, dot_number, is_active, created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		modelCompany.CompanyID,
		modelCompany.Name,
		modelCompany.DOTNumber,
		modelCompany.IsActive,
		modelCompany.CreatedAt,
		modelCompany.CreatedBy,
		modelCompany.LastUpdatedAt,
		modelCompany.LastUpdatedBy,
		modelCompany.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflictError(fmt.Sprintf("company %s already exists", company.CompanyID))
		}
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `
		SELECT ` + selectCompanyFields + `
		FROM companies
		WHERE company_id = $1;
	`
	modelCompany, err := scanCompany(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}

	domainCompany := mapping.ToDomainCompany(*modelCompany)
	return &domainCompany, nil
}

func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
		SELECT ` + selectCompanyFields + `
		FROM companies c
		JOIN user_companies uc ON uc.company_id = c.company_id
		WHERE uc.user_id = $1
		ORDER BY c.name;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelCompanies := []models.Company{}
	for rows.Next() {
		modelCompany, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		modelCompanies = append(modelCompanies, *modelCompany)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", rows.Err())
	}

	return mapping.ToDomainCompanySlice(modelCompanies), nil
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	modelCompany := mapping.ToModelCompany(company)
	query := `
        UPDATE companies
        SET name = $1, dot_number = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5, version = version + 1
        WHERE company_id = $6;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		modelCompany.Name,
		modelCompany.DOTNumber,
		modelCompany.IsActive,
		modelCompany.LastUpdatedAt,
		modelCompany.LastUpdatedBy,
		modelCompany.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update company query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("company not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.UserCompany) error {
	query := `
        INSERT INTO user_companies (user_id, company_id, role, joined_at, created_at, created_by, last_updated_at, last_updated_by, version)
        VALUES ($1, $2, $3, $4, $4, $1, $4, $1, 1);
    `
	_, err := r.db.Exec(ctx, query,
		membership.UserID,
		membership.CompanyID,
		string(membership.Role),
		membership.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperrors.NewConflictError("user is already a member of this company")
			case "23503":
				return apperrors.NewValidationFailedError("user or company does not exist", err)
			}
		}
		return fmt.Errorf("failed to add user to company: %w", err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.UserCompany, error) {
	query := `
		SELECT uc.user_id, u.name, uc.company_id, uc.role, uc.joined_at
		FROM user_companies uc
		JOIN users u ON u.user_id = uc.user_id
		WHERE uc.user_id = $1 AND uc.company_id = $2;
	`
	var membership domain.UserCompany
	var role string
	err := r.db.QueryRow(ctx, query, userID, companyID).Scan(
		&membership.UserID,
		&membership.UserName,
		&membership.CompanyID,
		&role,
		&membership.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership for user %s in company %s: %w", userID, companyID, err)
	}
	membership.Role = domain.UserCompanyRole(role)
	return &membership, nil
}

func (r *PgxCompanyRepository) ListCompanyUsers(ctx context.Context, companyID string) ([]domain.UserCompany, error) {
	query := `
		SELECT uc.user_id, u.name, uc.company_id, uc.role, uc.joined_at
		FROM user_companies uc
		JOIN users u ON u.user_id = uc.user_id
		WHERE uc.company_id = $1
		ORDER BY uc.joined_at;
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query company memberships: %w", err)
	}
	defer rows.Close()

	memberships := []domain.UserCompany{}
	for rows.Next() {
		var membership domain.UserCompany
		var role string
		err := rows.Scan(
			&membership.UserID,
			&membership.UserName,
			&membership.CompanyID,
			&role,
			&membership.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		membership.Role = domain.UserCompanyRole(role)
		memberships = append(memberships, membership)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", rows.Err())
	}

	return memberships, nil
}

func (r *PgxCompanyRepository) UpdateUserCompanyRole(ctx context.Context, membership domain.UserCompany) error {
	query := `
        UPDATE user_companies
        SET role = $1, last_updated_at = now(), last_updated_by = $2, version = version + 1
        WHERE user_id = $3 AND company_id = $4;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		string(membership.Role),
		membership.UserID,
		membership.UserID,
		membership.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("membership not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
