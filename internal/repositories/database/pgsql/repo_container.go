package pgsql

import (
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)
	driverRepo := newPgxDriverRepository(dbPool)
	loadRepo := newPgxLoadRepository(dbPool)
	deductionRuleRepo := newPgxDeductionRuleRepository(dbPool)
	advanceRepo := newPgxAdvanceRepository(dbPool)
	settlementRepo := newPgxSettlementRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:          userRepo,
		CompanyRepo:       companyRepo,
		DriverRepo:        driverRepo,
		LoadRepo:          loadRepo,
		DeductionRuleRepo: deductionRuleRepo,
		AdvanceRepo:       advanceRepo,
		SettlementRepo:    settlementRepo,
		APITokenRepo:      apiTokenRepo,
	}
}
