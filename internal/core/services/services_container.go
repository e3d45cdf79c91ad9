package services

import (
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Initialize the company service first since the other services depend on
	// it for authorization.
	container.Company = NewCompanyService(repos.CompanyRepo)
	companyAuthorizer := container.Company.(portssvc.CompanyAuthorizerSvc)

	container.User = NewUserService(repos.UserRepo)
	container.Driver = NewDriverService(repos.DriverRepo, companyAuthorizer)
	container.Load = NewLoadService(repos.LoadRepo, repos.DriverRepo, companyAuthorizer)
	container.DeductionRule = NewDeductionRuleService(repos.DeductionRuleRepo, repos.DriverRepo, companyAuthorizer)
	container.Advance = NewAdvanceService(repos.AdvanceRepo, repos.DriverRepo, companyAuthorizer)
	container.Settlement = NewSettlementService(
		repos.SettlementRepo,
		repos.LoadRepo,
		repos.DriverRepo,
		repos.DeductionRuleRepo,
		repos.AdvanceRepo,
		companyAuthorizer,
	)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	return container
}
