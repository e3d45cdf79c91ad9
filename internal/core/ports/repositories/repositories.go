package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo          UserRepositoryFacade
	CompanyRepo       CompanyRepositoryFacade
	DriverRepo        DriverRepositoryFacade
	LoadRepo          LoadRepositoryFacade
	DeductionRuleRepo DeductionRuleRepositoryFacade
	AdvanceRepo       AdvanceRepositoryFacade
	SettlementRepo    SettlementRepositoryFacade
	APITokenRepo      APITokenRepository
}
