package repositories

import (
	"context"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
)

// DeductionRuleReader defines read operations for deduction rule templates
type DeductionRuleReader interface {
	// FindRuleByID retrieves a specific template by its ID.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.DeductionRuleTemplate, error)

	// ListRulesByCompany retrieves a paginated list of templates for a company.
	// When includeInactive is false only active templates are returned.
	ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool, limit int, offset int) ([]domain.DeductionRuleTemplate, error)

	// FindActiveRulesByCompany retrieves every active template for a company,
	// used when evaluating a settlement.
	FindActiveRulesByCompany(ctx context.Context, companyID string) ([]domain.DeductionRuleTemplate, error)

	// CountActiveRulesByCompany returns the number of active templates for a company.
	CountActiveRulesByCompany(ctx context.Context, companyID string) (int64, error)
}

// DeductionRuleWriter defines write operations for deduction rule templates
type DeductionRuleWriter interface {
	// SaveRule persists a new template.
	SaveRule(ctx context.Context, rule domain.DeductionRuleTemplate) error

	// UpdateRule updates an existing template using optimistic versioning.
	UpdateRule(ctx context.Context, rule domain.DeductionRuleTemplate) error

	// MarkRuleInactive deactivates a template.
	MarkRuleInactive(ctx context.Context, ruleID string, updatedBy string, updatedAt time.Time) error
}

// RuleApplicationReader defines read operations for template usage markers
type RuleApplicationReader interface {
	// FindRuleApplications retrieves all usage markers for a driver across the
	// given templates, most recent first.
	FindRuleApplications(ctx context.Context, driverID string, ruleIDs []string) ([]domain.RuleApplication, error)
}

// DeductionRuleRepositoryFacade combines all template-related repository interfaces
// This is a facade for clients that need access to all operations
type DeductionRuleRepositoryFacade interface {
	DeductionRuleReader
	DeductionRuleWriter
	RuleApplicationReader
}
