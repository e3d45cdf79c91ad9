package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// DeductionRuleReaderSvc defines read operations for deduction rule templates
type DeductionRuleReaderSvc interface {
	// GetRuleByID retrieves a template within a company.
	GetRuleByID(ctx context.Context, companyID, ruleID string, requestingUserID string) (*domain.DeductionRuleTemplate, error)

	// ListRules retrieves a paginated list of templates in a company.
	ListRules(ctx context.Context, companyID string, requestingUserID string, params dto.ListDeductionRulesParams) ([]domain.DeductionRuleTemplate, error)
}

// DeductionRuleWriterSvc defines write operations for deduction rule templates
type DeductionRuleWriterSvc interface {
	// CreateRule persists a new template. Companies are limited in how many
	// active templates they may carry.
	CreateRule(ctx context.Context, companyID string, req dto.CreateDeductionRuleRequest, creatorUserID string) (*domain.DeductionRuleTemplate, error)

	// UpdateRule updates a template's details.
	UpdateRule(ctx context.Context, companyID, ruleID string, req dto.UpdateDeductionRuleRequest, requestingUserID string) (*domain.DeductionRuleTemplate, error)

	// DeactivateRule marks a template inactive so it no longer contributes to
	// new settlements. Goal progress is retained.
	DeactivateRule(ctx context.Context, companyID, ruleID string, requestingUserID string) error
}

// DeductionRuleSvcFacade combines all template-related service interfaces
type DeductionRuleSvcFacade interface {
	DeductionRuleReaderSvc
	DeductionRuleWriterSvc
}
