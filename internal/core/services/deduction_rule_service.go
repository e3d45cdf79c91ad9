package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// maxActiveRulesPerCompany caps the active templates a company may carry.
const maxActiveRulesPerCompany = 1000

var (
	ErrRuleLimitReached = errors.New("active rule template limit reached for company")
)

// deductionRuleService implements the DeductionRuleSvcFacade interface
type deductionRuleService struct {
	BaseService
	ruleRepo   portsrepo.DeductionRuleRepositoryFacade
	driverRepo portsrepo.DriverRepositoryFacade
}

// NewDeductionRuleService creates a new deduction rule service with the provided dependencies
func NewDeductionRuleService(ruleRepo portsrepo.DeductionRuleRepositoryFacade, driverRepo portsrepo.DriverRepositoryFacade, companyAuthorizer portssvc.CompanyAuthorizerSvc) portssvc.DeductionRuleSvcFacade {
	return &deductionRuleService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		ruleRepo:    ruleRepo,
		driverRepo:  driverRepo,
	}
}

// Ensure deductionRuleService implements the DeductionRuleSvcFacade interface
var _ portssvc.DeductionRuleSvcFacade = (*deductionRuleService)(nil)

// GetRuleByID retrieves a template within a company.
func (s *deductionRuleService) GetRuleByID(ctx context.Context, companyID, ruleID string, requestingUserID string) (*domain.DeductionRuleTemplate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find rule by ID", slog.String("rule_id", ruleID))
		}
		return nil, err
	}

	if rule.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	return rule, nil
}

// ListRules retrieves a paginated list of templates in a company.
func (s *deductionRuleService) ListRules(ctx context.Context, companyID string, requestingUserID string, params dto.ListDeductionRulesParams) ([]domain.DeductionRuleTemplate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	rules, err := s.ruleRepo.ListRulesByCompany(ctx, companyID, params.IncludeInactive, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list rules", slog.String("company_id", companyID))
		return nil, err
	}

	if rules == nil {
		return []domain.DeductionRuleTemplate{}, nil
	}
	return rules, nil
}

// CreateRule persists a new template after validation.
func (s *deductionRuleService) CreateRule(ctx context.Context, companyID string, req dto.CreateDeductionRuleRequest, creatorUserID string) (*domain.DeductionRuleTemplate, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	count, err := s.ruleRepo.CountActiveRulesByCompany(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count active rules", slog.String("company_id", companyID))
		return nil, err
	}
	if count >= maxActiveRulesPerCompany {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRuleLimitReached)
	}

	if req.DriverID != nil {
		if err := s.verifyDriverInCompany(ctx, companyID, *req.DriverID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rule := domain.DeductionRuleTemplate{
		RuleID:          uuid.NewString(),
		CompanyID:       companyID,
		Name:            req.Name,
		Kind:            req.Kind,
		CalculationType: req.CalculationType,
		Amount:          req.Amount,
		Percentage:      req.Percentage,
		PerMileRate:     req.PerMileRate,
		Frequency:       req.Frequency,
		DriverTypeScope: req.DriverTypeScope,
		DriverID:        req.DriverID,
		MinGrossPay:     req.MinGrossPay,
		MaxAmount:       req.MaxAmount,
		GoalAmount:      req.GoalAmount,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save rule", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Rule template created successfully",
		slog.String("rule_id", rule.RuleID),
		slog.String("company_id", companyID))
	return &rule, nil
}

// UpdateRule updates a template's details. Goal progress is never reset here;
// it only moves as settlements apply the rule.
func (s *deductionRuleService) UpdateRule(ctx context.Context, companyID, ruleID string, req dto.UpdateDeductionRuleRequest, requestingUserID string) (*domain.DeductionRuleTemplate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	updated := false
	if req.Name != nil {
		rule.Name = *req.Name
		updated = true
	}
	if req.Amount != nil {
		rule.Amount = req.Amount
		updated = true
	}
	if req.Percentage != nil {
		rule.Percentage = req.Percentage
		updated = true
	}
	if req.PerMileRate != nil {
		rule.PerMileRate = req.PerMileRate
		updated = true
	}
	if req.MinGrossPay != nil {
		rule.MinGrossPay = req.MinGrossPay
		updated = true
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = req.MaxAmount
		updated = true
	}
	if req.GoalAmount != nil {
		rule.GoalAmount = req.GoalAmount
		updated = true
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return rule, nil
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = requestingUserID

	if err := s.ruleRepo.UpdateRule(ctx, *rule); err != nil {
		s.LogError(ctx, err, "Failed to update rule", slog.String("rule_id", ruleID))
		return nil, err
	}

	s.LogInfo(ctx, "Rule template updated successfully", slog.String("rule_id", ruleID))
	return rule, nil
}

// DeactivateRule marks a template inactive. Existing settlements keep the line
// items the rule already produced.
func (s *deductionRuleService) DeactivateRule(ctx context.Context, companyID, ruleID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return err
	}

	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return err
	}
	if rule.CompanyID != companyID {
		return apperrors.ErrNotFound
	}

	if err := s.ruleRepo.MarkRuleInactive(ctx, ruleID, requestingUserID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate rule", slog.String("rule_id", ruleID))
		return err
	}

	s.LogInfo(ctx, "Rule template deactivated", slog.String("rule_id", ruleID))
	return nil
}

func (s *deductionRuleService) verifyDriverInCompany(ctx context.Context, companyID, driverID string) error {
	driver, err := s.driverRepo.FindDriverByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, driverID)
		}
		return err
	}
	if driver.CompanyID != companyID {
		return fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, driverID)
	}
	return nil
}
