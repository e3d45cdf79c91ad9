package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

var (
	ErrPeriodInverted    = errors.New("period start must not be after period end")
	ErrNoSettleableLoads = errors.New("no settleable loads found for the driver in the period")
)

// settlementService implements the SettlementSvcFacade interface
type settlementService struct {
	BaseService
	settlementRepo portsrepo.SettlementRepositoryFacade
	loadRepo       portsrepo.LoadRepositoryFacade
	driverRepo     portsrepo.DriverRepositoryFacade
	ruleRepo       portsrepo.DeductionRuleRepositoryFacade
	advanceRepo    portsrepo.AdvanceRepositoryFacade
	payCalc        *PayCalculator
	ruleEngine     *RuleEngine
}

// NewSettlementService creates a new settlement service with the provided dependencies
func NewSettlementService(
	settlementRepo portsrepo.SettlementRepositoryFacade,
	loadRepo portsrepo.LoadRepositoryFacade,
	driverRepo portsrepo.DriverRepositoryFacade,
	ruleRepo portsrepo.DeductionRuleRepositoryFacade,
	advanceRepo portsrepo.AdvanceRepositoryFacade,
	companyAuthorizer portssvc.CompanyAuthorizerSvc,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		BaseService:    BaseService{CompanyAuthorizer: companyAuthorizer},
		settlementRepo: settlementRepo,
		loadRepo:       loadRepo,
		driverRepo:     driverRepo,
		ruleRepo:       ruleRepo,
		advanceRepo:    advanceRepo,
		payCalc:        NewPayCalculator(),
		ruleEngine:     NewRuleEngine(),
	}
}

// Ensure settlementService implements the SettlementSvcFacade interface
var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// GetSettlementByID retrieves a settlement with its line items.
func (s *settlementService) GetSettlementByID(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	settlement, err := s.findCompanySettlement(ctx, companyID, settlementID)
	if err != nil {
		return nil, err
	}

	lineItems, err := s.settlementRepo.FindLineItemsBySettlementID(ctx, settlementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load settlement line items", slog.String("settlement_id", settlementID))
		return nil, err
	}
	settlement.LineItems = lineItems

	return settlement, nil
}

// ListSettlements retrieves a paginated list of settlements in a company.
func (s *settlementService) ListSettlements(ctx context.Context, companyID string, requestingUserID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	settlements, nextToken, err := s.settlementRepo.ListSettlementsByCompany(ctx, companyID, params.DriverID, params.Status, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settlements", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to retrieve settlements: %w", err)
	}

	resp := dto.ToListSettlementsResponse(settlements, nextToken)
	return &resp, nil
}

// ListStatusEvents retrieves a settlement's status audit trail.
func (s *settlementService) ListStatusEvents(ctx context.Context, companyID, settlementID string, requestingUserID string) ([]domain.SettlementStatusEvent, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if _, err := s.findCompanySettlement(ctx, companyID, settlementID); err != nil {
		return nil, err
	}

	events, err := s.settlementRepo.FindStatusEventsBySettlementID(ctx, settlementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load settlement status events", slog.String("settlement_id", settlementID))
		return nil, err
	}

	if events == nil {
		return []domain.SettlementStatusEvent{}, nil
	}
	return events, nil
}

// GenerateSettlement builds a draft settlement for a driver and period.
func (s *settlementService) GenerateSettlement(ctx context.Context, companyID string, req dto.GenerateSettlementRequest, creatorUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.PeriodStart.After(req.PeriodEnd) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrPeriodInverted)
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, req.DriverID)
		}
		return nil, err
	}
	if driver.CompanyID != companyID {
		return nil, fmt.Errorf("%w: driver %s not found", apperrors.ErrValidation, req.DriverID)
	}

	existing, err := s.settlementRepo.FindSettlementForPeriod(ctx, companyID, req.DriverID, req.PeriodStart, req.PeriodEnd, domain.LiveStatuses())
	if err != nil {
		s.LogError(ctx, err, "Failed to check for an existing settlement", slog.String("driver_id", req.DriverID))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: settlement %s already covers driver %s for this period",
			apperrors.ErrDuplicate, existing.SettlementNumber, req.DriverID)
	}

	loads, err := s.loadRepo.FindSettleableLoads(ctx, companyID, req.DriverID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to find settleable loads", slog.String("driver_id", req.DriverID))
		return nil, err
	}
	if len(loads) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoSettleableLoads)
	}

	now := time.Now()
	settlementID := uuid.NewString()

	grossPay, totalMiles, loadIDs, calcLog := s.computeGrossPay(*driver, loads, now)

	generated, applications, ruleProgress, ruleWarnings, err := s.evaluateRules(ctx, *driver, settlementID, grossPay, totalMiles, req.PeriodEnd, nil, creatorUserID, now)
	if err != nil {
		return nil, err
	}
	calcLog.Warnings = append(calcLog.Warnings, ruleWarnings...)

	settlement := domain.Settlement{
		SettlementID:     settlementID,
		CompanyID:        companyID,
		DriverID:         req.DriverID,
		SettlementNumber: newSettlementNumber(req.PeriodEnd),
		PeriodStart:      req.PeriodStart,
		PeriodEnd:        req.PeriodEnd,
		LoadIDs:          loadIDs,
		GrossPay:         grossPay,
		Status:           domain.SettlementDraft,
		Notes:            req.Notes,
		CalculatedAt:     now,
		CalcLog:          &calcLog,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	settlement.Recompute(generated, nil)

	if err := s.settlementRepo.SaveSettlement(ctx, settlement, generated, applications, ruleProgress); err != nil {
		s.LogError(ctx, err, "Failed to save generated settlement", slog.String("settlement_id", settlementID))
		return nil, err
	}

	settlement.LineItems = generated
	s.LogInfo(ctx, "Settlement generated",
		slog.String("settlement_id", settlementID),
		slog.String("driver_id", req.DriverID),
		slog.String("net_pay", settlement.NetPay.String()))
	return &settlement, nil
}

// RecalculateSettlement re-runs pay calculation and template evaluation for an
// editable settlement. Manual line items and attached advances survive; only
// the template-generated items are replaced.
func (s *settlementService) RecalculateSettlement(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	settlement, err := s.findEditableSettlement(ctx, companyID, settlementID)
	if err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.FindDriverByID(ctx, settlement.DriverID)
	if err != nil {
		return nil, err
	}

	loads, err := s.loadRepo.FindLoadsByIDs(ctx, settlement.LoadIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load settlement loads", slog.String("settlement_id", settlementID))
		return nil, err
	}

	now := time.Now()
	grossPay, totalMiles, loadIDs, calcLog := s.computeGrossPay(*driver, loads, now)

	generated, applications, ruleProgress, ruleWarnings, err := s.evaluateRules(ctx, *driver, settlementID, grossPay, totalMiles, settlement.PeriodEnd, &settlementID, requestingUserID, now)
	if err != nil {
		return nil, err
	}
	calcLog.Warnings = append(calcLog.Warnings, ruleWarnings...)

	settlement.LoadIDs = loadIDs
	settlement.GrossPay = grossPay
	settlement.CalculatedAt = now
	settlement.CalcLog = &calcLog
	settlement.LastUpdatedAt = now
	settlement.LastUpdatedBy = requestingUserID

	updated, err := s.settlementRepo.ReplaceGeneratedLineItems(ctx, *settlement, generated, applications, ruleProgress)
	if err != nil {
		s.LogError(ctx, err, "Failed to replace generated line items", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Settlement recalculated", slog.String("settlement_id", settlementID))
	return updated, nil
}

// AddLineItem appends a manual deduction or addition to an editable settlement.
func (s *settlementService) AddLineItem(ctx context.Context, companyID, settlementID string, req dto.AddLineItemRequest, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.findEditableSettlement(ctx, companyID, settlementID); err != nil {
		return nil, err
	}

	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown line item kind %s", apperrors.ErrValidation, req.Kind)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: line item amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	item := domain.NewLineItem(settlementID, req.Kind, req.Description, req.Amount.Round(2))
	item.LineItemID = uuid.NewString()
	item.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	updated, err := s.settlementRepo.AddLineItem(ctx, settlementID, item)
	if err != nil {
		s.LogError(ctx, err, "Failed to add line item", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Line item added",
		slog.String("settlement_id", settlementID),
		slog.String("line_item_id", item.LineItemID))
	return updated, nil
}

// RemoveLineItem deletes a line item from an editable settlement. Advance-linked
// items cannot be removed directly; the advance must be detached instead.
func (s *settlementService) RemoveLineItem(ctx context.Context, companyID, settlementID, lineItemID string, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.findEditableSettlement(ctx, companyID, settlementID); err != nil {
		return nil, err
	}

	lineItems, err := s.settlementRepo.FindLineItemsBySettlementID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	var target *domain.SettlementLineItem
	for i := range lineItems {
		if lineItems[i].LineItemID == lineItemID {
			target = &lineItems[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: line item %s not found on settlement", apperrors.ErrNotFound, lineItemID)
	}
	if target.AdvanceID != nil {
		return nil, fmt.Errorf("%w: line item belongs to an attached advance; detach the advance instead", apperrors.ErrConflict)
	}

	updated, err := s.settlementRepo.RemoveLineItem(ctx, settlementID, lineItemID, requestingUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to remove line item", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Line item removed",
		slog.String("settlement_id", settlementID),
		slog.String("line_item_id", lineItemID))
	return updated, nil
}

// AttachAdvance links an attachable advance to an editable settlement.
func (s *settlementService) AttachAdvance(ctx context.Context, companyID, settlementID, advanceID string, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	settlement, err := s.findEditableSettlement(ctx, companyID, settlementID)
	if err != nil {
		return nil, err
	}

	advance, err := s.advanceRepo.FindAdvanceByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if advance.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	if advance.DriverID != settlement.DriverID {
		return nil, fmt.Errorf("%w: advance belongs to a different driver", apperrors.ErrValidation)
	}
	if advance.SettlementID != nil {
		return nil, fmt.Errorf("%w: advance is already attached to a settlement", apperrors.ErrConflict)
	}
	if !advance.Status.Attachable() {
		return nil, fmt.Errorf("%w: advance in status %s cannot be attached", apperrors.ErrConflict, advance.Status)
	}

	now := time.Now()
	advance.SettlementID = &settlement.SettlementID
	advance.LastUpdatedAt = now
	advance.LastUpdatedBy = requestingUserID

	item := domain.NewLineItem(settlementID, domain.KindCashAdvance,
		fmt.Sprintf("Cash advance from %s", advance.RequestDate.Format("2006-01-02")),
		advance.Amount)
	item.LineItemID = uuid.NewString()
	item.AdvanceID = &advance.AdvanceID
	item.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	updated, err := s.settlementRepo.AttachAdvance(ctx, settlementID, *advance, item)
	if err != nil {
		s.LogError(ctx, err, "Failed to attach advance", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Advance attached",
		slog.String("settlement_id", settlementID),
		slog.String("advance_id", advanceID))
	return updated, nil
}

// DetachAdvance unlinks an advance from an editable settlement.
func (s *settlementService) DetachAdvance(ctx context.Context, companyID, settlementID, advanceID string, requestingUserID string) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.findEditableSettlement(ctx, companyID, settlementID); err != nil {
		return nil, err
	}

	advance, err := s.advanceRepo.FindAdvanceByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if advance.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	if advance.SettlementID == nil || *advance.SettlementID != settlementID {
		return nil, fmt.Errorf("%w: advance is not attached to this settlement", apperrors.ErrConflict)
	}

	updated, err := s.settlementRepo.DetachAdvance(ctx, settlementID, advanceID, requestingUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to detach advance", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Advance detached",
		slog.String("settlement_id", settlementID),
		slog.String("advance_id", advanceID))
	return updated, nil
}

// SubmitForApproval moves a draft settlement to pending approval.
func (s *settlementService) SubmitForApproval(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error) {
	return s.transition(ctx, companyID, settlementID, requestingUserID, domain.RoleMember, domain.SettlementPendingApproval, "", nil)
}

// ApproveSettlement approves a pending settlement, recording the payment method.
func (s *settlementService) ApproveSettlement(ctx context.Context, companyID, settlementID string, req dto.ApproveSettlementRequest, requestingUserID string) (*domain.Settlement, error) {
	if req.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required for approval", apperrors.ErrValidation)
	}
	return s.transition(ctx, companyID, settlementID, requestingUserID, domain.RoleAdmin, domain.SettlementApproved, "",
		func(settlement *domain.Settlement) {
			settlement.PaymentMethod = &req.PaymentMethod
		})
}

// RejectSettlement rejects a pending settlement with a mandatory note.
func (s *settlementService) RejectSettlement(ctx context.Context, companyID, settlementID string, req dto.RejectSettlementRequest, requestingUserID string) (*domain.Settlement, error) {
	if req.Note == "" {
		return nil, fmt.Errorf("%w: a note is required for rejection", apperrors.ErrValidation)
	}
	return s.transition(ctx, companyID, settlementID, requestingUserID, domain.RoleAdmin, domain.SettlementRejected, req.Note, nil)
}

// MarkSettlementPaid moves an approved settlement to paid.
func (s *settlementService) MarkSettlementPaid(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error) {
	return s.transition(ctx, companyID, settlementID, requestingUserID, domain.RoleAdmin, domain.SettlementPaid, "", nil)
}

// ReopenSettlement moves a rejected settlement back to draft for rework.
func (s *settlementService) ReopenSettlement(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error) {
	return s.transition(ctx, companyID, settlementID, requestingUserID, domain.RoleMember, domain.SettlementDraft, "", nil)
}

func (s *settlementService) transition(ctx context.Context, companyID, settlementID, requestingUserID string, requiredRole domain.UserCompanyRole, target domain.SettlementStatus, reason string, mutate func(*domain.Settlement)) (*domain.Settlement, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, requiredRole); err != nil {
		return nil, err
	}

	settlement, err := s.findCompanySettlement(ctx, companyID, settlementID)
	if err != nil {
		return nil, err
	}

	if !settlement.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: settlement cannot move from %s to %s",
			apperrors.ErrInvalidTransition, settlement.Status, target)
	}

	now := time.Now()
	event := domain.SettlementStatusEvent{
		EventID:      uuid.NewString(),
		SettlementID: settlementID,
		FromStatus:   settlement.Status,
		ToStatus:     target,
		ActorUserID:  requestingUserID,
		Reason:       reason,
		CreatedAt:    now,
	}

	settlement.Status = target
	settlement.LastUpdatedAt = now
	settlement.LastUpdatedBy = requestingUserID
	if mutate != nil {
		mutate(settlement)
	}

	if err := s.settlementRepo.UpdateSettlementStatus(ctx, *settlement, event); err != nil {
		s.LogError(ctx, err, "Failed to update settlement status", slog.String("settlement_id", settlementID))
		return nil, err
	}

	s.LogInfo(ctx, "Settlement status changed",
		slog.String("settlement_id", settlementID),
		slog.String("from", string(event.FromStatus)),
		slog.String("to", string(target)))
	return settlement, nil
}

// computeGrossPay runs the pay calculator over the settling loads and returns
// the gross pay, total miles, load linkage, and the calculation log.
func (s *settlementService) computeGrossPay(driver domain.Driver, loads []domain.Load, now time.Time) (decimal.Decimal, decimal.Decimal, []string, domain.CalculationLog) {
	grossPay := decimal.Zero
	totalMiles := decimal.Zero
	loadIDs := make([]string, 0, len(loads))
	calcLog := domain.CalculationLog{CalculatedAt: now}

	for _, load := range loads {
		totalMiles = totalMiles.Add(load.Miles())
		loadIDs = append(loadIDs, load.LoadID)
	}

	// Weekly drivers earn one flat amount per settlement, so the per-load
	// calculator never runs for them; the log carries a single entry.
	if driver.PayType == domain.PayWeekly {
		if weekly := s.payCalc.ComputeWeeklyPay(driver, len(loads)); len(loads) > 0 {
			grossPay = weekly.Amount
			calcLog.Entries = append(calcLog.Entries, domain.CalcLogEntry{
				Formula: weekly.Formula,
				Rate:    driver.PayRate,
				Amount:  weekly.Amount,
			})
			calcLog.Warnings = append(calcLog.Warnings, weekly.Warnings...)
		}
		return grossPay, totalMiles, loadIDs, calcLog
	}

	for _, load := range loads {
		result := s.payCalc.ComputeLoadPay(driver, load)
		grossPay = grossPay.Add(result.Amount)
		calcLog.Entries = append(calcLog.Entries, domain.CalcLogEntry{
			LoadID:     load.LoadID,
			LoadNumber: load.LoadNumber,
			Formula:    result.Formula,
			Rate:       driver.PayRate,
			Miles:      load.Miles(),
			Revenue:    load.Revenue,
			Amount:     result.Amount,
		})
		calcLog.Warnings = append(calcLog.Warnings, result.Warnings...)
	}

	return grossPay, totalMiles, loadIDs, calcLog
}

// evaluateRules runs the company's active templates against the settlement and
// returns the generated line items, usage markers, and goal progress updates.
// When excludeSettlementID is set (recalculation), the settlement's own usage
// markers are ignored so its templates can re-apply.
func (s *settlementService) evaluateRules(ctx context.Context, driver domain.Driver, settlementID string, grossPay, totalMiles decimal.Decimal, periodEnd time.Time, excludeSettlementID *string, actorUserID string, now time.Time) ([]domain.SettlementLineItem, []domain.RuleApplication, map[string]decimal.Decimal, []string, error) {
	rules, err := s.ruleRepo.FindActiveRulesByCompany(ctx, driver.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load active rule templates", slog.String("company_id", driver.CompanyID))
		return nil, nil, nil, nil, err
	}

	var prior []domain.RuleApplication
	if len(rules) > 0 {
		ruleIDs := make([]string, len(rules))
		for i, rule := range rules {
			ruleIDs[i] = rule.RuleID
		}
		prior, err = s.ruleRepo.FindRuleApplications(ctx, driver.DriverID, ruleIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to load rule applications", slog.String("driver_id", driver.DriverID))
			return nil, nil, nil, nil, err
		}
	}
	if excludeSettlementID != nil {
		filtered := prior[:0]
		for _, app := range prior {
			if app.SettlementID != *excludeSettlementID {
				filtered = append(filtered, app)
			}
		}
		prior = filtered
	}

	result := s.ruleEngine.Evaluate(rules, EvaluationInput{
		Driver:            driver,
		GrossPay:          grossPay,
		TotalMiles:        totalMiles,
		PeriodEnd:         periodEnd,
		PriorApplications: prior,
	})

	lineItems := make([]domain.SettlementLineItem, 0, len(result.Contributions))
	applications := make([]domain.RuleApplication, 0, len(result.Contributions))
	ruleProgress := make(map[string]decimal.Decimal)

	for _, contrib := range result.Contributions {
		item := domain.NewLineItem(settlementID, contrib.Rule.Kind, contrib.Rule.Name, contrib.Amount)
		item.LineItemID = uuid.NewString()
		item.SourceRuleID = &contrib.Rule.RuleID
		item.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		}
		lineItems = append(lineItems, item)

		applications = append(applications, domain.RuleApplication{
			ApplicationID: uuid.NewString(),
			RuleID:        contrib.Rule.RuleID,
			DriverID:      driver.DriverID,
			SettlementID:  settlementID,
			AppliedAt:     now,
		})

		if contrib.NewProgress != nil {
			ruleProgress[contrib.Rule.RuleID] = *contrib.NewProgress
		}
	}

	return lineItems, applications, ruleProgress, result.Warnings, nil
}

// findCompanySettlement fetches a settlement and hides those belonging to
// other companies.
func (s *settlementService) findCompanySettlement(ctx context.Context, companyID, settlementID string) (*domain.Settlement, error) {
	settlement, err := s.settlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find settlement by ID", slog.String("settlement_id", settlementID))
		}
		return nil, err
	}
	if settlement.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return settlement, nil
}

// findEditableSettlement fetches a settlement and rejects mutation once it has
// left the editable states.
func (s *settlementService) findEditableSettlement(ctx context.Context, companyID, settlementID string) (*domain.Settlement, error) {
	settlement, err := s.findCompanySettlement(ctx, companyID, settlementID)
	if err != nil {
		return nil, err
	}
	if !settlement.Status.Editable() {
		return nil, fmt.Errorf("%w: settlement is %s", apperrors.ErrSettlementLocked, settlement.Status)
	}
	return settlement, nil
}

// newSettlementNumber builds a human readable settlement number from the
// period end and a random suffix.
func newSettlementNumber(periodEnd time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("STL-%s-%s", periodEnd.Format("20060102"), suffix)
}
