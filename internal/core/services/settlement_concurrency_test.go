package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portsrepo "github.com/haulbooks/settlements_backend/internal/core/ports/repositories"
	"github.com/haulbooks/settlements_backend/internal/core/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// serializedSettlementRepo is an in-memory settlement store whose write
// methods serialize on a mutex, re-check the settlement status under that
// lock, and recompute totals from the stored child rows before returning,
// mirroring how the pgsql repository locks the settlement row FOR UPDATE
// inside a transaction.
type serializedSettlementRepo struct {
	mu         sync.Mutex
	settlement domain.Settlement
	lineItems  []domain.SettlementLineItem
	advances   []domain.DriverAdvance

	// afterFind, when set, runs after each FindSettlementByID so a test can
	// interleave a status change between the service's read and its write.
	afterFind func()
}

var _ portsrepo.SettlementRepositoryFacade = (*serializedSettlementRepo)(nil)

func (r *serializedSettlementRepo) snapshot() *domain.Settlement {
	s := r.settlement
	s.LineItems = append([]domain.SettlementLineItem(nil), r.lineItems...)
	return &s
}

func (r *serializedSettlementRepo) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	r.mu.Lock()
	if settlementID != r.settlement.SettlementID {
		r.mu.Unlock()
		return nil, apperrors.ErrNotFound
	}
	s := r.snapshot()
	r.mu.Unlock()
	if r.afterFind != nil {
		r.afterFind()
	}
	return s, nil
}

// lockedEditable is the fake's counterpart of the pgsql repository's
// locked-row status check. Callers must hold the mutex.
func (r *serializedSettlementRepo) lockedEditable(settlementID string) error {
	if settlementID != r.settlement.SettlementID {
		return apperrors.ErrNotFound
	}
	if !r.settlement.Status.Editable() {
		return fmt.Errorf("settlement %s is %s: %w", settlementID, r.settlement.Status, apperrors.ErrSettlementLocked)
	}
	return nil
}

func (r *serializedSettlementRepo) ListSettlementsByCompany(ctx context.Context, companyID string, driverID *string, status *domain.SettlementStatus, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	return nil, nil, fmt.Errorf("not implemented")
}

func (r *serializedSettlementRepo) FindLineItemsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SettlementLineItem(nil), r.lineItems...), nil
}

func (r *serializedSettlementRepo) FindStatusEventsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementStatusEvent, error) {
	return nil, nil
}

func (r *serializedSettlementRepo) FindSettlementForPeriod(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time, statuses []domain.SettlementStatus) (*domain.Settlement, error) {
	return nil, nil
}

func (r *serializedSettlementRepo) SaveSettlement(ctx context.Context, settlement domain.Settlement, lineItems []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) error {
	return fmt.Errorf("not implemented")
}

func (r *serializedSettlementRepo) AddLineItem(ctx context.Context, settlementID string, item domain.SettlementLineItem) (*domain.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lockedEditable(settlementID); err != nil {
		return nil, err
	}
	r.lineItems = append(r.lineItems, item)
	r.settlement.Recompute(r.lineItems, r.advances)
	return r.snapshot(), nil
}

func (r *serializedSettlementRepo) RemoveLineItem(ctx context.Context, settlementID, lineItemID, updatedBy string) (*domain.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lockedEditable(settlementID); err != nil {
		return nil, err
	}
	kept := r.lineItems[:0]
	found := false
	for _, li := range r.lineItems {
		if li.LineItemID == lineItemID {
			found = true
			continue
		}
		kept = append(kept, li)
	}
	if !found {
		return nil, fmt.Errorf("line item not found: %w", apperrors.ErrNotFound)
	}
	r.lineItems = kept
	r.settlement.Recompute(r.lineItems, r.advances)
	return r.snapshot(), nil
}

func (r *serializedSettlementRepo) AttachAdvance(ctx context.Context, settlementID string, advance domain.DriverAdvance, item domain.SettlementLineItem) (*domain.Settlement, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *serializedSettlementRepo) DetachAdvance(ctx context.Context, settlementID, advanceID, updatedBy string) (*domain.Settlement, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *serializedSettlementRepo) ReplaceGeneratedLineItems(ctx context.Context, settlement domain.Settlement, generated []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) (*domain.Settlement, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *serializedSettlementRepo) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, event domain.SettlementStatusEvent) error {
	return fmt.Errorf("not implemented")
}

// TestConcurrentAddLineItem_NoLostUpdate runs many AddLineItem calls in
// parallel against a repository that recomputes totals under a row-level
// lock. Every item must survive and the persisted totals must equal the sum
// of all items, no matter how the calls interleave.
func TestConcurrentAddLineItem_NoLostUpdate(t *testing.T) {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	settlementID := uuid.NewString()

	repo := &serializedSettlementRepo{
		settlement: domain.Settlement{
			SettlementID:     settlementID,
			CompanyID:        companyID,
			DriverID:         uuid.NewString(),
			SettlementNumber: "STL-20260815-0001",
			GrossPay:         dec("1000"),
			NetPay:           dec("1000"),
			Status:           domain.SettlementDraft,
		},
	}

	authorizer := new(MockCompanyAuthorizer)
	authorizer.On("AuthorizeUserAction", mock.Anything, userID, companyID, domain.RoleMember).Return(nil)

	svc := services.NewSettlementService(
		repo,
		new(MockLoadRepository),
		new(MockDriverRepository),
		new(MockDeductionRuleRepository),
		new(MockAdvanceRepository),
		authorizer,
	)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := dto.AddLineItemRequest{
				Kind:        domain.KindBonus,
				Description: fmt.Sprintf("bonus %d", n),
				Amount:      dec("10"),
			}
			_, errs[n] = svc.AddLineItem(context.Background(), companyID, settlementID, req, userID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	final, err := repo.FindSettlementByID(context.Background(), settlementID)
	require.NoError(t, err)
	require.Len(t, final.LineItems, workers)
	require.True(t, final.TotalAdditions.Equal(dec("160")),
		"total additions %s should equal the sum of all added items", final.TotalAdditions)
	require.True(t, final.NetPay.Equal(dec("1160")),
		"net pay %s should reflect every addition", final.NetPay)
}

// TestAddLineItem_ApprovalRacesMutation approves the settlement after the
// service's editable read but before the repository write. The repository's
// locked-row status check must refuse the insert and leave the approved
// totals untouched.
func TestAddLineItem_ApprovalRacesMutation(t *testing.T) {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	settlementID := uuid.NewString()

	repo := &serializedSettlementRepo{
		settlement: domain.Settlement{
			SettlementID:     settlementID,
			CompanyID:        companyID,
			DriverID:         uuid.NewString(),
			SettlementNumber: "STL-20260815-0002",
			GrossPay:         dec("2000"),
			NetPay:           dec("2000"),
			Status:           domain.SettlementDraft,
		},
	}
	repo.afterFind = func() {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		repo.settlement.Status = domain.SettlementApproved
	}

	authorizer := new(MockCompanyAuthorizer)
	authorizer.On("AuthorizeUserAction", mock.Anything, userID, companyID, domain.RoleMember).Return(nil)

	svc := services.NewSettlementService(
		repo,
		new(MockLoadRepository),
		new(MockDriverRepository),
		new(MockDeductionRuleRepository),
		new(MockAdvanceRepository),
		authorizer,
	)

	req := dto.AddLineItemRequest{
		Kind:        domain.KindBonus,
		Description: "quarter-end bonus",
		Amount:      dec("500"),
	}
	_, err := svc.AddLineItem(context.Background(), companyID, settlementID, req, userID)
	require.ErrorIs(t, err, apperrors.ErrSettlementLocked)

	repo.afterFind = nil
	final, err := repo.FindSettlementByID(context.Background(), settlementID)
	require.NoError(t, err)
	require.Equal(t, domain.SettlementApproved, final.Status)
	require.Empty(t, final.LineItems)
	require.True(t, final.NetPay.Equal(dec("2000")),
		"net pay %s must not change after approval", final.NetPay)
}

// TestRemoveLineItem_RecomputesTotals deletes a manual deduction and expects
// net pay to recover by the deducted amount.
func TestRemoveLineItem_RecomputesTotals(t *testing.T) {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	settlementID := uuid.NewString()
	lineItemID := uuid.NewString()

	repo := &serializedSettlementRepo{
		settlement: domain.Settlement{
			SettlementID:     settlementID,
			CompanyID:        companyID,
			DriverID:         uuid.NewString(),
			SettlementNumber: "STL-20260815-0003",
			GrossPay:         dec("2100"),
			Status:           domain.SettlementDraft,
		},
		lineItems: []domain.SettlementLineItem{{
			LineItemID:   lineItemID,
			SettlementID: settlementID,
			Kind:         domain.KindOther,
			Category:     domain.CategoryDeduction,
			Description:  "trailer wash",
			Amount:       dec("300"),
		}},
	}
	repo.settlement.Recompute(repo.lineItems, repo.advances)
	require.True(t, repo.settlement.NetPay.Equal(dec("1800")))

	authorizer := new(MockCompanyAuthorizer)
	authorizer.On("AuthorizeUserAction", mock.Anything, userID, companyID, domain.RoleMember).Return(nil)

	svc := services.NewSettlementService(
		repo,
		new(MockLoadRepository),
		new(MockDriverRepository),
		new(MockDeductionRuleRepository),
		new(MockAdvanceRepository),
		authorizer,
	)

	updated, err := svc.RemoveLineItem(context.Background(), companyID, settlementID, lineItemID, userID)
	require.NoError(t, err)
	require.Empty(t, updated.LineItems)
	require.True(t, updated.TotalDeductions.IsZero(),
		"total deductions %s should be zero after removal", updated.TotalDeductions)
	require.True(t, updated.NetPay.Equal(dec("2100")),
		"net pay %s should recover the removed deduction", updated.NetPay)
}
