package repositories

import (
	"context"
	"time"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettlementReader defines read operations for settlement data
type SettlementReader interface {
	// FindSettlementByID retrieves a specific settlement by its ID, including
	// its load linkage.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlementsByCompany retrieves a paginated list of settlements for a
	// company using token-based pagination, optionally filtered by driver and
	// status. It returns the settlements, a token for the next page, and an error.
	ListSettlementsByCompany(ctx context.Context, companyID string, driverID *string, status *domain.SettlementStatus, limit int, nextToken *string) ([]domain.Settlement, *string, error)

	// FindLineItemsBySettlementID retrieves all line items for a settlement.
	FindLineItemsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementLineItem, error)

	// FindStatusEventsBySettlementID retrieves a settlement's status audit trail,
	// oldest first.
	FindStatusEventsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementStatusEvent, error)

	// FindSettlementForPeriod looks up an existing settlement for the driver and
	// period among the given statuses. Returns nil when none exists.
	FindSettlementForPeriod(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time, statuses []domain.SettlementStatus) (*domain.Settlement, error)
}

// SettlementWriter defines write operations for settlement data. Every method
// runs as a single database transaction: the settlement row is locked, child
// rows are mutated, and the persisted totals are recomputed from the child
// rows before commit.
type SettlementWriter interface {
	// SaveSettlement persists a freshly generated settlement with its line
	// items, load linkage, template usage markers, and template goal progress.
	SaveSettlement(ctx context.Context, settlement domain.Settlement, lineItems []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) error

	// AddLineItem appends a manual line item and returns the recomputed settlement.
	AddLineItem(ctx context.Context, settlementID string, item domain.SettlementLineItem) (*domain.Settlement, error)

	// RemoveLineItem deletes a line item and returns the recomputed settlement.
	RemoveLineItem(ctx context.Context, settlementID, lineItemID, updatedBy string) (*domain.Settlement, error)

	// AttachAdvance links an advance to the settlement, records the matching
	// deduction line item, and returns the recomputed settlement.
	AttachAdvance(ctx context.Context, settlementID string, advance domain.DriverAdvance, item domain.SettlementLineItem) (*domain.Settlement, error)

	// DetachAdvance unlinks an advance, removes its line item, and returns the
	// recomputed settlement.
	DetachAdvance(ctx context.Context, settlementID, advanceID, updatedBy string) (*domain.Settlement, error)

	// ReplaceGeneratedLineItems swaps the settlement's template-generated line
	// items for a recalculated set, reverses and re-records template goal
	// progress, and returns the recomputed settlement. Manual line items and
	// advance linkage are preserved.
	ReplaceGeneratedLineItems(ctx context.Context, settlement domain.Settlement, generated []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) (*domain.Settlement, error)

	// UpdateSettlementStatus transitions the settlement's status and appends the
	// status event in the same transaction.
	UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, event domain.SettlementStatusEvent) error
}

// SettlementRepositoryFacade combines all settlement-related repository interfaces
// This is a facade for clients that need access to all operations
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}

// SettlementRepositoryWithTx extends SettlementRepositoryFacade with transaction capabilities
type SettlementRepositoryWithTx interface {
	SettlementRepositoryFacade
	TransactionManager
}
