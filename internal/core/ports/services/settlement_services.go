package services

import (
	"context"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// SettlementReaderSvc defines read operations for settlement data
type SettlementReaderSvc interface {
	// GetSettlementByID retrieves a settlement with its line items and attached
	// advances.
	GetSettlementByID(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error)

	// ListSettlements retrieves a paginated list of settlements in a company.
	ListSettlements(ctx context.Context, companyID string, requestingUserID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error)

	// ListStatusEvents retrieves a settlement's status audit trail.
	ListStatusEvents(ctx context.Context, companyID, settlementID string, requestingUserID string) ([]domain.SettlementStatusEvent, error)
}

// SettlementGeneratorSvc defines the settlement generation operation
type SettlementGeneratorSvc interface {
	// GenerateSettlement builds a draft settlement for a driver and period:
	// gross pay from the period's settleable loads, template-generated line
	// items, and the derived totals. Generation fails when a live settlement
	// already exists for the same driver and period.
	GenerateSettlement(ctx context.Context, companyID string, req dto.GenerateSettlementRequest, creatorUserID string) (*domain.Settlement, error)

	// RecalculateSettlement re-runs pay calculation and template evaluation for
	// an editable settlement, replacing its generated line items. Manual line
	// items and attached advances are preserved.
	RecalculateSettlement(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error)
}

// SettlementLineItemSvc defines operations on a settlement's line items
type SettlementLineItemSvc interface {
	// AddLineItem appends a manual deduction or addition to an editable
	// settlement and recomputes the totals.
	AddLineItem(ctx context.Context, companyID, settlementID string, req dto.AddLineItemRequest, requestingUserID string) (*domain.Settlement, error)

	// RemoveLineItem deletes a line item from an editable settlement and
	// recomputes the totals.
	RemoveLineItem(ctx context.Context, companyID, settlementID, lineItemID string, requestingUserID string) (*domain.Settlement, error)
}

// SettlementAdvanceSvc defines operations linking advances to settlements
type SettlementAdvanceSvc interface {
	// AttachAdvance links an attachable advance to an editable settlement and
	// recomputes the totals.
	AttachAdvance(ctx context.Context, companyID, settlementID, advanceID string, requestingUserID string) (*domain.Settlement, error)

	// DetachAdvance unlinks an advance from an editable settlement and
	// recomputes the totals.
	DetachAdvance(ctx context.Context, companyID, settlementID, advanceID string, requestingUserID string) (*domain.Settlement, error)
}

// SettlementApprovalSvc defines the settlement approval workflow
type SettlementApprovalSvc interface {
	// SubmitForApproval moves a draft settlement to pending approval.
	SubmitForApproval(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error)

	// ApproveSettlement approves a pending settlement. A payment method is
	// required and is recorded on the settlement.
	ApproveSettlement(ctx context.Context, companyID, settlementID string, req dto.ApproveSettlementRequest, requestingUserID string) (*domain.Settlement, error)

	// RejectSettlement rejects a pending settlement with a mandatory note.
	RejectSettlement(ctx context.Context, companyID, settlementID string, req dto.RejectSettlementRequest, requestingUserID string) (*domain.Settlement, error)

	// MarkSettlementPaid moves an approved settlement to paid.
	MarkSettlementPaid(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error)

	// ReopenSettlement moves a rejected settlement back to draft for rework.
	ReopenSettlement(ctx context.Context, companyID, settlementID string, requestingUserID string) (*domain.Settlement, error)
}

// SettlementSvcFacade combines all settlement-related service interfaces
// This is a facade for clients that need access to all operations
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementGeneratorSvc
	SettlementLineItemSvc
	SettlementAdvanceSvc
	SettlementApprovalSvc
}
