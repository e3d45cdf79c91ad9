package domain_test

import (
	"testing"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSettlement_Recompute(t *testing.T) {
	tests := []struct {
		name               string
		grossPay           decimal.Decimal
		lineItems          []domain.SettlementLineItem
		advances           []domain.DriverAdvance
		wantNetPay         decimal.Decimal
		wantCarriedForward decimal.Decimal
		wantDeductions     decimal.Decimal
		wantAdditions      decimal.Decimal
	}{
		{
			name:               "no adjustments",
			grossPay:           decimal.NewFromFloat(1500.00),
			wantNetPay:         decimal.NewFromFloat(1500.00),
			wantCarriedForward: decimal.Zero,
			wantDeductions:     decimal.Zero,
			wantAdditions:      decimal.Zero,
		},
		{
			name:     "deductions and additions",
			grossPay: decimal.NewFromFloat(2000.00),
			lineItems: []domain.SettlementLineItem{
				{Kind: domain.KindInsurance, Category: domain.CategoryDeduction, Amount: decimal.NewFromFloat(150.00)},
				{Kind: domain.KindEscrow, Category: domain.CategoryDeduction, Amount: decimal.NewFromFloat(100.00)},
				{Kind: domain.KindBonus, Category: domain.CategoryAddition, Amount: decimal.NewFromFloat(50.00)},
			},
			wantNetPay:         decimal.NewFromFloat(1800.00),
			wantCarriedForward: decimal.Zero,
			wantDeductions:     decimal.NewFromFloat(250.00),
			wantAdditions:      decimal.NewFromFloat(50.00),
		},
		{
			name:     "advances offset net pay",
			grossPay: decimal.NewFromFloat(1000.00),
			advances: []domain.DriverAdvance{
				{Amount: decimal.NewFromFloat(300.00)},
				{Amount: decimal.NewFromFloat(200.00)},
			},
			wantNetPay:         decimal.NewFromFloat(500.00),
			wantCarriedForward: decimal.Zero,
			wantDeductions:     decimal.Zero,
			wantAdditions:      decimal.Zero,
		},
		{
			name:     "negative net floors at zero with carry forward",
			grossPay: decimal.NewFromFloat(400.00),
			lineItems: []domain.SettlementLineItem{
				{Kind: domain.KindTruckPayment, Category: domain.CategoryDeduction, Amount: decimal.NewFromFloat(600.00)},
			},
			advances: []domain.DriverAdvance{
				{Amount: decimal.NewFromFloat(100.00)},
			},
			wantNetPay:         decimal.Zero,
			wantCarriedForward: decimal.NewFromFloat(300.00),
			wantDeductions:     decimal.NewFromFloat(600.00),
			wantAdditions:      decimal.Zero,
		},
		{
			name:     "exactly zero net",
			grossPay: decimal.NewFromFloat(500.00),
			lineItems: []domain.SettlementLineItem{
				{Kind: domain.KindOther, Category: domain.CategoryDeduction, Amount: decimal.NewFromFloat(500.00)},
			},
			wantNetPay:         decimal.Zero,
			wantCarriedForward: decimal.Zero,
			wantDeductions:     decimal.NewFromFloat(500.00),
			wantAdditions:      decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.Settlement{GrossPay: tt.grossPay}
			s.Recompute(tt.lineItems, tt.advances)

			assert.True(t, tt.wantNetPay.Equal(s.NetPay), "net pay: want %s got %s", tt.wantNetPay, s.NetPay)
			assert.True(t, tt.wantCarriedForward.Equal(s.CarriedForward), "carried forward: want %s got %s", tt.wantCarriedForward, s.CarriedForward)
			assert.True(t, tt.wantDeductions.Equal(s.TotalDeductions))
			assert.True(t, tt.wantAdditions.Equal(s.TotalAdditions))
		})
	}
}

func TestSettlement_RecomputeIsIdempotent(t *testing.T) {
	lineItems := []domain.SettlementLineItem{
		{Kind: domain.KindInsurance, Category: domain.CategoryDeduction, Amount: decimal.NewFromFloat(175.50)},
		{Kind: domain.KindBonus, Category: domain.CategoryAddition, Amount: decimal.NewFromFloat(25.00)},
	}
	advances := []domain.DriverAdvance{{Amount: decimal.NewFromFloat(200.00)}}

	s := domain.Settlement{GrossPay: decimal.NewFromFloat(1234.56)}
	s.Recompute(lineItems, advances)
	first := s.NetPay
	s.Recompute(lineItems, advances)

	assert.True(t, first.Equal(s.NetPay))
	assert.True(t, decimal.NewFromFloat(884.06).Equal(s.NetPay))
}

func TestSettlementStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.SettlementStatus
		to   domain.SettlementStatus
		want bool
	}{
		{"draft to pending approval", domain.SettlementDraft, domain.SettlementPendingApproval, true},
		{"draft directly to approved", domain.SettlementDraft, domain.SettlementApproved, false},
		{"pending to approved", domain.SettlementPendingApproval, domain.SettlementApproved, true},
		{"pending to rejected", domain.SettlementPendingApproval, domain.SettlementRejected, true},
		{"pending back to draft", domain.SettlementPendingApproval, domain.SettlementDraft, false},
		{"approved to paid", domain.SettlementApproved, domain.SettlementPaid, true},
		{"approved to rejected", domain.SettlementApproved, domain.SettlementRejected, false},
		{"rejected reopens to draft", domain.SettlementRejected, domain.SettlementDraft, true},
		{"rejected to approved", domain.SettlementRejected, domain.SettlementApproved, false},
		{"paid is terminal", domain.SettlementPaid, domain.SettlementDraft, false},
		{"no self transition", domain.SettlementDraft, domain.SettlementDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestSettlementStatus_Editable(t *testing.T) {
	assert.True(t, domain.SettlementDraft.Editable())
	assert.True(t, domain.SettlementPendingApproval.Editable())
	assert.False(t, domain.SettlementApproved.Editable())
	assert.False(t, domain.SettlementRejected.Editable())
	assert.False(t, domain.SettlementPaid.Editable())
}
