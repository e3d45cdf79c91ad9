package domain_test

import (
	"testing"

	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAdvanceStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.AdvanceStatus
		to   domain.AdvanceStatus
		want bool
	}{
		{"pending to approved", domain.AdvancePending, domain.AdvanceApproved, true},
		{"pending to rejected", domain.AdvancePending, domain.AdvanceRejected, true},
		{"pending directly to paid", domain.AdvancePending, domain.AdvancePaid, false},
		{"approved to paid", domain.AdvanceApproved, domain.AdvancePaid, true},
		{"approved to rejected", domain.AdvanceApproved, domain.AdvanceRejected, false},
		{"rejected is terminal", domain.AdvanceRejected, domain.AdvanceApproved, false},
		{"paid is terminal", domain.AdvancePaid, domain.AdvancePending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestAdvanceStatus_Attachable(t *testing.T) {
	assert.True(t, domain.AdvancePending.Attachable())
	assert.True(t, domain.AdvanceApproved.Attachable())
	assert.False(t, domain.AdvanceRejected.Attachable())
	assert.False(t, domain.AdvancePaid.Attachable())
}

func TestLoad_Miles(t *testing.T) {
	tests := []struct {
		name string
		load domain.Load
		want decimal.Decimal
	}{
		{
			name: "total miles when positive",
			load: domain.Load{
				TotalMiles:  decimal.NewFromFloat(550),
				LoadedMiles: decimal.NewFromFloat(100),
				EmptyMiles:  decimal.NewFromFloat(50),
			},
			want: decimal.NewFromFloat(550),
		},
		{
			name: "falls back to loaded plus empty",
			load: domain.Load{
				LoadedMiles: decimal.NewFromFloat(480),
				EmptyMiles:  decimal.NewFromFloat(70),
			},
			want: decimal.NewFromFloat(550),
		},
		{
			name: "all zero",
			load: domain.Load{},
			want: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.load.Miles()))
		})
	}
}

func TestLoad_Settleable(t *testing.T) {
	tests := []struct {
		name string
		load domain.Load
		want bool
	}{
		{"delivered and ready", domain.Load{Status: domain.LoadDelivered, ReadyForSettlement: true}, true},
		{"delivered but not ready", domain.Load{Status: domain.LoadDelivered}, false},
		{"invoiced without ready flag", domain.Load{Status: domain.LoadInvoiced}, true},
		{"paid without ready flag", domain.Load{Status: domain.LoadPaid}, true},
		{"in transit even when marked ready", domain.Load{Status: domain.LoadInTransit, ReadyForSettlement: true}, false},
		{"cancelled", domain.Load{Status: domain.LoadCancelled, ReadyForSettlement: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.load.Settleable())
		})
	}
}
