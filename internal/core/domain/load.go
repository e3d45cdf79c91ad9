package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoadStatus indicates where a load sits in the billing pipeline.
type LoadStatus string

const (
	LoadDelivered LoadStatus = "DELIVERED"
	LoadInvoiced  LoadStatus = "INVOICED"
	LoadPaid      LoadStatus = "PAID"
	LoadInTransit LoadStatus = "IN_TRANSIT"
	LoadCancelled LoadStatus = "CANCELLED"
)

// settleableStatuses are the load states eligible for settlement generation.
var settleableStatuses = map[LoadStatus]bool{
	LoadDelivered: true,
	LoadInvoiced:  true,
	LoadPaid:      true,
}

// Load holds the pay-relevant slice of a load record.
type Load struct {
	LoadID      string          `json:"loadID"`    // Primary Key (e.g., UUID)
	CompanyID   string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	DriverID    string          `json:"driverID"`  // FK -> drivers.driver_id
	LoadNumber  string          `json:"loadNumber"`
	TotalMiles  decimal.Decimal `json:"totalMiles"`  // Never negative; zero means unknown
	LoadedMiles decimal.Decimal `json:"loadedMiles"` // Fallback when TotalMiles is zero
	EmptyMiles  decimal.Decimal `json:"emptyMiles"`
	Revenue     decimal.Decimal `json:"revenue"` // Decimal >= 0

	// DriverPay is a manual per-load pay override. When set and positive it is
	// used verbatim instead of the pay policy.
	DriverPay *decimal.Decimal `json:"driverPay,omitempty"`

	Status             LoadStatus `json:"status"`
	ReadyForSettlement bool       `json:"readyForSettlement"`
	DeliveredAt        *time.Time `json:"deliveredAt,omitempty"`
	AuditFields
}

// Settleable reports whether the load may contribute to a settlement.
// Invoiced and paid loads are always settleable regardless of the ready flag,
// since imported loads may never pass through the completion flow.
func (l Load) Settleable() bool {
	if !settleableStatuses[l.Status] {
		return false
	}
	return l.ReadyForSettlement || l.Status == LoadInvoiced || l.Status == LoadPaid
}

// Miles resolves the miles figure used for pay calculation: TotalMiles when
// positive, otherwise LoadedMiles + EmptyMiles.
func (l Load) Miles() decimal.Decimal {
	if l.TotalMiles.IsPositive() {
		return l.TotalMiles
	}
	return l.LoadedMiles.Add(l.EmptyMiles)
}
