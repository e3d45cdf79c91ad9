package mapping

import (
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/models"
)

// ToModelLoad converts a domain Load to a model Load
func ToModelLoad(d domain.Load) models.Load {
	return models.Load{
		LoadID:             d.LoadID,
		CompanyID:          d.CompanyID,
		DriverID:           d.DriverID,
		LoadNumber:         d.LoadNumber,
		TotalMiles:         d.TotalMiles,
		LoadedMiles:        d.LoadedMiles,
		EmptyMiles:         d.EmptyMiles,
		Revenue:            d.Revenue,
		DriverPay:          d.DriverPay,
		Status:             models.LoadStatus(d.Status),
		ReadyForSettlement: d.ReadyForSettlement,
		DeliveredAt:        d.DeliveredAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoad converts a model Load to a domain Load
func ToDomainLoad(m models.Load) domain.Load {
	return domain.Load{
		LoadID:             m.LoadID,
		CompanyID:          m.CompanyID,
		DriverID:           m.DriverID,
		LoadNumber:         m.LoadNumber,
		TotalMiles:         m.TotalMiles,
		LoadedMiles:        m.LoadedMiles,
		EmptyMiles:         m.EmptyMiles,
		Revenue:            m.Revenue,
		DriverPay:          m.DriverPay,
		Status:             domain.LoadStatus(m.Status),
		ReadyForSettlement: m.ReadyForSettlement,
		DeliveredAt:        m.DeliveredAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoadSlice converts a slice of model Loads to a slice of domain Loads
func ToDomainLoadSlice(ms []models.Load) []domain.Load {
	ds := make([]domain.Load, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoad(m)
	}
	return ds
}
