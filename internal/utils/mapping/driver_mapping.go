package mapping

import (
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	"github.com/haulbooks/settlements_backend/internal/models"
)

// ToModelDriver converts a domain Driver to a model Driver
func ToModelDriver(d domain.Driver) models.Driver {
	return models.Driver{
		DriverID:    d.DriverID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		PayType:     models.PayType(d.PayType),
		PayRate:     d.PayRate,
		DriverType:  models.DriverType(d.DriverType),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDriver converts a model Driver to a domain Driver
func ToDomainDriver(m models.Driver) domain.Driver {
	return domain.Driver{
		DriverID:    m.DriverID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		PayType:     domain.PayType(m.PayType),
		PayRate:     m.PayRate,
		DriverType:  domain.DriverType(m.DriverType),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDriverSlice converts a slice of model Drivers to a slice of domain Drivers
func ToDomainDriverSlice(ms []models.Driver) []domain.Driver {
	ds := make([]domain.Driver, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDriver(m)
	}
	return ds
}
