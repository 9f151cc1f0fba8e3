package mapping

import (
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/models"
)

// ToModelInvoice converts a domain.Invoice to its DB representation.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:       d.InvoiceID,
		AccountID:       d.AccountID,
		KilowattAmount:  d.KilowattAmount,
		FreeKilowatt:    d.FreeKilowatt,
		PricePerKilo:    d.PricePerKilo,
		Discount:        d.Discount,
		TotalAmount:     d.TotalAmount,
		PreviousReading: d.PreviousReading,
		NewReading:      d.NewReading,
		Status:          models.InvoiceStatus(d.Status),
		AuditFields:     toModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a DB invoice row to its domain representation.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:       m.InvoiceID,
		AccountID:       m.AccountID,
		KilowattAmount:  m.KilowattAmount,
		FreeKilowatt:    m.FreeKilowatt,
		PricePerKilo:    m.PricePerKilo,
		Discount:        m.Discount,
		TotalAmount:     m.TotalAmount,
		PreviousReading: m.PreviousReading,
		NewReading:      m.NewReading,
		Status:          domain.InvoiceStatus(m.Status),
		AuditFields:     toDomainAuditFields(m.AuditFields),
	}
}
