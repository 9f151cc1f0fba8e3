package domain

import (
	"github.com/shopspring/decimal"
)

// InvoiceStatus indicates the state of an invoice.
type InvoiceStatus string

const (
	InvoiceActive    InvoiceStatus = "ACTIVE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceArchived  InvoiceStatus = "ARCHIVED"
)

// Invoice is an immutable record of one energy-purchase transaction.
// TotalAmount and NewReading are derived at creation time and never recomputed.
type Invoice struct {
	InvoiceID       string          `json:"invoiceID"`
	AccountID       string          `json:"accountID"`
	KilowattAmount  decimal.Decimal `json:"kilowattAmount"`
	FreeKilowatt    decimal.Decimal `json:"freeKilowatt"`
	PricePerKilo    decimal.Decimal `json:"pricePerKilo"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"` // kilowatt_amount × price_per_kilo − discount
	PreviousReading decimal.Decimal `json:"previousReading"`
	NewReading      decimal.Decimal `json:"newReading"` // previous_reading + kilowatt_amount + free_kilowatt
	Status          InvoiceStatus   `json:"status"`
	AuditFields
}

// EnergyDelta is the balance and counter effect of the invoice.
func (inv Invoice) EnergyDelta() decimal.Decimal {
	return inv.KilowattAmount.Add(inv.FreeKilowatt)
}
