package models

import (
	"github.com/shopspring/decimal"
)

// InvoiceStatus mirrors domain.InvoiceStatus at the storage layer.
type InvoiceStatus string

const (
	InvoiceActive    InvoiceStatus = "ACTIVE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceArchived  InvoiceStatus = "ARCHIVED"
)

// Invoice is the invoices table row.
type Invoice struct {
	InvoiceID       string          `db:"invoice_id"`
	AccountID       string          `db:"account_id"`
	KilowattAmount  decimal.Decimal `db:"kilowatt_amount"`
	FreeKilowatt    decimal.Decimal `db:"free_kilowatt"`
	PricePerKilo    decimal.Decimal `db:"price_per_kilo"`
	Discount        decimal.Decimal `db:"discount"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PreviousReading decimal.Decimal `db:"previous_reading"`
	NewReading      decimal.Decimal `db:"new_reading"`
	Status          InvoiceStatus   `db:"status"`
	AuditFields
}
