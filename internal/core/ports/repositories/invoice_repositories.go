package repositories

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// InvoiceReader defines read-only invoice lookups outside a ledger unit of
// work. Invoice writes happen only through an AccountUnit.
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice by its unique identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesByAccount retrieves a page of an account's invoices,
	// newest first.
	ListInvoicesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Invoice, error)
}
