package services

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/dto"
)

// InvoiceSvcFacade exposes the read side of invoices. Writes and status
// transitions go through the ledger facade.
type InvoiceSvcFacade interface {
	// GetInvoiceByID retrieves a single invoice.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesByAccount retrieves a page of an account's invoices,
	// newest first.
	ListInvoicesByAccount(ctx context.Context, accountID string, params dto.ListInvoicesParams) ([]domain.Invoice, error)
}
