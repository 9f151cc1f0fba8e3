package services

import (
	"context"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
)

// invoiceService exposes the read side of invoices. Writes and status
// transitions happen only inside ledger units of work.
type invoiceService struct {
	invoiceRepo repositories.InvoiceReader
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo repositories.InvoiceReader) portssvc.InvoiceSvcFacade {
	return &invoiceService{invoiceRepo: invoiceRepo}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// GetInvoiceByID implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoicesByAccount implements portssvc.InvoiceSvcFacade.
func (s *invoiceService) ListInvoicesByAccount(ctx context.Context, accountID string, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	invoices, err := s.invoiceRepo.ListInvoicesByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for account %s: %w", accountID, err)
	}
	return invoices, nil
}
