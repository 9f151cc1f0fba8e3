package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
)

// InvoiceRepository is the in-memory invoice reader.
type InvoiceRepository struct {
	store *Store
}

// NewInvoiceRepository creates an invoice reader over store.
func NewInvoiceRepository(store *Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

var _ portsrepo.InvoiceReader = (*InvoiceRepository)(nil)

// FindInvoiceByID implements portsrepo.InvoiceReader.
func (r *InvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	_ = ctx
	r.store.mu.RLock()
	inv, ok := r.store.invoices[invoiceID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return &inv, nil
}

// ListInvoicesByAccount implements portsrepo.InvoiceReader.
func (r *InvoiceRepository) ListInvoicesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Invoice, error) {
	_ = ctx
	r.store.mu.RLock()
	invoices := make([]domain.Invoice, 0)
	for _, inv := range r.store.invoices {
		if inv.AccountID == accountID {
			invoices = append(invoices, inv)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
		}
		return invoices[i].InvoiceID > invoices[j].InvoiceID
	})

	if offset >= len(invoices) {
		return []domain.Invoice{}, nil
	}
	invoices = invoices[offset:]
	if limit > 0 && limit < len(invoices) {
		invoices = invoices[:limit]
	}
	return invoices, nil
}
