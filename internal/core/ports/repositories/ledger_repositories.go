package repositories

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// AccountUnit is the unit of work handed to a WithAccountLock callback. All
// writes staged through it commit together or not at all; a callback error
// discards every pending write.
type AccountUnit interface {
	// Account returns the locked account snapshot read at lock acquisition.
	Account() domain.Account

	// UpdateAccount stages the full balance/counter state of the locked account.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SaveInvoice stages a new invoice row.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// FindInvoiceByID reads an invoice belonging to the locked account.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// UpdateInvoiceStatus stages a status transition on an invoice.
	UpdateInvoiceStatus(ctx context.Context, invoice domain.Invoice) error

	// SaveArchivedInvoice stages a copy of an invoice into the archive table.
	SaveArchivedInvoice(ctx context.Context, invoice domain.Invoice) error

	// AppendHistory stages an audit entry.
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
}

// LedgerRepositoryFacade is the single locking discipline shared by every
// balance-mutating path. WithAccountLock serializes callers on the same
// account id while callers on distinct accounts proceed in parallel. A lock
// wait that exceeds the store's timeout returns apperrors.ErrConcurrency;
// a missing account returns apperrors.ErrNotFound.
type LedgerRepositoryFacade interface {
	WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, unit AccountUnit) error) error
}
