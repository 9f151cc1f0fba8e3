package memory

import (
	"context"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
)

// LedgerRepository is the in-memory locking discipline. A per-account mutex
// stands in for the row lock; writes are staged in the unit and applied
// atomically on callback success, discarded on callback error.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a ledger repository over store.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

// WithAccountLock implements portsrepo.LedgerRepositoryFacade.
func (r *LedgerRepository) WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, unit portsrepo.AccountUnit) error) error {
	lock := r.store.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	r.store.mu.RLock()
	account, ok := r.store.accounts[accountID]
	r.store.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}

	unit := &memAccountUnit{store: r.store, account: account}
	if err := fn(ctx, unit); err != nil {
		return err
	}

	unit.commit()
	return nil
}

// memAccountUnit stages writes until commit. The per-account mutex held by
// WithAccountLock guarantees no concurrent unit touches the same account.
type memAccountUnit struct {
	store   *Store
	account domain.Account

	pendingAccount *domain.Account
	pendingSaves   []domain.Invoice
	pendingStatus  []domain.Invoice
	pendingArchive []domain.Invoice
	pendingHistory []domain.HistoryEntry
}

var _ portsrepo.AccountUnit = (*memAccountUnit)(nil)

func (u *memAccountUnit) Account() domain.Account {
	return u.account
}

func (u *memAccountUnit) UpdateAccount(ctx context.Context, account domain.Account) error {
	_ = ctx
	u.pendingAccount = &account
	return nil
}

func (u *memAccountUnit) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	_ = ctx
	u.store.mu.RLock()
	_, exists := u.store.invoices[invoice.InvoiceID]
	u.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, invoice.InvoiceID)
	}
	for _, staged := range u.pendingSaves {
		if staged.InvoiceID == invoice.InvoiceID {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, invoice.InvoiceID)
		}
	}
	u.pendingSaves = append(u.pendingSaves, invoice)
	return nil
}

func (u *memAccountUnit) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	_ = ctx
	// Staged writes are visible within the unit, like reads inside a
	// transaction.
	for i := len(u.pendingStatus) - 1; i >= 0; i-- {
		if u.pendingStatus[i].InvoiceID == invoiceID {
			inv := u.pendingStatus[i]
			return &inv, nil
		}
	}
	for i := len(u.pendingSaves) - 1; i >= 0; i-- {
		if u.pendingSaves[i].InvoiceID == invoiceID {
			inv := u.pendingSaves[i]
			return &inv, nil
		}
	}

	u.store.mu.RLock()
	inv, ok := u.store.invoices[invoiceID]
	u.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return &inv, nil
}

func (u *memAccountUnit) UpdateInvoiceStatus(ctx context.Context, invoice domain.Invoice) error {
	_ = ctx
	u.pendingStatus = append(u.pendingStatus, invoice)
	return nil
}

func (u *memAccountUnit) SaveArchivedInvoice(ctx context.Context, invoice domain.Invoice) error {
	_ = ctx
	u.pendingArchive = append(u.pendingArchive, invoice)
	return nil
}

func (u *memAccountUnit) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	_ = ctx
	u.pendingHistory = append(u.pendingHistory, entry)
	return nil
}

// commit applies every staged write under the store lock.
func (u *memAccountUnit) commit() {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if u.pendingAccount != nil {
		u.store.accounts[u.pendingAccount.AccountID] = *u.pendingAccount
	}
	for _, inv := range u.pendingSaves {
		u.store.invoices[inv.InvoiceID] = inv
	}
	for _, inv := range u.pendingStatus {
		u.store.invoices[inv.InvoiceID] = inv
	}
	for _, inv := range u.pendingArchive {
		u.store.archive[inv.InvoiceID] = inv
	}
	for _, entry := range u.pendingHistory {
		u.store.history[entry.AccountID] = append(u.store.history[entry.AccountID], entry)
	}
}
