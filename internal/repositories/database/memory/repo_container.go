package memory

import (
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the in-memory repositories over one shared store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: NewAccountRepository(store),
		LedgerRepo:  NewLedgerRepository(store),
		InvoiceRepo: NewInvoiceRepository(store),
		HistoryRepo: NewHistoryRepository(store),
	}
}
