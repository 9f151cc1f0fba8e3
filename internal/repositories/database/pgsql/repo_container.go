package pgsql

import (
	"time"

	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL-backed repositories.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: NewAccountRepository(dbPool),
		LedgerRepo:  NewLedgerRepository(dbPool, lockTimeout),
		InvoiceRepo: NewInvoiceRepository(dbPool),
		HistoryRepo: NewHistoryRepository(dbPool),
	}
}
