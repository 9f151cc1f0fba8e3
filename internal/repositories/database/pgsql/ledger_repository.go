package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/gridbill/grid_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerRepository is the single locking discipline for balance mutations:
// one row-level exclusive lock on the account, held for the duration of the
// read-modify-write, with every staged write committing in the same DB
// transaction.
type PgxLedgerRepository struct {
	BaseRepository
	lockTimeout time.Duration
}

// NewLedgerRepository creates a new repository for ledger units of work.
// lockTimeout bounds the wait for a contended account row.
func NewLedgerRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.LedgerRepositoryFacade {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		lockTimeout:    lockTimeout,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// WithAccountLock implements portsrepo.LedgerRepositoryFacade.
func (r *PgxLedgerRepository) WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, unit portsrepo.AccountUnit) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	// lock_timeout is transaction-local; expiry raises 55P03 which we map to
	// ErrConcurrency instead of letting the caller hang.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("%w: failed to set lock timeout: %v", apperrors.ErrInternal, err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	account, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return classifyLockErr(err)
	}

	unit := &pgxAccountUnit{tx: tx, account: account}
	if err := fn(ctx, unit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// pgxAccountUnit executes staged writes directly on the surrounding
// transaction; rollback discards them all.
type pgxAccountUnit struct {
	tx      pgx.Tx
	account domain.Account
}

var _ portsrepo.AccountUnit = (*pgxAccountUnit)(nil)

func (u *pgxAccountUnit) Account() domain.Account {
	return u.account
}

func (u *pgxAccountUnit) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET current_balance = $2, last_counter_reading = $3, credit_balance = $4, withdrawal_total = $5,
			previous_credit_balance = $6, previous_value_at = $7, last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1;
	`
	cmdTag, err := u.tx.Exec(ctx, query,
		m.AccountID,
		m.CurrentBalance,
		m.LastCounterRead,
		m.CreditBalance,
		m.WithdrawalTotal,
		m.PreviousCredit,
		m.PreviousValueAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update balances of account %s: %v", apperrors.ErrInternal, m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s vanished during unit of work", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

func (u *pgxAccountUnit) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := u.tx.Exec(ctx, query,
		m.InvoiceID,
		m.AccountID,
		m.KilowattAmount,
		m.FreeKilowatt,
		m.PricePerKilo,
		m.Discount,
		m.TotalAmount,
		m.PreviousReading,
		m.NewReading,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert invoice %s: %v", apperrors.ErrInternal, m.InvoiceID, err)
	}
	return nil
}

func (u *pgxAccountUnit) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	inv, err := scanInvoice(u.tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

func (u *pgxAccountUnit) UpdateInvoiceStatus(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	cmdTag, err := u.tx.Exec(ctx, query, m.InvoiceID, m.Status, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("%w: failed to update status of invoice %s: %v", apperrors.ErrInternal, m.InvoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, m.InvoiceID)
	}
	return nil
}

func (u *pgxAccountUnit) SaveArchivedInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO invoice_archive (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := u.tx.Exec(ctx, query,
		m.InvoiceID,
		m.AccountID,
		m.KilowattAmount,
		m.FreeKilowatt,
		m.PricePerKilo,
		m.Discount,
		m.TotalAmount,
		m.PreviousReading,
		m.NewReading,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to archive invoice %s: %v", apperrors.ErrInternal, m.InvoiceID, err)
	}
	return nil
}

func (u *pgxAccountUnit) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	m := mapping.ToModelHistoryEntry(entry)
	query := `
		INSERT INTO history (entry_id, account_id, action_type, transaction_type, old_value, new_value,
			amount, balance_before, balance_after, notes, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := u.tx.Exec(ctx, query,
		m.EntryID,
		m.AccountID,
		m.ActionType,
		m.TransactionType,
		m.OldValue,
		m.NewValue,
		m.Amount,
		m.BalanceBefore,
		m.BalanceAfter,
		m.Notes,
		m.ActorID,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to append history entry %s: %v", apperrors.ErrInternal, m.EntryID, err)
	}
	return nil
}
