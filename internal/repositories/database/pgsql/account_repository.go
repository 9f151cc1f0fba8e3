package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/gridbill/grid_billing_app/internal/models"
	"github.com/gridbill/grid_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, parent_account_id, meter_type, name, sector, box_number, serial_number,
	financial_category, is_active, current_balance, last_counter_reading, credit_balance, withdrawal_total,
	previous_credit_balance, previous_value_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var m models.Account
	var parentID sql.NullString
	var previousValueAt sql.NullTime
	err := row.Scan(
		&m.AccountID,
		&parentID,
		&m.MeterType,
		&m.Name,
		&m.Sector,
		&m.BoxNumber,
		&m.SerialNumber,
		&m.FinancialCategory,
		&m.IsActive,
		&m.CurrentBalance,
		&m.LastCounterRead,
		&m.CreditBalance,
		&m.WithdrawalTotal,
		&m.PreviousCredit,
		&previousValueAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if parentID.Valid {
		m.ParentAccountID = parentID.String
	}
	if previousValueAt.Valid {
		t := previousValueAt.Time
		m.PreviousValueAt = &t
	}
	return mapping.ToDomainAccount(m), nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// nullableID maps an empty string FK to NULL.
func nullableID(id string) sql.NullString {
	if id == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: id, Valid: true}
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID,
		nullableID(m.ParentAccountID),
		m.MeterType,
		m.Name,
		m.Sector,
		m.BoxNumber,
		m.SerialNumber,
		m.FinancialCategory,
		m.IsActive,
		m.CurrentBalance,
		m.LastCounterRead,
		m.CreditBalance,
		m.WithdrawalTotal,
		m.PreviousCredit,
		m.PreviousValueAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &acc, nil
}

// ListActiveAccounts retrieves all active accounts ordered by name,
// optionally restricted to a sector.
func (r *PgxAccountRepository) ListActiveAccounts(ctx context.Context, sector string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active = TRUE`
	args := []any{}
	if sector != "" {
		query += ` AND sector = $1`
		args = append(args, sector)
	}
	query += ` ORDER BY name;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query active accounts: %w", err)
	}
	return collectAccounts(rows)
}

// SearchAccounts returns active accounts whose name, serial number or box
// number contains term, narrowed by the given filters.
func (r *PgxAccountRepository) SearchAccounts(ctx context.Context, term string, filters portsrepo.AccountSearchFilters) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active = TRUE`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if term != "" {
		p := arg("%" + term + "%")
		query += fmt.Sprintf(` AND (name ILIKE %s OR serial_number ILIKE %s OR box_number ILIKE %s)`, p, p, p)
	}
	if filters.Sector != "" {
		query += ` AND sector = ` + arg(filters.Sector)
	}
	if filters.MeterType != "" {
		query += ` AND meter_type = ` + arg(string(filters.MeterType))
	}
	if filters.FinancialCategory != "" {
		query += ` AND financial_category = ` + arg(string(filters.FinancialCategory))
	}
	query += ` ORDER BY name;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	return collectAccounts(rows)
}

// ListRecentlyChanged returns accounts whose shadow previous-value timestamp
// falls at or after since.
func (r *PgxAccountRepository) ListRecentlyChanged(ctx context.Context, since time.Time) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE previous_value_at IS NOT NULL AND previous_value_at >= $1
		ORDER BY previous_value_at DESC;`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently changed accounts: %w", err)
	}
	return collectAccounts(rows)
}

// UpdateAccount updates an account's identity/metadata fields. Balance
// columns are deliberately not in the SET list; those change only through
// the ledger repository's locked unit of work.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, sector = $3, box_number = $4, serial_number = $5, financial_category = $6,
			is_active = $7, last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Sector,
		m.BoxNumber,
		m.SerialNumber,
		m.FinancialCategory,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateAccountParent moves an account under a new parent.
func (r *PgxAccountRepository) UpdateAccountParent(ctx context.Context, accountID string, newParentID string, actorID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET parent_account_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query, accountID, nullableID(newParentID), now, actorID)
	if err != nil {
		return fmt.Errorf("failed to update parent of account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.pool.Exec(ctx, query, accountID, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the account does not exist or it was already inactive.
		if _, findErr := r.FindAccountByID(ctx, accountID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}
	return nil
}

// DeleteAccount removes an account row. The service layer gates this behind
// an explicit authorization check and a children check.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
