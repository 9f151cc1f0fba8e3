package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrInternal, err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", apperrors.ErrInternal, err)
	}
	return nil
}

// Rollback rolls back a transaction.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("%w: failed to rollback transaction: %v", apperrors.ErrInternal, err)
	}
	return nil
}

// Postgres error codes relevant to the locking discipline.
const (
	pgCodeLockNotAvailable = "55P03" // raised on lock_timeout expiry under FOR UPDATE
	pgCodeUniqueViolation  = "23505"
)

// classifyLockErr maps a lock acquisition failure to the error taxonomy: a
// lock-wait timeout surfaces as ErrConcurrency rather than hanging or leaking
// driver details.
func classifyLockErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCodeLockNotAvailable {
		return fmt.Errorf("%w: account row lock wait exceeded", apperrors.ErrConcurrency)
	}
	return err
}
