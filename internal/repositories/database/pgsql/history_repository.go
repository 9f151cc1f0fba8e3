package pgsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/gridbill/grid_billing_app/internal/models"
	"github.com/gridbill/grid_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const historyColumns = `entry_id, account_id, action_type, transaction_type, old_value, new_value,
	amount, balance_before, balance_after, notes, actor_id, created_at`

// PgxHistoryRepository implements portsrepo.HistoryReader using pgx.
type PgxHistoryRepository struct {
	BaseRepository
}

// NewHistoryRepository creates a new PostgreSQL history reader.
func NewHistoryRepository(pool *pgxpool.Pool) portsrepo.HistoryReader {
	return &PgxHistoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.HistoryReader = (*PgxHistoryRepository)(nil)

func scanHistoryEntry(row rowScanner) (domain.HistoryEntry, error) {
	var m models.HistoryEntry
	err := row.Scan(
		&m.EntryID,
		&m.AccountID,
		&m.ActionType,
		&m.TransactionType,
		&m.OldValue,
		&m.NewValue,
		&m.Amount,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.Notes,
		&m.ActorID,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	return mapping.ToDomainHistoryEntry(m), nil
}

// ListHistoryByAccount implements portsrepo.HistoryReader.
func (r *PgxHistoryRepository) ListHistoryByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM history
		WHERE account_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list history of account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

// SummarizeHistory implements portsrepo.HistoryReader. The summary is
// computed in SQL so it never loads the full trail into memory.
func (r *PgxHistoryRepository) SummarizeHistory(ctx context.Context, accountID string) (*domain.HistorySummary, error) {
	summary := &domain.HistorySummary{
		AccountID:       accountID,
		TotalsByTxnType: make(map[domain.TransactionType]decimal.Decimal),
	}

	var firstAt, lastAt sql.NullTime
	boundsQuery := `
		SELECT COUNT(*), MIN(created_at), MAX(created_at)
		FROM history
		WHERE account_id = $1;
	`
	if err := r.Pool.QueryRow(ctx, boundsQuery, accountID).Scan(&summary.EntryCount, &firstAt, &lastAt); err != nil {
		return nil, fmt.Errorf("failed to summarize history of account %s: %w", accountID, err)
	}
	if firstAt.Valid {
		t := firstAt.Time.UTC()
		summary.FirstEntryAt = &t
	}
	if lastAt.Valid {
		t := lastAt.Time.UTC()
		summary.LastEntryAt = &t
	}

	totalsQuery := `
		SELECT transaction_type, COALESCE(SUM(amount), 0)
		FROM history
		WHERE account_id = $1
		GROUP BY transaction_type;
	`
	rows, err := r.Pool.Query(ctx, totalsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to total history of account %s: %w", accountID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var txnType string
		var total decimal.Decimal
		if err := rows.Scan(&txnType, &total); err != nil {
			return nil, fmt.Errorf("failed to scan history total row: %w", err)
		}
		summary.TotalsByTxnType[domain.TransactionType(txnType)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history total rows: %w", err)
	}
	return summary, nil
}
