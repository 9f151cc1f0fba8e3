package repositories

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// HistoryReader defines read operations over the append-only audit log.
// Appends happen only through an AccountUnit; there is deliberately no
// update or delete surface.
type HistoryReader interface {
	// ListHistoryByAccount retrieves a page of an account's audit entries,
	// newest first.
	ListHistoryByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.HistoryEntry, error)

	// SummarizeHistory aggregates an account's audit trail on read: entry
	// count, totals per transaction type, first and last entry timestamps.
	SummarizeHistory(ctx context.Context, accountID string) (*domain.HistorySummary, error)
}
