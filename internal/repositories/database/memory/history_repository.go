package memory

import (
	"context"
	"sort"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// HistoryRepository is the in-memory audit log reader.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a history reader over store.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

var _ portsrepo.HistoryReader = (*HistoryRepository)(nil)

// ListHistoryByAccount implements portsrepo.HistoryReader.
func (r *HistoryRepository) ListHistoryByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.HistoryEntry, error) {
	_ = ctx
	r.store.mu.RLock()
	entries := make([]domain.HistoryEntry, len(r.store.history[accountID]))
	copy(entries, r.store.history[accountID])
	r.store.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].EntryID > entries[j].EntryID
	})

	if offset >= len(entries) {
		return []domain.HistoryEntry{}, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// SummarizeHistory implements portsrepo.HistoryReader.
func (r *HistoryRepository) SummarizeHistory(ctx context.Context, accountID string) (*domain.HistorySummary, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := &domain.HistorySummary{
		AccountID:       accountID,
		TotalsByTxnType: make(map[domain.TransactionType]decimal.Decimal),
	}
	for _, entry := range r.store.history[accountID] {
		summary.EntryCount++
		total := summary.TotalsByTxnType[entry.TransactionType]
		summary.TotalsByTxnType[entry.TransactionType] = total.Add(entry.Amount)

		t := entry.CreatedAt
		if summary.FirstEntryAt == nil || t.Before(*summary.FirstEntryAt) {
			first := t
			summary.FirstEntryAt = &first
		}
		if summary.LastEntryAt == nil || t.After(*summary.LastEntryAt) {
			last := t
			summary.LastEntryAt = &last
		}
	}
	return summary, nil
}
