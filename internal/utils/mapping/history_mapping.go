package mapping

import (
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/models"
)

// ToModelHistoryEntry converts a domain.HistoryEntry to its DB representation.
func ToModelHistoryEntry(d domain.HistoryEntry) models.HistoryEntry {
	return models.HistoryEntry{
		EntryID:         d.EntryID,
		AccountID:       d.AccountID,
		ActionType:      string(d.ActionType),
		TransactionType: string(d.TransactionType),
		OldValue:        d.OldValue,
		NewValue:        d.NewValue,
		Amount:          d.Amount,
		BalanceBefore:   d.BalanceBefore,
		BalanceAfter:    d.BalanceAfter,
		Notes:           d.Notes,
		ActorID:         d.ActorID,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainHistoryEntry converts a DB history row to its domain representation.
func ToDomainHistoryEntry(m models.HistoryEntry) domain.HistoryEntry {
	return domain.HistoryEntry{
		EntryID:         m.EntryID,
		AccountID:       m.AccountID,
		ActionType:      domain.ActionType(m.ActionType),
		TransactionType: domain.TransactionType(m.TransactionType),
		OldValue:        m.OldValue,
		NewValue:        m.NewValue,
		Amount:          m.Amount,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Notes:           m.Notes,
		ActorID:         m.ActorID,
		CreatedAt:       m.CreatedAt,
	}
}
