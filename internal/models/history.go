package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is the history table row. The table is insert-only; there is
// no update or delete path anywhere in the repository layer.
type HistoryEntry struct {
	EntryID         string          `db:"entry_id"`
	AccountID       string          `db:"account_id"`
	ActionType      string          `db:"action_type"`
	TransactionType string          `db:"transaction_type"`
	OldValue        decimal.Decimal `db:"old_value"`
	NewValue        decimal.Decimal `db:"new_value"`
	Amount          decimal.Decimal `db:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	Notes           string          `db:"notes"`
	ActorID         string          `db:"actor_id"`
	CreatedAt       time.Time       `db:"created_at"`
}
