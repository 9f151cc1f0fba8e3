package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionType names the ledger operation that produced a history entry.
type ActionType string

const (
	ActionInvoiceCreated   ActionType = "INVOICE_CREATED"
	ActionInvoiceCancelled ActionType = "INVOICE_CANCELLED"
	ActionInvoiceArchived  ActionType = "INVOICE_ARCHIVED"
	ActionCreditTopUp      ActionType = "CREDIT_TOPUP"
	ActionCashWithdrawal   ActionType = "CASH_WITHDRAWAL"
	ActionCounterUpdated   ActionType = "COUNTER_UPDATED"
	ActionCreditAdjusted   ActionType = "CREDIT_ADJUSTED"
)

// TransactionType classifies the monetary nature of a history entry.
type TransactionType string

const (
	TxnInvoice        TransactionType = "INVOICE"
	TxnWeeklyVisa     TransactionType = "WEEKLY_VISA"
	TxnCashWithdrawal TransactionType = "CASH_WITHDRAWAL"
	TxnCounterReading TransactionType = "COUNTER_READING"
	TxnReconciliation TransactionType = "RECONCILIATION"
)

// HistoryEntry is one append-only audit record. For a given account, ordering
// entries by creation time, BalanceAfter of entry k equals BalanceBefore of
// entry k+1; no balance change occurs without a corresponding entry.
type HistoryEntry struct {
	EntryID         string          `json:"entryID"`
	AccountID       string          `json:"accountID"`
	ActionType      ActionType      `json:"actionType"`
	TransactionType TransactionType `json:"transactionType"`
	OldValue        decimal.Decimal `json:"oldValue"`
	NewValue        decimal.Decimal `json:"newValue"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceBefore   decimal.Decimal `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	Notes           string          `json:"notes"`
	ActorID         string          `json:"actorID"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// HistorySummary aggregates an account's audit trail, computed on read.
type HistorySummary struct {
	AccountID       string                              `json:"accountID"`
	EntryCount      int64                               `json:"entryCount"`
	TotalsByTxnType map[TransactionType]decimal.Decimal `json:"totalsByTransactionType"`
	FirstEntryAt    *time.Time                          `json:"firstEntryAt"`
	LastEntryAt     *time.Time                          `json:"lastEntryAt"`
}
