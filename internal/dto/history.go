package dto

import (
	"time"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListHistoryParams defines query parameters for the audit log listing.
type ListHistoryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// HistoryEntryResponse defines the data returned for one audit entry.
type HistoryEntryResponse struct {
	EntryID         string                 `json:"entryID"`
	AccountID       string                 `json:"accountID"`
	ActionType      domain.ActionType      `json:"actionType"`
	TransactionType domain.TransactionType `json:"transactionType"`
	OldValue        decimal.Decimal        `json:"oldValue"`
	NewValue        decimal.Decimal        `json:"newValue"`
	Amount          decimal.Decimal        `json:"amount"`
	BalanceBefore   decimal.Decimal        `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal        `json:"balanceAfter"`
	Notes           string                 `json:"notes"`
	ActorID         string                 `json:"actorID"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// ListHistoryResponse wraps a page of audit entries, newest first.
type ListHistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// HistorySummaryResponse defines the on-read aggregates for an account's trail.
type HistorySummaryResponse struct {
	AccountID       string                     `json:"accountID"`
	EntryCount      int64                      `json:"entryCount"`
	TotalsByTxnType map[string]decimal.Decimal `json:"totalsByTransactionType"`
	FirstEntryAt    *time.Time                 `json:"firstEntryAt,omitempty"`
	LastEntryAt     *time.Time                 `json:"lastEntryAt,omitempty"`
}

// ToHistoryEntryResponse converts a domain.HistoryEntry.
func ToHistoryEntryResponse(e *domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		EntryID:         e.EntryID,
		AccountID:       e.AccountID,
		ActionType:      e.ActionType,
		TransactionType: e.TransactionType,
		OldValue:        e.OldValue,
		NewValue:        e.NewValue,
		Amount:          e.Amount,
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		Notes:           e.Notes,
		ActorID:         e.ActorID,
		CreatedAt:       e.CreatedAt,
	}
}

// ToHistorySummaryResponse converts a domain.HistorySummary.
func ToHistorySummaryResponse(s *domain.HistorySummary) HistorySummaryResponse {
	totals := make(map[string]decimal.Decimal, len(s.TotalsByTxnType))
	for txnType, total := range s.TotalsByTxnType {
		totals[string(txnType)] = total
	}
	return HistorySummaryResponse{
		AccountID:       s.AccountID,
		EntryCount:      s.EntryCount,
		TotalsByTxnType: totals,
		FirstEntryAt:    s.FirstEntryAt,
		LastEntryAt:     s.LastEntryAt,
	}
}
