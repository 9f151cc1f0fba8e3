package domain

import "github.com/shopspring/decimal"

// ReconciliationState tracks a bulk batch through its lifecycle.
type ReconciliationState string

const (
	ReconciliationLoaded             ReconciliationState = "LOADED"
	ReconciliationEdited             ReconciliationState = "EDITED"
	ReconciliationCommitting         ReconciliationState = "COMMITTING"
	ReconciliationCommitted          ReconciliationState = "COMMITTED"
	ReconciliationPartiallyCommitted ReconciliationState = "PARTIALLY_COMMITTED"
)

// RowOutcome is the per-row result of a bulk commit.
type RowOutcome string

const (
	RowCommitted           RowOutcome = "COMMITTED"
	RowSkippedUnauthorized RowOutcome = "SKIPPED_UNAUTHORIZED"
	RowFailedError         RowOutcome = "FAILED_ERROR"
)

// ReconciliationRow is one account edit in a bulk batch. OldValue is the
// snapshot credit balance at load time; NewValue the edited target.
type ReconciliationRow struct {
	AccountID string          `json:"accountID"`
	OldValue  decimal.Decimal `json:"oldValue"`
	NewValue  decimal.Decimal `json:"newValue"`
	Edited    bool            `json:"edited"`
	Outcome   RowOutcome      `json:"outcome,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Delta is the balance change the row would apply.
func (r ReconciliationRow) Delta() decimal.Decimal {
	return r.NewValue.Sub(r.OldValue)
}

// Reconciliation is a bulk batch of credit-balance edits. Each row commits as
// its own lock unit; the batch is never one transaction.
type Reconciliation struct {
	BatchID string              `json:"batchID"`
	State   ReconciliationState `json:"state"`
	Rows    []ReconciliationRow `json:"rows"`

	Committed int `json:"committed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
