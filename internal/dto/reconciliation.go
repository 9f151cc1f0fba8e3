package dto

import (
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationRowRequest is one (old value, new value) pair from the
// bulk-edit source collaborator.
type ReconciliationRowRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	OldValue  decimal.Decimal `json:"oldValue"`
	NewValue  decimal.Decimal `json:"newValue"`
}

// CommitReconciliationRequest carries the edited rows of one batch.
type CommitReconciliationRequest struct {
	Rows []ReconciliationRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// ReconciliationRowResponse reports the outcome of one row.
type ReconciliationRowResponse struct {
	AccountID string            `json:"accountID"`
	OldValue  decimal.Decimal   `json:"oldValue"`
	NewValue  decimal.Decimal   `json:"newValue"`
	Delta     decimal.Decimal   `json:"delta"`
	Outcome   domain.RowOutcome `json:"outcome"`
	Error     string            `json:"error,omitempty"`
}

// CommitReconciliationResponse reports per-row outcomes and aggregate counts,
// so a caller can distinguish "some succeeded" from "none succeeded".
type CommitReconciliationResponse struct {
	BatchID   string                      `json:"batchID"`
	State     domain.ReconciliationState  `json:"state"`
	Rows      []ReconciliationRowResponse `json:"rows"`
	Committed int                         `json:"committed"`
	Skipped   int                         `json:"skipped"`
	Failed    int                         `json:"failed"`
}

// ToCommitReconciliationResponse converts a finished domain batch.
func ToCommitReconciliationResponse(batch *domain.Reconciliation) CommitReconciliationResponse {
	rows := make([]ReconciliationRowResponse, len(batch.Rows))
	for i, row := range batch.Rows {
		rows[i] = ReconciliationRowResponse{
			AccountID: row.AccountID,
			OldValue:  row.OldValue,
			NewValue:  row.NewValue,
			Delta:     row.Delta(),
			Outcome:   row.Outcome,
			Error:     row.Error,
		}
	}
	return CommitReconciliationResponse{
		BatchID:   batch.BatchID,
		State:     batch.State,
		Rows:      rows,
		Committed: batch.Committed,
		Skipped:   batch.Skipped,
		Failed:    batch.Failed,
	}
}
