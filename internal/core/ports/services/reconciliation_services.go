package services

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationSvcFacade drives the bulk reconciliation workflow through its
// state machine: Loaded → Edited → Committing → Committed or
// PartiallyCommitted. Rows commit sequentially, each as its own lock unit.
type ReconciliationSvcFacade interface {
	// Load snapshots the given accounts into a new batch in state Loaded.
	Load(ctx context.Context, accountIDs []string) (*domain.Reconciliation, error)

	// Edit sets the target value for one row and moves the batch to Edited.
	Edit(batch *domain.Reconciliation, accountID string, newValue decimal.Decimal) error

	// Commit applies every edited row. Decrease authorization is resolved
	// once per commit attempt; without it every negative-delta row is
	// skipped while non-negative rows still commit. Row errors never abort
	// sibling rows; a terminal store failure aborts the whole batch.
	Commit(ctx context.Context, batch *domain.Reconciliation, actorID string) error
}
