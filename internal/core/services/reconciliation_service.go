package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

var (
	ErrBatchNotEditable   = errors.New("batch is not in an editable state")
	ErrBatchNotEdited     = errors.New("batch has no edits to commit")
	ErrRowNotInBatch      = errors.New("account is not part of the batch")
	ErrBatchEmpty         = errors.New("batch must contain at least one account")
	ErrDuplicateBatchRow  = errors.New("account appears more than once in the batch")
	ErrTerminalBatchError = errors.New("batch aborted by a terminal store error")
)

// reconciliationService drives the bulk reconciliation workflow. Each row
// commits through the ledger service as its own per-account lock unit — a
// batch is N independent commits, deliberately not one transaction.
type reconciliationService struct {
	accountRepo portsrepo.AccountReader
	ledgerSvc   portssvc.LedgerSvcFacade
	authSvc     portssvc.AuthorizationSvcFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(accountRepo portsrepo.AccountReader, ledgerSvc portssvc.LedgerSvcFacade, authSvc portssvc.AuthorizationSvcFacade) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{accountRepo: accountRepo, ledgerSvc: ledgerSvc, authSvc: authSvc}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// Load implements portssvc.ReconciliationSvcFacade. OldValue snapshots the
// credit balance at load time; deltas are computed against it at commit.
func (s *reconciliationService) Load(ctx context.Context, accountIDs []string) (*domain.Reconciliation, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrBatchEmpty)
	}

	seen := make(map[string]bool, len(accountIDs))
	rows := make([]domain.ReconciliationRow, 0, len(accountIDs))
	for _, id := range accountIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, ErrDuplicateBatchRow, id)
		}
		seen[id] = true

		account, err := s.accountRepo.FindAccountByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot account %s: %w", id, err)
		}
		rows = append(rows, domain.ReconciliationRow{
			AccountID: account.AccountID,
			OldValue:  account.CreditBalance,
			NewValue:  account.CreditBalance,
		})
	}

	return &domain.Reconciliation{
		BatchID: uuid.NewString(),
		State:   domain.ReconciliationLoaded,
		Rows:    rows,
	}, nil
}

// Edit implements portssvc.ReconciliationSvcFacade.
func (s *reconciliationService) Edit(batch *domain.Reconciliation, accountID string, newValue decimal.Decimal) error {
	if batch.State != domain.ReconciliationLoaded && batch.State != domain.ReconciliationEdited {
		return fmt.Errorf("%w: %s (state %s)", apperrors.ErrConflict, ErrBatchNotEditable, batch.State)
	}
	for i := range batch.Rows {
		if batch.Rows[i].AccountID == accountID {
			batch.Rows[i].NewValue = newValue
			batch.Rows[i].Edited = true
			batch.State = domain.ReconciliationEdited
			return nil
		}
	}
	return fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, ErrRowNotInBatch, accountID)
}

// Commit implements portssvc.ReconciliationSvcFacade. Decrease authorization
// is resolved exactly once per commit attempt; an unauthorized actor skips
// every negative-delta row while the rest still commit. Row-local failures
// are recorded and never abort sibling rows; only a terminal store error
// (wrapped apperrors.ErrInternal) aborts the batch.
func (s *reconciliationService) Commit(ctx context.Context, batch *domain.Reconciliation, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if batch.State != domain.ReconciliationEdited {
		return fmt.Errorf("%w: %s (state %s)", apperrors.ErrConflict, ErrBatchNotEdited, batch.State)
	}
	batch.State = domain.ReconciliationCommitting
	batch.Committed, batch.Skipped, batch.Failed = 0, 0, 0

	decreaseAuthorized := s.authSvc.Authorize(ctx, actorID, portssvc.CapabilityDecreaseCredit) == nil

	for i := range batch.Rows {
		row := &batch.Rows[i]
		if !row.Edited {
			continue
		}

		if row.Delta().IsNegative() && !decreaseAuthorized {
			row.Outcome = domain.RowSkippedUnauthorized
			batch.Skipped++
			continue
		}

		_, err := s.ledgerSvc.SetCreditBalance(ctx, row.AccountID, row.NewValue, row.OldValue, actorID)
		if err != nil {
			if errors.Is(err, apperrors.ErrInternal) {
				logger.Error("bulk commit aborted", "batch_id", batch.BatchID, "account_id", row.AccountID, "error", err)
				return fmt.Errorf("%w: %s", ErrTerminalBatchError, err.Error())
			}
			logger.Warn("bulk row failed", "batch_id", batch.BatchID, "account_id", row.AccountID, "error", err)
			row.Outcome = domain.RowFailedError
			row.Error = err.Error()
			batch.Failed++
			continue
		}
		row.Outcome = domain.RowCommitted
		batch.Committed++
	}

	if batch.Skipped == 0 && batch.Failed == 0 {
		batch.State = domain.ReconciliationCommitted
	} else {
		batch.State = domain.ReconciliationPartiallyCommitted
	}

	logger.Info("bulk reconciliation committed",
		"batch_id", batch.BatchID,
		"state", string(batch.State),
		"committed", batch.Committed,
		"skipped", batch.Skipped,
		"failed", batch.Failed,
	)
	return nil
}
