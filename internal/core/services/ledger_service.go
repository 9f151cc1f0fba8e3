package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// ledgerService is the transaction processor. Every operation runs as one
// WithAccountLock unit of work: read the locked account, validate, compute,
// stage account + invoice + history writes, commit. A failure anywhere
// discards all pending writes, so a balance change without its audit entry is
// never observable.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// requireActive rejects operations against inactive accounts. Missing and
// inactive accounts are indistinguishable to callers.
func requireActive(acct domain.Account) error {
	if !acct.IsActive {
		return fmt.Errorf("%w: account %s is inactive", apperrors.ErrNotFound, acct.AccountID)
	}
	return nil
}

func balancesOf(acct domain.Account, before decimal.Decimal) dto.BalanceMutationResponse {
	return dto.BalanceMutationResponse{
		AccountID:       acct.AccountID,
		BalanceBefore:   before,
		BalanceAfter:    acct.CurrentBalance,
		CreditBalance:   acct.CreditBalance,
		WithdrawalTotal: acct.WithdrawalTotal,
	}
}

// ApplyInvoice implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ApplyInvoice(ctx context.Context, accountID string, req dto.ApplyInvoiceRequest, actorID string) (*dto.InvoiceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.KilowattAmount.IsNegative() {
		return nil, fmt.Errorf("%w: kilowatt amount must not be negative", apperrors.ErrValidation)
	}
	if req.FreeKilowatt.IsNegative() {
		return nil, fmt.Errorf("%w: free kilowatt must not be negative", apperrors.ErrValidation)
	}
	if !req.PricePerKilo.IsPositive() {
		return nil, fmt.Errorf("%w: price per kilowatt must be positive", apperrors.ErrValidation)
	}
	if req.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount must not be negative", apperrors.ErrValidation)
	}

	var resp dto.InvoiceResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		now := time.Now().UTC()
		energy := req.KilowattAmount.Add(req.FreeKilowatt)
		previousReading := acct.LastCounterReading
		newReading := previousReading.Add(energy)
		totalAmount := req.KilowattAmount.Mul(req.PricePerKilo).Sub(req.Discount)

		invoice := domain.Invoice{
			InvoiceID:       uuid.NewString(),
			AccountID:       acct.AccountID,
			KilowattAmount:  req.KilowattAmount,
			FreeKilowatt:    req.FreeKilowatt,
			PricePerKilo:    req.PricePerKilo,
			Discount:        req.Discount,
			TotalAmount:     totalAmount,
			PreviousReading: previousReading,
			NewReading:      newReading,
			Status:          domain.InvoiceActive,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}

		balanceBefore := acct.CurrentBalance
		acct.CurrentBalance = balanceBefore.Add(energy)
		acct.LastCounterReading = newReading
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		if err := unit.SaveInvoice(ctx, invoice); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionInvoiceCreated,
			TransactionType: domain.TxnInvoice,
			OldValue:        previousReading,
			NewValue:        newReading,
			Amount:          energy,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           req.Notes,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = dto.ToInvoiceResponse(&invoice, balancesOf(acct, balanceBefore))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice applied",
		"account_id", accountID,
		"invoice_id", resp.InvoiceID,
		"kilowatt_amount", req.KilowattAmount.String(),
	)
	return &resp, nil
}

// CancelInvoice implements portssvc.LedgerSvcFacade. The reversal subtracts
// exactly the energy delta the invoice added; the counter reading stays where
// it is.
func (s *ledgerService) CancelInvoice(ctx context.Context, accountID string, invoiceID string, actorID string) (*dto.BalanceMutationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var resp dto.BalanceMutationResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		invoice, err := unit.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.AccountID != acct.AccountID {
			return fmt.Errorf("%w: invoice %s does not belong to account %s", apperrors.ErrNotFound, invoiceID, accountID)
		}
		if invoice.Status != domain.InvoiceActive {
			return fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, invoiceID, invoice.Status)
		}

		now := time.Now().UTC()
		delta := invoice.EnergyDelta()
		balanceBefore := acct.CurrentBalance
		acct.CurrentBalance = balanceBefore.Sub(delta)
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		invoice.Status = domain.InvoiceCancelled
		invoice.LastUpdatedAt = now
		invoice.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		if err := unit.UpdateInvoiceStatus(ctx, *invoice); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionInvoiceCancelled,
			TransactionType: domain.TxnInvoice,
			OldValue:        invoice.NewReading,
			NewValue:        invoice.PreviousReading,
			Amount:          delta.Neg(),
			BalanceBefore:   balanceBefore,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           "cancellation of invoice " + invoiceID,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = balancesOf(acct, balanceBefore)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice cancelled", "account_id", accountID, "invoice_id", invoiceID)
	return &resp, nil
}

// ArchiveInvoice implements portssvc.LedgerSvcFacade. Copy-and-mark: the
// invoice is copied into the archive and its status set; nothing is deleted
// and the balance is untouched.
func (s *ledgerService) ArchiveInvoice(ctx context.Context, accountID string, invoiceID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		invoice, err := unit.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.AccountID != acct.AccountID {
			return fmt.Errorf("%w: invoice %s does not belong to account %s", apperrors.ErrNotFound, invoiceID, accountID)
		}
		if invoice.Status == domain.InvoiceArchived {
			return fmt.Errorf("%w: invoice %s is already archived", apperrors.ErrConflict, invoiceID)
		}

		now := time.Now().UTC()
		archived := *invoice
		archived.Status = domain.InvoiceArchived
		archived.LastUpdatedAt = now
		archived.LastUpdatedBy = actorID

		if err := unit.SaveArchivedInvoice(ctx, archived); err != nil {
			return err
		}
		if err := unit.UpdateInvoiceStatus(ctx, archived); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionInvoiceArchived,
			TransactionType: domain.TxnInvoice,
			BalanceBefore:   acct.CurrentBalance,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           "archival of invoice " + invoiceID,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		return unit.AppendHistory(ctx, entry)
	})
	if err != nil {
		return err
	}

	logger.Info("invoice archived", "account_id", accountID, "invoice_id", invoiceID)
	return nil
}

// ApplyCreditTopUp implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ApplyCreditTopUp(ctx context.Context, accountID string, req dto.AmountRequest, actorID string) (*dto.BalanceMutationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: top-up amount must be positive", apperrors.ErrValidation)
	}

	var resp dto.BalanceMutationResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		now := time.Now().UTC()
		balanceBefore := acct.CurrentBalance
		creditBefore := acct.CreditBalance
		acct.CreditBalance = creditBefore.Add(req.Amount)
		acct.CurrentBalance = balanceBefore.Add(req.Amount)
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionCreditTopUp,
			TransactionType: domain.TxnWeeklyVisa,
			OldValue:        creditBefore,
			NewValue:        acct.CreditBalance,
			Amount:          req.Amount,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           req.Notes,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = balancesOf(acct, balanceBefore)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("credit top-up applied", "account_id", accountID, "amount", req.Amount.String())
	return &resp, nil
}

// ApplyCashWithdrawal implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ApplyCashWithdrawal(ctx context.Context, accountID string, req dto.AmountRequest, actorID string) (*dto.BalanceMutationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}

	var resp dto.BalanceMutationResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		now := time.Now().UTC()
		balanceBefore := acct.CurrentBalance
		withdrawalBefore := acct.WithdrawalTotal
		acct.WithdrawalTotal = withdrawalBefore.Add(req.Amount)
		acct.CurrentBalance = balanceBefore.Sub(req.Amount)
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionCashWithdrawal,
			TransactionType: domain.TxnCashWithdrawal,
			OldValue:        withdrawalBefore,
			NewValue:        acct.WithdrawalTotal,
			Amount:          req.Amount.Neg(),
			BalanceBefore:   balanceBefore,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           req.Notes,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = balancesOf(acct, balanceBefore)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("cash withdrawal applied", "account_id", accountID, "amount", req.Amount.String())
	return &resp, nil
}

// UpdateCounterReading implements portssvc.LedgerSvcFacade. Readings are
// monotonic; a reading below the stored one is rejected with no state change.
func (s *ledgerService) UpdateCounterReading(ctx context.Context, accountID string, req dto.CounterReadingRequest, actorID string) (*dto.CounterUpdateResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.NewReading.IsNegative() {
		return nil, fmt.Errorf("%w: counter reading must not be negative", apperrors.ErrValidation)
	}

	var resp dto.CounterUpdateResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		oldReading := acct.LastCounterReading
		if req.NewReading.LessThan(oldReading) {
			return fmt.Errorf("%w: reading %s is below the last counter reading %s",
				apperrors.ErrValidation, req.NewReading.String(), oldReading.String())
		}

		now := time.Now().UTC()
		consumption := req.NewReading.Sub(oldReading)
		acct.LastCounterReading = req.NewReading
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionCounterUpdated,
			TransactionType: domain.TxnCounterReading,
			OldValue:        oldReading,
			NewValue:        req.NewReading,
			Amount:          consumption,
			BalanceBefore:   acct.CurrentBalance,
			BalanceAfter:    acct.CurrentBalance,
			Notes:           req.Notes,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = dto.CounterUpdateResponse{
			AccountID:   acct.AccountID,
			OldReading:  oldReading,
			NewReading:  req.NewReading,
			Consumption: consumption,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("counter reading updated", "account_id", accountID, "new_reading", req.NewReading.String())
	return &resp, nil
}

// SetCreditBalance implements portssvc.LedgerSvcFacade. The delta is computed
// against the locked account's live credit balance, not the caller snapshot;
// previousValue only feeds the shadow display field.
func (s *ledgerService) SetCreditBalance(ctx context.Context, accountID string, newValue decimal.Decimal, previousValue decimal.Decimal, actorID string) (*dto.BalanceMutationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var resp dto.BalanceMutationResponse
	err := s.ledgerRepo.WithAccountLock(ctx, accountID, func(ctx context.Context, unit portsrepo.AccountUnit) error {
		acct := unit.Account()
		if err := requireActive(acct); err != nil {
			return err
		}

		now := time.Now().UTC()
		creditBefore := acct.CreditBalance
		delta := newValue.Sub(creditBefore)
		balanceBefore := acct.CurrentBalance

		acct.CreditBalance = newValue
		acct.CurrentBalance = balanceBefore.Add(delta)
		acct.PreviousCreditBalance = previousValue
		acct.PreviousValueAt = &now
		acct.LastUpdatedAt = now
		acct.LastUpdatedBy = actorID

		if err := unit.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		entry := domain.HistoryEntry{
			EntryID:         uuid.NewString(),
			AccountID:       acct.AccountID,
			ActionType:      domain.ActionCreditAdjusted,
			TransactionType: domain.TxnReconciliation,
			OldValue:        creditBefore,
			NewValue:        newValue,
			Amount:          delta,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    acct.CurrentBalance,
			ActorID:         actorID,
			CreatedAt:       now,
		}
		if err := unit.AppendHistory(ctx, entry); err != nil {
			return err
		}

		resp = balancesOf(acct, balanceBefore)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("credit balance set", "account_id", accountID, "new_value", newValue.String())
	return &resp, nil
}
