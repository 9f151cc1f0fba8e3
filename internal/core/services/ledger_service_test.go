package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/core/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/repositories/database/memory"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type LedgerServiceTestSuite struct {
	suite.Suite
	store       *memory.Store
	accountRepo *memory.AccountRepository
	historyRepo *memory.HistoryRepository
	invoiceRepo *memory.InvoiceRepository
	service     portssvc.LedgerSvcFacade
	ctx         context.Context
	actorID     string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.accountRepo = memory.NewAccountRepository(suite.store)
	suite.historyRepo = memory.NewHistoryRepository(suite.store)
	suite.invoiceRepo = memory.NewInvoiceRepository(suite.store)
	suite.service = services.NewLedgerService(memory.NewLedgerRepository(suite.store))
	suite.ctx = context.Background()
	suite.actorID = uuid.NewString()
}

// seedAccount creates an active customer account with the given balances.
func (suite *LedgerServiceTestSuite) seedAccount(balance, counter, credit string) domain.Account {
	now := time.Now().UTC()
	account := domain.Account{
		AccountID:          uuid.NewString(),
		MeterType:          domain.MeterCustomer,
		Name:               "Customer " + uuid.NewString()[:8],
		FinancialCategory:  domain.CategoryNormal,
		IsActive:           true,
		CurrentBalance:     d(balance),
		LastCounterReading: d(counter),
		CreditBalance:      d(credit),
		WithdrawalTotal:    decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.actorID,
		},
	}
	suite.Require().NoError(suite.accountRepo.SaveAccount(suite.ctx, account))
	return account
}

func (suite *LedgerServiceTestSuite) reload(accountID string) domain.Account {
	account, err := suite.accountRepo.FindAccountByID(suite.ctx, accountID)
	suite.Require().NoError(err)
	return *account
}

// historyOldestFirst returns the full trail in chronological order.
func (suite *LedgerServiceTestSuite) historyOldestFirst(accountID string) []domain.HistoryEntry {
	entries, err := suite.historyRepo.ListHistoryByAccount(suite.ctx, accountID, 1000, 0)
	suite.Require().NoError(err)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func (suite *LedgerServiceTestSuite) TestApplyInvoiceMath() {
	account := suite.seedAccount("0", "1000", "0")

	resp, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("100"),
		FreeKilowatt:   d("10"),
		PricePerKilo:   d("0.5"),
		Discount:       d("5"),
	}, suite.actorID)
	suite.Require().NoError(err)

	// total = 100 × 0.5 − 5; energy = 100 + 10
	suite.True(resp.TotalAmount.Equal(d("45")), "total %s", resp.TotalAmount)
	suite.True(resp.PreviousReading.Equal(d("1000")))
	suite.True(resp.NewReading.Equal(d("1110")))
	suite.Equal(domain.InvoiceActive, resp.Status)
	suite.Require().NotNil(resp.Balances)
	suite.True(resp.Balances.BalanceBefore.Equal(d("0")))
	suite.True(resp.Balances.BalanceAfter.Equal(d("110")))

	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CurrentBalance.Equal(d("110")))
	suite.True(reloaded.LastCounterReading.Equal(d("1110")))

	entries := suite.historyOldestFirst(account.AccountID)
	suite.Require().Len(entries, 1)
	suite.Equal(domain.ActionInvoiceCreated, entries[0].ActionType)
	suite.Equal(domain.TxnInvoice, entries[0].TransactionType)
	suite.True(entries[0].Amount.Equal(d("110")))
}

func (suite *LedgerServiceTestSuite) TestApplyInvoiceFreeOnly() {
	account := suite.seedAccount("0", "0", "0")

	resp, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("0"),
		FreeKilowatt:   d("25"),
		PricePerKilo:   d("0.5"),
	}, suite.actorID)
	suite.Require().NoError(err)

	// A fully free grant still advances the counter and the balance but
	// prices at zero.
	suite.True(resp.TotalAmount.Equal(d("0")))
	suite.True(resp.NewReading.Equal(d("25")))
	suite.True(suite.reload(account.AccountID).CurrentBalance.Equal(d("25")))
}

func (suite *LedgerServiceTestSuite) TestApplyInvoiceValidation() {
	account := suite.seedAccount("50", "500", "0")

	cases := []dto.ApplyInvoiceRequest{
		{KilowattAmount: d("-1"), PricePerKilo: d("1")},
		{KilowattAmount: d("10"), FreeKilowatt: d("-1"), PricePerKilo: d("1")},
		{KilowattAmount: d("10"), PricePerKilo: d("0")},
		{KilowattAmount: d("10"), PricePerKilo: d("-2")},
		{KilowattAmount: d("10"), PricePerKilo: d("1"), Discount: d("-3")},
	}
	for _, req := range cases {
		_, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, req, suite.actorID)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}

	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CurrentBalance.Equal(d("50")))
	suite.True(reloaded.LastCounterReading.Equal(d("500")))
	suite.Empty(suite.historyOldestFirst(account.AccountID))
}

func (suite *LedgerServiceTestSuite) TestCancelInvoiceRoundTrip() {
	account := suite.seedAccount("0", "100", "0")

	resp, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("40"),
		FreeKilowatt:   d("10"),
		PricePerKilo:   d("1"),
	}, suite.actorID)
	suite.Require().NoError(err)

	balances, err := suite.service.CancelInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.Require().NoError(err)
	suite.True(balances.BalanceAfter.Equal(d("0")))

	// The balance reverses exactly; the counter keeps its advanced reading.
	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CurrentBalance.Equal(d("0")))
	suite.True(reloaded.LastCounterReading.Equal(d("150")))

	invoice, err := suite.invoiceRepo.FindInvoiceByID(suite.ctx, resp.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceCancelled, invoice.Status)

	// A cancelled invoice cannot be cancelled again.
	_, err = suite.service.CancelInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *LedgerServiceTestSuite) TestCancelInvoiceOfOtherAccount() {
	account := suite.seedAccount("0", "0", "0")
	other := suite.seedAccount("0", "0", "0")

	resp, err := suite.service.ApplyInvoice(suite.ctx, other.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("5"),
		PricePerKilo:   d("1"),
	}, suite.actorID)
	suite.Require().NoError(err)

	_, err = suite.service.CancelInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestArchiveInvoice() {
	account := suite.seedAccount("0", "0", "0")

	resp, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("20"),
		PricePerKilo:   d("2"),
	}, suite.actorID)
	suite.Require().NoError(err)
	balanceAfterInvoice := suite.reload(account.AccountID).CurrentBalance

	err = suite.service.ArchiveInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.Require().NoError(err)

	invoice, err := suite.invoiceRepo.FindInvoiceByID(suite.ctx, resp.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceArchived, invoice.Status)
	suite.True(suite.reload(account.AccountID).CurrentBalance.Equal(balanceAfterInvoice))

	// Archival is recorded but moves no money.
	entries := suite.historyOldestFirst(account.AccountID)
	suite.Require().Len(entries, 2)
	suite.Equal(domain.ActionInvoiceArchived, entries[1].ActionType)
	suite.True(entries[1].BalanceBefore.Equal(entries[1].BalanceAfter))

	err = suite.service.ArchiveInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *LedgerServiceTestSuite) TestCreditTopUpAndWithdrawal() {
	account := suite.seedAccount("10", "0", "5")

	topped, err := suite.service.ApplyCreditTopUp(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("20")}, suite.actorID)
	suite.Require().NoError(err)
	suite.True(topped.BalanceAfter.Equal(d("30")))
	suite.True(topped.CreditBalance.Equal(d("25")))

	withdrawn, err := suite.service.ApplyCashWithdrawal(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("12")}, suite.actorID)
	suite.Require().NoError(err)
	suite.True(withdrawn.BalanceAfter.Equal(d("18")))
	suite.True(withdrawn.WithdrawalTotal.Equal(d("12")))

	_, err = suite.service.ApplyCreditTopUp(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("0")}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.service.ApplyCashWithdrawal(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("-3")}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCounterReadingMonotonic() {
	account := suite.seedAccount("100", "200", "0")

	update, err := suite.service.UpdateCounterReading(suite.ctx, account.AccountID, dto.CounterReadingRequest{NewReading: d("260")}, suite.actorID)
	suite.Require().NoError(err)
	suite.True(update.Consumption.Equal(d("60")))

	// The balance never moves on a counter update.
	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CurrentBalance.Equal(d("100")))
	suite.True(reloaded.LastCounterReading.Equal(d("260")))

	// A reading below the stored one is rejected and leaves everything
	// untouched, including the audit trail.
	_, err = suite.service.UpdateCounterReading(suite.ctx, account.AccountID, dto.CounterReadingRequest{NewReading: d("250")}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.True(suite.reload(account.AccountID).LastCounterReading.Equal(d("260")))
	suite.Len(suite.historyOldestFirst(account.AccountID), 1)

	// Equal readings are allowed; consumption is zero.
	update, err = suite.service.UpdateCounterReading(suite.ctx, account.AccountID, dto.CounterReadingRequest{NewReading: d("260")}, suite.actorID)
	suite.Require().NoError(err)
	suite.True(update.Consumption.IsZero())
}

func (suite *LedgerServiceTestSuite) TestInactiveAccountLooksMissing() {
	account := suite.seedAccount("0", "0", "0")
	suite.Require().NoError(suite.accountRepo.DeactivateAccount(suite.ctx, account.AccountID, suite.actorID, time.Now().UTC()))

	_, err := suite.service.ApplyCreditTopUp(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("5")}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.ApplyInvoice(suite.ctx, "no-such-account", dto.ApplyInvoiceRequest{
		KilowattAmount: d("1"), PricePerKilo: d("1"),
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestSetCreditBalance() {
	account := suite.seedAccount("100", "0", "30")

	resp, err := suite.service.SetCreditBalance(suite.ctx, account.AccountID, d("50"), d("30"), suite.actorID)
	suite.Require().NoError(err)
	suite.True(resp.BalanceAfter.Equal(d("120")))
	suite.True(resp.CreditBalance.Equal(d("50")))

	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CreditBalance.Equal(d("50")))
	suite.True(reloaded.PreviousCreditBalance.Equal(d("30")))
	suite.Require().NotNil(reloaded.PreviousValueAt)

	entries := suite.historyOldestFirst(account.AccountID)
	suite.Require().Len(entries, 1)
	suite.Equal(domain.ActionCreditAdjusted, entries[0].ActionType)
	suite.Equal(domain.TxnReconciliation, entries[0].TransactionType)
	suite.True(entries[0].Amount.Equal(d("20")))
}

// TestLedgerContinuity checks the chained-balances property: ordering the
// trail chronologically, every entry's closing balance opens the next one.
func (suite *LedgerServiceTestSuite) TestLedgerContinuity() {
	account := suite.seedAccount("0", "0", "0")

	_, err := suite.service.ApplyCreditTopUp(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("50")}, suite.actorID)
	suite.Require().NoError(err)
	resp, err := suite.service.ApplyInvoice(suite.ctx, account.AccountID, dto.ApplyInvoiceRequest{
		KilowattAmount: d("30"), PricePerKilo: d("1"),
	}, suite.actorID)
	suite.Require().NoError(err)
	_, err = suite.service.ApplyCashWithdrawal(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("15")}, suite.actorID)
	suite.Require().NoError(err)
	_, err = suite.service.CancelInvoice(suite.ctx, account.AccountID, resp.InvoiceID, suite.actorID)
	suite.Require().NoError(err)

	entries := suite.historyOldestFirst(account.AccountID)
	suite.Require().Len(entries, 4)
	for i := 1; i < len(entries); i++ {
		suite.True(entries[i].BalanceBefore.Equal(entries[i-1].BalanceAfter),
			"entry %d opens at %s but entry %d closed at %s",
			i, entries[i].BalanceBefore, i-1, entries[i-1].BalanceAfter)
	}
	suite.True(entries[len(entries)-1].BalanceAfter.Equal(suite.reload(account.AccountID).CurrentBalance))
}

// TestConcurrentTopUps drives the per-account lock: with all mutations
// serialized, no increment is lost and the trail stays chained.
func (suite *LedgerServiceTestSuite) TestConcurrentTopUps() {
	account := suite.seedAccount("0", "0", "0")

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := suite.service.ApplyCreditTopUp(suite.ctx, account.AccountID, dto.AmountRequest{Amount: d("1")}, suite.actorID)
			suite.NoError(err)
		}()
	}
	wg.Wait()

	reloaded := suite.reload(account.AccountID)
	suite.True(reloaded.CurrentBalance.Equal(d("20")), "balance %s", reloaded.CurrentBalance)
	suite.True(reloaded.CreditBalance.Equal(d("20")))

	entries := suite.historyOldestFirst(account.AccountID)
	suite.Require().Len(entries, workers)
	for i := 1; i < len(entries); i++ {
		suite.True(entries[i].BalanceBefore.Equal(entries[i-1].BalanceAfter))
	}
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
