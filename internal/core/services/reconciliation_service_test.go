package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/core/services"
	"github.com/gridbill/grid_billing_app/internal/middleware"
	"github.com/gridbill/grid_billing_app/internal/repositories/database/memory"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	store       *memory.Store
	accountRepo *memory.AccountRepository
	service     portssvc.ReconciliationSvcFacade
	actorID     string
	plainCtx    context.Context
	supervisor  context.Context
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.accountRepo = memory.NewAccountRepository(suite.store)
	authSvc := services.NewRoleAuthorizationService()
	ledgerSvc := services.NewLedgerService(memory.NewLedgerRepository(suite.store))
	suite.service = services.NewReconciliationService(suite.accountRepo, ledgerSvc, authSvc)
	suite.actorID = uuid.NewString()
	suite.plainCtx = middleware.WithActor(context.Background(), suite.actorID, nil)
	suite.supervisor = middleware.WithActor(context.Background(), suite.actorID, []string{"supervisor"})
}

func (suite *ReconciliationServiceTestSuite) seedAccount(credit string) string {
	now := time.Now().UTC()
	account := domain.Account{
		AccountID:         uuid.NewString(),
		MeterType:         domain.MeterCustomer,
		Name:              "Customer " + uuid.NewString()[:8],
		FinancialCategory: domain.CategoryNormal,
		IsActive:          true,
		CurrentBalance:    decimal.RequireFromString(credit),
		CreditBalance:     decimal.RequireFromString(credit),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.actorID,
		},
	}
	suite.Require().NoError(suite.accountRepo.SaveAccount(context.Background(), account))
	return account.AccountID
}

func (suite *ReconciliationServiceTestSuite) credit(accountID string) decimal.Decimal {
	account, err := suite.accountRepo.FindAccountByID(context.Background(), accountID)
	suite.Require().NoError(err)
	return account.CreditBalance
}

func (suite *ReconciliationServiceTestSuite) TestLoadSnapshotsCredit() {
	a := suite.seedAccount("10")
	b := suite.seedAccount("25")

	batch, err := suite.service.Load(suite.plainCtx, []string{a, b})
	suite.Require().NoError(err)
	suite.Equal(domain.ReconciliationLoaded, batch.State)
	suite.Require().Len(batch.Rows, 2)
	suite.True(batch.Rows[0].OldValue.Equal(decimal.NewFromInt(10)))
	suite.True(batch.Rows[1].OldValue.Equal(decimal.NewFromInt(25)))
	suite.False(batch.Rows[0].Edited)
}

func (suite *ReconciliationServiceTestSuite) TestLoadValidation() {
	a := suite.seedAccount("10")

	_, err := suite.service.Load(suite.plainCtx, nil)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.Load(suite.plainCtx, []string{a, a})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.Load(suite.plainCtx, []string{a, "missing"})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestEditUnknownRow() {
	a := suite.seedAccount("10")
	batch, err := suite.service.Load(suite.plainCtx, []string{a})
	suite.Require().NoError(err)

	err = suite.service.Edit(batch, "someone-else", decimal.NewFromInt(5))
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(domain.ReconciliationLoaded, batch.State)
}

func (suite *ReconciliationServiceTestSuite) TestCommitBeforeEditConflicts() {
	a := suite.seedAccount("10")
	batch, err := suite.service.Load(suite.plainCtx, []string{a})
	suite.Require().NoError(err)

	err = suite.service.Commit(suite.supervisor, batch, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.True(suite.credit(a).Equal(decimal.NewFromInt(10)))
}

// TestCommitWithoutDecreaseRole: an actor without the decrease capability
// still commits every increase; the decreases are skipped untouched and the
// batch lands partially committed.
func (suite *ReconciliationServiceTestSuite) TestCommitWithoutDecreaseRole() {
	ids := []string{suite.seedAccount("10"), suite.seedAccount("10"), suite.seedAccount("10"), suite.seedAccount("10")}
	targets := []string{"15", "7", "12", "9"}

	batch, err := suite.service.Load(suite.plainCtx, ids)
	suite.Require().NoError(err)
	for i, id := range ids {
		suite.Require().NoError(suite.service.Edit(batch, id, decimal.RequireFromString(targets[i])))
	}
	suite.Equal(domain.ReconciliationEdited, batch.State)

	suite.Require().NoError(suite.service.Commit(suite.plainCtx, batch, suite.actorID))

	suite.Equal(domain.ReconciliationPartiallyCommitted, batch.State)
	suite.Equal(2, batch.Committed)
	suite.Equal(2, batch.Skipped)
	suite.Equal(0, batch.Failed)

	suite.Equal(domain.RowCommitted, batch.Rows[0].Outcome)
	suite.Equal(domain.RowSkippedUnauthorized, batch.Rows[1].Outcome)
	suite.Equal(domain.RowCommitted, batch.Rows[2].Outcome)
	suite.Equal(domain.RowSkippedUnauthorized, batch.Rows[3].Outcome)

	suite.True(suite.credit(ids[0]).Equal(decimal.NewFromInt(15)))
	suite.True(suite.credit(ids[1]).Equal(decimal.NewFromInt(10)), "skipped decrease must leave the account untouched")
	suite.True(suite.credit(ids[2]).Equal(decimal.NewFromInt(12)))
	suite.True(suite.credit(ids[3]).Equal(decimal.NewFromInt(10)))
}

func (suite *ReconciliationServiceTestSuite) TestCommitWithDecreaseRole() {
	ids := []string{suite.seedAccount("10"), suite.seedAccount("10")}

	batch, err := suite.service.Load(suite.supervisor, ids)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.Edit(batch, ids[0], decimal.NewFromInt(15)))
	suite.Require().NoError(suite.service.Edit(batch, ids[1], decimal.NewFromInt(4)))

	suite.Require().NoError(suite.service.Commit(suite.supervisor, batch, suite.actorID))

	suite.Equal(domain.ReconciliationCommitted, batch.State)
	suite.Equal(2, batch.Committed)
	suite.Equal(0, batch.Skipped)
	suite.True(suite.credit(ids[0]).Equal(decimal.NewFromInt(15)))
	suite.True(suite.credit(ids[1]).Equal(decimal.NewFromInt(4)))

	// The shadow display fields record what the commit replaced.
	account, err := suite.accountRepo.FindAccountByID(context.Background(), ids[1])
	suite.Require().NoError(err)
	suite.True(account.PreviousCreditBalance.Equal(decimal.NewFromInt(10)))
	suite.NotNil(account.PreviousValueAt)
}

// TestCommitRowFailureIsolated: a row that fails at the store (here: the
// account vanished between load and commit) is recorded as failed without
// aborting its siblings.
func (suite *ReconciliationServiceTestSuite) TestCommitRowFailureIsolated() {
	ids := []string{suite.seedAccount("10"), suite.seedAccount("10"), suite.seedAccount("10")}

	batch, err := suite.service.Load(suite.supervisor, ids)
	suite.Require().NoError(err)
	for _, id := range ids {
		suite.Require().NoError(suite.service.Edit(batch, id, decimal.NewFromInt(20)))
	}

	suite.Require().NoError(suite.accountRepo.DeactivateAccount(context.Background(), ids[1], suite.actorID, time.Now().UTC()))

	suite.Require().NoError(suite.service.Commit(suite.supervisor, batch, suite.actorID))

	suite.Equal(domain.ReconciliationPartiallyCommitted, batch.State)
	suite.Equal(2, batch.Committed)
	suite.Equal(1, batch.Failed)
	suite.Equal(domain.RowFailedError, batch.Rows[1].Outcome)
	suite.NotEmpty(batch.Rows[1].Error)
	suite.True(suite.credit(ids[0]).Equal(decimal.NewFromInt(20)))
	suite.True(suite.credit(ids[2]).Equal(decimal.NewFromInt(20)))
}

// TestCommitSkipsUneditedRows: rows loaded but never edited are not written,
// even though their target equals their snapshot.
func (suite *ReconciliationServiceTestSuite) TestCommitSkipsUneditedRows() {
	ids := []string{suite.seedAccount("10"), suite.seedAccount("10")}

	batch, err := suite.service.Load(suite.supervisor, ids)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.Edit(batch, ids[0], decimal.NewFromInt(30)))

	suite.Require().NoError(suite.service.Commit(suite.supervisor, batch, suite.actorID))

	suite.Equal(domain.ReconciliationCommitted, batch.State)
	suite.Equal(1, batch.Committed)

	// The unedited account has no audit entry and no shadow timestamp.
	untouched, err := suite.accountRepo.FindAccountByID(context.Background(), ids[1])
	suite.Require().NoError(err)
	suite.Nil(untouched.PreviousValueAt)

	historyRepo := memory.NewHistoryRepository(suite.store)
	entries, err := historyRepo.ListHistoryByAccount(context.Background(), ids[1], 10, 0)
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
