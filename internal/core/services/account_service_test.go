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
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
	"github.com/gridbill/grid_billing_app/internal/repositories/database/memory"
)

type AccountServiceTestSuite struct {
	suite.Suite
	store       *memory.Store
	accountRepo *memory.AccountRepository
	service     portssvc.AccountSvcFacade
	ctx         context.Context
	actorID     string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.accountRepo = memory.NewAccountRepository(suite.store)
	suite.service = services.NewAccountService(suite.accountRepo, services.NewRoleAuthorizationService())
	suite.actorID = uuid.NewString()
	suite.ctx = middleware.WithActor(context.Background(), suite.actorID, nil)
}

func (suite *AccountServiceTestSuite) adminCtx() context.Context {
	return middleware.WithActor(context.Background(), suite.actorID, []string{"admin"})
}

func (suite *AccountServiceTestSuite) create(name string, meterType domain.MeterType, parentID string) *domain.Account {
	req := dto.CreateAccountRequest{Name: name, MeterType: meterType}
	if parentID != "" {
		req.ParentAccountID = &parentID
	}
	account, err := suite.service.CreateAccount(suite.ctx, req, suite.actorID)
	suite.Require().NoError(err)
	return account
}

func (suite *AccountServiceTestSuite) TestCreateGenerator() {
	account := suite.create("North Generator", domain.MeterGenerator, "")
	suite.Equal(domain.MeterGenerator, account.MeterType)
	suite.Empty(account.ParentAccountID)
	suite.True(account.IsActive)
	suite.Equal(domain.CategoryNormal, account.FinancialCategory)
	suite.True(account.CurrentBalance.IsZero())
}

func (suite *AccountServiceTestSuite) TestCreateGeneratorRejectsParent() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	parent := gen.AccountID
	_, err := suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:            "Another Generator",
		MeterType:       domain.MeterGenerator,
		ParentAccountID: &parent,
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateRequiresParent() {
	_, err := suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:      "Orphan Box",
		MeterType: domain.MeterDistributionBox,
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateRejectsWrongParentType() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	box := suite.create("Box", domain.MeterDistributionBox, gen.AccountID)
	main := suite.create("Main", domain.MeterMain, box.AccountID)
	customer := suite.create("Customer", domain.MeterCustomer, main.AccountID)

	// A main meter hangs under a distribution box, never under a customer.
	_, err := suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:            "Misplaced Main",
		MeterType:       domain.MeterMain,
		ParentAccountID: &customer.AccountID,
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	// A distribution box hangs only under a generator.
	_, err = suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:            "Misplaced Box",
		MeterType:       domain.MeterDistributionBox,
		ParentAccountID: &main.AccountID,
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateRejectsNegativeInitialReading() {
	_, err := suite.service.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Name:           "Generator",
		MeterType:      domain.MeterGenerator,
		InitialReading: decimal.NewFromInt(-1),
	}, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestGetHierarchyDepthFirst() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	boxA := suite.create("Box A", domain.MeterDistributionBox, gen.AccountID)
	boxB := suite.create("Box B", domain.MeterDistributionBox, gen.AccountID)
	mainA := suite.create("Main A", domain.MeterMain, boxA.AccountID)
	custA := suite.create("Customer A", domain.MeterCustomer, mainA.AccountID)
	custB := suite.create("Customer B", domain.MeterCustomer, boxB.AccountID)

	nodes, err := suite.service.GetHierarchy(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Require().Len(nodes, 6)

	// Depth-first with siblings by name: the whole Box A subtree precedes Box B.
	ids := make([]string, len(nodes))
	depths := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = n.AccountID
		depths[i] = n.Depth
	}
	suite.Equal([]string{gen.AccountID, boxA.AccountID, mainA.AccountID, custA.AccountID, boxB.AccountID, custB.AccountID}, ids)
	suite.Equal([]int{0, 1, 2, 3, 1, 2}, depths)
}

func (suite *AccountServiceTestSuite) TestGetHierarchySkipsInactive() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	box := suite.create("Box", domain.MeterDistributionBox, gen.AccountID)
	customer := suite.create("Customer", domain.MeterCustomer, box.AccountID)

	suite.Require().NoError(suite.service.DeactivateAccount(suite.ctx, box.AccountID, suite.actorID))

	nodes, err := suite.service.GetHierarchy(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Require().Len(nodes, 2)

	// The customer's parent dropped out of the listing, so it surfaces as a
	// root of its own subtree.
	suite.Equal(gen.AccountID, nodes[0].AccountID)
	suite.Equal(customer.AccountID, nodes[1].AccountID)
	suite.Equal(0, nodes[1].Depth)
}

func (suite *AccountServiceTestSuite) TestReparentAccount() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	boxA := suite.create("Box A", domain.MeterDistributionBox, gen.AccountID)
	boxB := suite.create("Box B", domain.MeterDistributionBox, gen.AccountID)
	customer := suite.create("Customer", domain.MeterCustomer, boxA.AccountID)

	err := suite.service.ReparentAccount(suite.ctx, customer.AccountID, boxB.AccountID, suite.actorID)
	suite.Require().NoError(err)

	moved, err := suite.service.GetAccountByID(suite.ctx, customer.AccountID)
	suite.Require().NoError(err)
	suite.Equal(boxB.AccountID, moved.ParentAccountID)
}

func (suite *AccountServiceTestSuite) TestReparentRejectsCycles() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	box := suite.create("Box", domain.MeterDistributionBox, gen.AccountID)
	customer := suite.create("Customer", domain.MeterCustomer, box.AccountID)

	// Self-parenting.
	err := suite.service.ReparentAccount(suite.ctx, box.AccountID, box.AccountID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	// The new parent must not sit below the account being moved. The typing
	// rules alone would allow a customer parent here, so force the walk.
	err = suite.service.ReparentAccount(suite.ctx, gen.AccountID, customer.AccountID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestUpdateAccountMetadata() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	name := "Generator Renamed"
	sector := "north"
	category := domain.CategoryVIP
	updated, err := suite.service.UpdateAccount(suite.ctx, gen.AccountID, dto.UpdateAccountRequest{
		Name:              &name,
		Sector:            &sector,
		FinancialCategory: &category,
	}, suite.actorID)
	suite.Require().NoError(err)
	suite.Equal(name, updated.Name)
	suite.Equal(sector, updated.Sector)
	suite.Equal(category, updated.FinancialCategory)

	// The edit path never touches balances or the counter.
	suite.True(updated.CurrentBalance.IsZero())
	suite.True(updated.LastCounterReading.IsZero())
}

func (suite *AccountServiceTestSuite) TestDeactivateTwiceConflicts() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	suite.Require().NoError(suite.service.DeactivateAccount(suite.ctx, gen.AccountID, suite.actorID))
	err := suite.service.DeactivateAccount(suite.ctx, gen.AccountID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestDeleteAccountRequiresAdmin() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	err := suite.service.DeleteAccount(suite.ctx, gen.AccountID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, getErr := suite.service.GetAccountByID(suite.ctx, gen.AccountID)
	suite.NoError(getErr)
}

func (suite *AccountServiceTestSuite) TestDeleteAccountBlockedByChildren() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	suite.create("Box", domain.MeterDistributionBox, gen.AccountID)

	err := suite.service.DeleteAccount(suite.adminCtx(), gen.AccountID, suite.actorID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	err := suite.service.DeleteAccount(suite.adminCtx(), gen.AccountID, suite.actorID)
	suite.Require().NoError(err)

	_, err = suite.service.GetAccountByID(suite.ctx, gen.AccountID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestSearchAccounts() {
	gen := suite.create("Generator", domain.MeterGenerator, "")
	box := suite.create("East Box", domain.MeterDistributionBox, gen.AccountID)
	suite.create("West Customer", domain.MeterCustomer, box.AccountID)

	found, err := suite.service.SearchAccounts(suite.ctx, dto.SearchAccountsParams{Term: "east"})
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(box.AccountID, found[0].AccountID)

	found, err = suite.service.SearchAccounts(suite.ctx, dto.SearchAccountsParams{MeterType: "customer"})
	suite.Require().NoError(err)
	suite.Len(found, 1)
}

func (suite *AccountServiceTestSuite) TestListRecentlyChanged() {
	gen := suite.create("Generator", domain.MeterGenerator, "")

	// No account carries a reconciliation timestamp yet.
	accounts, err := suite.service.ListRecentlyChanged(suite.ctx, 48*time.Hour)
	suite.Require().NoError(err)
	suite.Empty(accounts)

	ledgerSvc := services.NewLedgerService(memory.NewLedgerRepository(suite.store))
	_, err = ledgerSvc.SetCreditBalance(suite.ctx, gen.AccountID, decimal.NewFromInt(10), decimal.Zero, suite.actorID)
	suite.Require().NoError(err)

	accounts, err = suite.service.ListRecentlyChanged(suite.ctx, 48*time.Hour)
	suite.Require().NoError(err)
	suite.Require().Len(accounts, 1)
	suite.Equal(gen.AccountID, accounts[0].AccountID)

	_, err = suite.service.ListRecentlyChanged(suite.ctx, 0)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
