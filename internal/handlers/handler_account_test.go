package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/core/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/handlers"
	"github.com/gridbill/grid_billing_app/internal/middleware"
	"github.com/gridbill/grid_billing_app/internal/repositories/database/memory"
	"github.com/gridbill/grid_billing_app/pkg/config"
)

// The handler suite runs the full stack below the HTTP layer against the
// in-memory store: real auth middleware, real services, no mocks.
type AccountHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	store     *memory.Store
	jwtSecret string
	actorID   string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	dto.RegisterCustomValidators()
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.actorID = uuid.NewString()

	suite.store = memory.NewStore()
	container := services.NewServiceContainer(memory.NewRepositoryProvider(suite.store))
	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

// generateTestToken creates a signed session token carrying the given roles.
func (suite *AccountHandlerTestSuite) generateTestToken(userID string, roles ...string) string {
	claims := middleware.SessionClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gridbill-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) doJSON(method, url string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) createAccount(token string, req dto.CreateAccountRequest) dto.AccountResponse {
	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", req, token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	token := suite.generateTestToken(suite.actorID)

	resp := suite.createAccount(token, dto.CreateAccountRequest{
		Name:      "North Generator",
		MeterType: domain.MeterGenerator,
		Sector:    "north",
	})
	suite.NotEmpty(resp.AccountID)
	suite.Equal(domain.MeterGenerator, resp.MeterType)
	suite.Equal(suite.actorID, resp.CreatedBy)
	suite.True(resp.IsActive)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Unauthorized() {
	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Name:      "Generator",
		MeterType: domain.MeterGenerator,
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidParent() {
	token := suite.generateTestToken(suite.actorID)
	gen := suite.createAccount(token, dto.CreateAccountRequest{
		Name:      "Generator",
		MeterType: domain.MeterGenerator,
	})

	// A main meter cannot hang directly under a generator.
	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Name:            "Main",
		MeterType:       domain.MeterMain,
		ParentAccountID: &gen.AccountID,
	}, token)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *AccountHandlerTestSuite) TestLedgerTopUpAndInvoice() {
	token := suite.generateTestToken(suite.actorID)
	gen := suite.createAccount(token, dto.CreateAccountRequest{
		Name:      "Generator",
		MeterType: domain.MeterGenerator,
	})

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/ledger/topups", gen.AccountID),
		dto.AmountRequest{Amount: decimal.NewFromInt(40)}, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var balances dto.BalanceMutationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balances))
	suite.True(balances.BalanceAfter.Equal(decimal.NewFromInt(40)))

	w = suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/ledger/invoices", gen.AccountID),
		dto.ApplyInvoiceRequest{
			KilowattAmount: decimal.NewFromInt(10),
			PricePerKilo:   decimal.NewFromInt(2),
		}, token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var invoice dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &invoice))
	suite.True(invoice.TotalAmount.Equal(decimal.NewFromInt(20)))
	suite.Require().NotNil(invoice.Balances)
	suite.True(invoice.Balances.BalanceAfter.Equal(decimal.NewFromInt(50)))

	// The trail is visible through the history listing.
	w = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/history", gen.AccountID), nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListHistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	suite.Len(page.Entries, 2)
}

func (suite *AccountHandlerTestSuite) TestReconciliationCommit_DecreaseSkippedWithoutRole() {
	token := suite.generateTestToken(suite.actorID)
	gen := suite.createAccount(token, dto.CreateAccountRequest{
		Name:      "Generator",
		MeterType: domain.MeterGenerator,
	})
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/ledger/topups", gen.AccountID),
		dto.AmountRequest{Amount: decimal.NewFromInt(10)}, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	commit := dto.CommitReconciliationRequest{Rows: []dto.ReconciliationRowRequest{
		{AccountID: gen.AccountID, NewValue: decimal.NewFromInt(4)},
	}}

	w = suite.doJSON(http.MethodPost, "/api/v1/reconciliations/commit", commit, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.CommitReconciliationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.ReconciliationPartiallyCommitted, resp.State)
	suite.Equal(1, resp.Skipped)
	suite.Require().Len(resp.Rows, 1)
	suite.Equal(domain.RowSkippedUnauthorized, resp.Rows[0].Outcome)

	// The same commit with a supervisor session goes through.
	supervisorToken := suite.generateTestToken(suite.actorID, "supervisor")
	w = suite.doJSON(http.MethodPost, "/api/v1/reconciliations/commit", commit, supervisorToken)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.ReconciliationCommitted, resp.State)
	suite.Equal(1, resp.Committed)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Forbidden() {
	token := suite.generateTestToken(suite.actorID)
	gen := suite.createAccount(token, dto.CreateAccountRequest{
		Name:      "Generator",
		MeterType: domain.MeterGenerator,
	})

	w := suite.doJSON(http.MethodDelete, "/api/v1/accounts/"+gen.AccountID, nil, token)
	suite.Equal(http.StatusForbidden, w.Code)

	adminToken := suite.generateTestToken(suite.actorID, "admin")
	w = suite.doJSON(http.MethodDelete, "/api/v1/accounts/"+gen.AccountID, nil, adminToken)
	suite.Equal(http.StatusNoContent, w.Code, w.Body.String())
}

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
