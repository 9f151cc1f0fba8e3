package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// accountHandler handles HTTP requests related to meter accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/hierarchy", h.getHierarchy)
		accounts.GET("/search", h.searchAccounts)
		accounts.GET("/recent", h.listRecentlyChanged)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.PUT("/:id/parent", h.reparentAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
	}
}

// createAccount godoc
// @Summary Create a new meter account
// @Description Registers a new account under a parent compatible with its meter type
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or hierarchy violation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("actor_id", actorID))
	logger.Info("Received request to create account", slog.String("account_name", req.Name), slog.String("meter_type", string(req.MeterType)))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves details for a specific account by its ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	logger = logger.With(slog.String("target_account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getHierarchy godoc
// @Summary Get the meter hierarchy
// @Description Returns active accounts in depth-first order with their depth from the root
// @Tags accounts
// @Produce  json
// @Param   sector query string false "Restrict to one sector"
// @Success 200 {array} dto.HierarchyNodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build hierarchy"
// @Security BearerAuth
// @Router /accounts/hierarchy [get]
func (h *accountHandler) getHierarchy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sector := c.Query("sector")

	nodes, err := h.accountService.GetHierarchy(c.Request.Context(), sector)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build hierarchy")
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// searchAccounts godoc
// @Summary Search accounts
// @Description Returns active accounts matching a substring of name, serial number or box number
// @Tags accounts
// @Produce  json
// @Param   term query string false "Substring to match"
// @Param   sector query string false "Sector filter"
// @Param   meterType query string false "Meter type filter"
// @Param   financialCategory query string false "Financial category filter"
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to search accounts"
// @Security BearerAuth
// @Router /accounts/search [get]
func (h *accountHandler) searchAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.SearchAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for SearchAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.SearchAccounts(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to search accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// listRecentlyChanged godoc
// @Summary List recently reconciled accounts
// @Description Returns accounts whose credit balance was replaced within the recency window
// @Tags accounts
// @Produce  json
// @Param   hours query int false "Window size in hours, default 48"
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts/recent [get]
func (h *accountHandler) listRecentlyChanged(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	hours := 48
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
			return
		}
		hours = parsed
	}

	accounts, err := h.accountService.ListRecentlyChanged(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// updateAccount godoc
// @Summary Update account metadata
// @Description Edits identity fields; balances are only reachable through ledger operations
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID), slog.String("actor_id", actorID))

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// reparentAccount godoc
// @Summary Move an account under a new parent
// @Description Validates parent type compatibility and rejects moves that would create a cycle
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   parent body dto.ReparentAccountRequest true "New parent"
// @Success 204 "Moved"
// @Failure 400 {object} map[string]string "Invalid parent or cycle"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to move account"
// @Security BearerAuth
// @Router /accounts/{id}/parent [put]
func (h *accountHandler) reparentAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.ReparentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReparentAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID), slog.String("actor_id", actorID))

	if err := h.accountService.ReparentAccount(c.Request.Context(), accountID, req.NewParentAccountID, actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to move account")
		return
	}

	logger.Info("Account moved successfully", slog.String("new_parent_id", req.NewParentAccountID))
	c.Status(http.StatusNoContent)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Soft-deletes an account; it disappears from listings but keeps its history
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 204 "Deactivated"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID), slog.String("actor_id", actorID))

	if err := h.accountService.DeactivateAccount(c.Request.Context(), accountID, actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated successfully")
	c.Status(http.StatusNoContent)
}

// deleteAccount godoc
// @Summary Hard-delete an account
// @Description Removes an account permanently. Requires the delete capability and no attached children
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 204 "Deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Actor lacks the delete capability"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account still has children"
// @Failure 500 {object} map[string]string "Failed to delete account"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID), slog.String("actor_id", actorID))
	logger.Info("Received request to delete account")

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID, actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete account")
		return
	}

	logger.Info("Account deleted successfully")
	c.Status(http.StatusNoContent)
}
