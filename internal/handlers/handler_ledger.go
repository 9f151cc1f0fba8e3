package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// ledgerHandler handles the balance-mutating HTTP requests. Every route here
// funnels into a single-account unit of work under the account's lock.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers balance mutation routes, nested under the
// account they operate on.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/accounts/:id/ledger")
	{
		ledger.POST("/invoices", h.applyInvoice)
		ledger.POST("/invoices/:invoiceID/cancel", h.cancelInvoice)
		ledger.POST("/invoices/:invoiceID/archive", h.archiveInvoice)
		ledger.POST("/topups", h.applyCreditTopUp)
		ledger.POST("/withdrawals", h.applyCashWithdrawal)
		ledger.POST("/counter", h.updateCounterReading)
	}
}

// applyInvoice godoc
// @Summary Record an energy purchase
// @Description Advances the counter, increases the balance and prices the invoice in one atomic operation
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   invoice body dto.ApplyInvoiceRequest true "Purchase details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid amounts"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Lock contention"
// @Failure 500 {object} map[string]string "Failed to apply invoice"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/invoices [post]
func (h *ledgerHandler) applyInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.ApplyInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("actor_id", actorID))

	invoice, err := h.ledgerService.ApplyInvoice(c.Request.Context(), accountID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply invoice")
		return
	}

	logger.Info("Invoice applied", slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, invoice)
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Reverses the exact balance delta the invoice applied; the counter stays where it is
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.BalanceMutationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account or invoice not found"
// @Failure 409 {object} map[string]string "Invoice not active or belongs to another account"
// @Failure 500 {object} map[string]string "Failed to cancel invoice"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/invoices/{invoiceID}/cancel [post]
func (h *ledgerHandler) cancelInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	invoiceID := c.Param("invoiceID")

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("invoice_id", invoiceID), slog.String("actor_id", actorID))

	balances, err := h.ledgerService.CancelInvoice(c.Request.Context(), accountID, invoiceID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to cancel invoice")
		return
	}

	logger.Info("Invoice cancelled")
	c.JSON(http.StatusOK, balances)
}

// archiveInvoice godoc
// @Summary Archive an invoice
// @Description Copies the invoice into the archive and marks it archived; no balance effect
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 204 "Archived"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account or invoice not found"
// @Failure 409 {object} map[string]string "Invoice not in an archivable state"
// @Failure 500 {object} map[string]string "Failed to archive invoice"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/invoices/{invoiceID}/archive [post]
func (h *ledgerHandler) archiveInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	invoiceID := c.Param("invoiceID")

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("invoice_id", invoiceID), slog.String("actor_id", actorID))

	if err := h.ledgerService.ArchiveInvoice(c.Request.Context(), accountID, invoiceID, actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to archive invoice")
		return
	}

	logger.Info("Invoice archived")
	c.Status(http.StatusNoContent)
}

// applyCreditTopUp godoc
// @Summary Add an advance credit
// @Description Increases both the credit balance and the current balance by the amount
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   amount body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceMutationResponse
// @Failure 400 {object} map[string]string "Amount must be positive"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to apply top-up"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/topups [post]
func (h *ledgerHandler) applyCreditTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyCreditTopUp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("actor_id", actorID))

	balances, err := h.ledgerService.ApplyCreditTopUp(c.Request.Context(), accountID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply top-up")
		return
	}

	logger.Info("Credit top-up applied")
	c.JSON(http.StatusOK, balances)
}

// applyCashWithdrawal godoc
// @Summary Pay cash out of an account
// @Description Increases the withdrawal total and decreases the current balance
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   amount body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceMutationResponse
// @Failure 400 {object} map[string]string "Amount must be positive"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to apply withdrawal"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/withdrawals [post]
func (h *ledgerHandler) applyCashWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyCashWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("actor_id", actorID))

	balances, err := h.ledgerService.ApplyCashWithdrawal(c.Request.Context(), accountID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply withdrawal")
		return
	}

	logger.Info("Cash withdrawal applied")
	c.JSON(http.StatusOK, balances)
}

// updateCounterReading godoc
// @Summary Record an absolute counter reading
// @Description Sets the counter to the new reading and logs the consumption; the balance is untouched. Readings never go backward
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   reading body dto.CounterReadingRequest true "New reading"
// @Success 200 {object} dto.CounterUpdateResponse
// @Failure 400 {object} map[string]string "Reading below current counter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update counter"
// @Security BearerAuth
// @Router /accounts/{id}/ledger/counter [post]
func (h *ledgerHandler) updateCounterReading(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.CounterReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCounterReading", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("actor_id", actorID))

	update, err := h.ledgerService.UpdateCounterReading(c.Request.Context(), accountID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update counter")
		return
	}

	logger.Info("Counter reading updated")
	c.JSON(http.StatusOK, update)
}
