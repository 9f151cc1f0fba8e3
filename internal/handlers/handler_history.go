package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// historyHandler exposes the read side of the audit log.
type historyHandler struct {
	historyService portssvc.HistorySvcFacade
}

// newHistoryHandler creates a new historyHandler.
func newHistoryHandler(hs portssvc.HistorySvcFacade) *historyHandler {
	return &historyHandler{historyService: hs}
}

// registerHistoryRoutes registers audit log routes nested under the account.
func registerHistoryRoutes(rg *gin.RouterGroup, historyService portssvc.HistorySvcFacade) {
	h := newHistoryHandler(historyService)

	history := rg.Group("/accounts/:id/history")
	{
		history.GET("", h.listHistory)
		history.GET("/summary", h.getSummary)
	}
}

// listHistory godoc
// @Summary List an account's audit entries
// @Description Returns a page of the account's append-only audit log, newest first
// @Tags history
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   limit query int false "Page size, default 20"
// @Param   offset query int false "Offset, default 0"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list history"
// @Security BearerAuth
// @Router /accounts/{id}/history [get]
func (h *historyHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListHistory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.historyService.GetHistory(c.Request.Context(), accountID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getSummary godoc
// @Summary Summarize an account's audit trail
// @Description Returns entry count, totals per transaction type and the first/last entry timestamps
// @Tags history
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.HistorySummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to summarize history"
// @Security BearerAuth
// @Router /accounts/{id}/history/summary [get]
func (h *historyHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	summary, err := h.historyService.GetSummary(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to summarize history")
		return
	}
	c.JSON(http.StatusOK, summary)
}
