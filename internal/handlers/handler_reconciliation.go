package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// reconciliationHandler drives the bulk credit reconciliation workflow over
// HTTP. The batch lives within one request: load fresh snapshots, apply the
// submitted edits, commit row by row.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: rs}
}

// registerReconciliationRoutes registers the bulk workflow routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	reconciliations := rg.Group("/reconciliations")
	{
		reconciliations.POST("/commit", h.commitReconciliation)
	}
}

// commitReconciliation godoc
// @Summary Commit a bulk credit reconciliation
// @Description Applies the submitted credit edits row by row. Old values are snapshotted fresh at commit time; rows decreasing credit require the decrease capability and are skipped without it. Row failures never abort sibling rows
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   batch body dto.CommitReconciliationRequest true "Edited rows"
// @Success 200 {object} dto.CommitReconciliationResponse
// @Failure 400 {object} map[string]string "Empty batch or duplicate rows"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "An account in the batch was not found"
// @Failure 500 {object} map[string]string "Batch aborted by a terminal store error"
// @Security BearerAuth
// @Router /reconciliations/commit [post]
func (h *reconciliationHandler) commitReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CommitReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CommitReconciliation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("actor_id", actorID), slog.Int("row_count", len(req.Rows)))
	logger.Info("Received bulk reconciliation commit")

	accountIDs := make([]string, len(req.Rows))
	for i, row := range req.Rows {
		accountIDs[i] = row.AccountID
	}

	batch, err := h.reconciliationService.Load(c.Request.Context(), accountIDs)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to load reconciliation batch")
		return
	}

	for _, row := range req.Rows {
		if err := h.reconciliationService.Edit(batch, row.AccountID, row.NewValue); err != nil {
			respondServiceError(c, logger, err, "Failed to stage reconciliation edit")
			return
		}
	}

	if err := h.reconciliationService.Commit(c.Request.Context(), batch, actorID); err != nil {
		respondServiceError(c, logger, err, "Batch aborted by a terminal store error")
		return
	}

	logger.Info("Bulk reconciliation finished",
		slog.String("batch_id", batch.BatchID),
		slog.String("state", string(batch.State)),
		slog.Int("committed", batch.Committed),
		slog.Int("skipped", batch.Skipped),
		slog.Int("failed", batch.Failed),
	)
	c.JSON(http.StatusOK, dto.ToCommitReconciliationResponse(batch))
}
