package services

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/dto"
)

// HistorySvcFacade exposes the read side of the audit log.
type HistorySvcFacade interface {
	// GetHistory retrieves a page of an account's audit entries, newest first.
	GetHistory(ctx context.Context, accountID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error)

	// GetSummary aggregates an account's trail on read.
	GetSummary(ctx context.Context, accountID string) (*dto.HistorySummaryResponse, error)
}
