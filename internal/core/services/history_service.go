package services

import (
	"context"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
)

// historyService exposes the read side of the audit log. Entries are written
// only inside ledger units of work.
type historyService struct {
	historyRepo repositories.HistoryReader
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(historyRepo repositories.HistoryReader) portssvc.HistorySvcFacade {
	return &historyService{historyRepo: historyRepo}
}

var _ portssvc.HistorySvcFacade = (*historyService)(nil)

// GetHistory implements portssvc.HistorySvcFacade.
func (s *historyService) GetHistory(ctx context.Context, accountID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	entries, err := s.historyRepo.ListHistoryByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for account %s: %w", accountID, err)
	}

	responses := make([]dto.HistoryEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToHistoryEntryResponse(&entries[i])
	}
	return &dto.ListHistoryResponse{Entries: responses, Limit: limit, Offset: offset}, nil
}

// GetSummary implements portssvc.HistorySvcFacade.
func (s *historyService) GetSummary(ctx context.Context, accountID string) (*dto.HistorySummaryResponse, error) {
	summary, err := s.historyRepo.SummarizeHistory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize history for account %s: %w", accountID, err)
	}
	resp := dto.ToHistorySummaryResponse(summary)
	return &resp, nil
}
