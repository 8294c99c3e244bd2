package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

// journalService reads the command journal. Entries are written by the
// command that produced them, inside its own transaction.
type journalService struct {
	BaseService
}

// NewJournalService creates a new JournalService.
func NewJournalService(deps Dependencies) portssvc.JournalSvc {
	return &journalService{BaseService: deps.base()}
}

func (s *journalService) ListJournal(ctx context.Context, params dto.ListJournalParams) (*dto.ListJournalResponse, error) {
	afterSeq, err := pagination.DecodeSeqToken(params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	limit := dto.ClampLimit(params.Limit)
	entries, err := s.TxManager.Reader().Journal().ListEntries(ctx, afterSeq, limit+1)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	page, next := pagination.Trim(entries, limit, func(e domain.JournalEntry) string { return strconv.FormatInt(e.Seq, 10) })
	return &dto.ListJournalResponse{Entries: dto.ToJournalEntryResponses(page), NextToken: next}, nil
}
