package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"devtrack/internal/model"
	"devtrack/internal/repository"
)

// History returns recent cell updates without exposing repository types.
func (s *trackerService) History(ctx context.Context, limit, offset int) (*HistoryResult, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.history.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Items: res.Items, Total: res.Total}, nil
}

// recordUpdate stores an audit record for a successful cell patch. A failed
// insert is logged and never fails the request: the sheet is the source of
// truth, the history is best effort.
func (s *trackerService) recordUpdate(ctx context.Context, spreadsheetID, device, column, cell, oldValue, newValue string) {
	if s.history == nil {
		return
	}
	rec := &model.CellUpdate{
		ID:            uuid.New().String(),
		SpreadsheetID: spreadsheetID,
		Device:        device,
		Column:        column,
		Cell:          cell,
		OldValue:      oldValue,
		NewValue:      newValue,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.history.Insert(ctx, rec); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"device": device,
			"column": column,
		}).Warn("failed to record cell update")
	}
}
