package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
)

// SearchHistoryService records settled searches and serves recent ones.
type SearchHistoryService struct {
	records   ports.SearchRecordRepository
	publisher ports.EventPublisher // optional
}

// NewSearchHistoryService creates a new SearchHistoryService.
func NewSearchHistoryService(records ports.SearchRecordRepository, publisher ports.EventPublisher) *SearchHistoryService {
	return &SearchHistoryService{records: records, publisher: publisher}
}

// Record persists one settled search outcome. Cleared and pending states
// are not recorded; neither is empty input.
func (s *SearchHistoryService) Record(ctx context.Context, userID string, outcome domain.GeocodeOutcome) (*domain.SearchRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if errors.Is(outcome.Err, domain.ErrEmptyInput) {
		return nil, nil
	}

	kind := "resolved"
	switch {
	case errors.Is(outcome.Err, domain.ErrNoMatch):
		kind = "no_match"
	case outcome.Err != nil:
		kind = "error"
	}

	rec := &domain.SearchRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Query:     outcome.Query,
		Outcome:   kind,
		Location:  outcome.Coordinate,
		CreatedAt: time.Now(),
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert search record: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishSearchRecorded(ctx, rec)
	}
	return rec, nil
}

// Recent returns the user's latest searches, newest first.
func (s *SearchHistoryService) Recent(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.records.RecentByUser(ctx, userID, limit)
}
