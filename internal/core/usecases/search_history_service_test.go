package usecases_test

import (
	"context"
	"testing"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// --- Mock SearchRecordRepository ---

type mockRecordRepo struct {
	inserted []*domain.SearchRecord
	recentFn func(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error)
}

func (m *mockRecordRepo) Insert(ctx context.Context, rec *domain.SearchRecord) error {
	m.inserted = append(m.inserted, rec)
	return nil
}

func (m *mockRecordRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, userID, limit)
	}
	return nil, nil
}

// --- Tests ---

func TestSearchHistoryService_RecordResolved(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := usecases.NewSearchHistoryService(repo, nil)

	rec, err := svc.Record(context.Background(), "user-1", domain.GeocodeOutcome{
		Query:      "Canary Wharf",
		Coordinate: &domain.Coordinate{Lat: 51.505, Lon: -0.019},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Outcome != "resolved" {
		t.Errorf("outcome = %q, want resolved", rec.Outcome)
	}
	if rec.Location == nil {
		t.Error("resolved record has no location")
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("%d records inserted, want 1", len(repo.inserted))
	}
}

func TestSearchHistoryService_RecordOutcomeKinds(t *testing.T) {
	cases := []struct {
		name    string
		outcome domain.GeocodeOutcome
		want    string
	}{
		{"no match", domain.GeocodeOutcome{Query: "Atlantis", Err: domain.ErrNoMatch}, "no_match"},
		{"provider down", domain.GeocodeOutcome{Query: "Hackney", Err: domain.ErrProviderUnavailable}, "error"},
		{"malformed", domain.GeocodeOutcome{Query: "Hackney", Err: domain.ErrMalformed}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRecordRepo{}
			svc := usecases.NewSearchHistoryService(repo, nil)

			rec, err := svc.Record(context.Background(), "user-1", tc.outcome)
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if rec.Outcome != tc.want {
				t.Errorf("outcome = %q, want %q", rec.Outcome, tc.want)
			}
		})
	}
}

func TestSearchHistoryService_EmptyInputNotRecorded(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := usecases.NewSearchHistoryService(repo, nil)

	rec, err := svc.Record(context.Background(), "user-1", domain.GeocodeOutcome{Err: domain.ErrEmptyInput})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec != nil {
		t.Errorf("empty input produced record %+v", rec)
	}
	if len(repo.inserted) != 0 {
		t.Error("empty input was persisted")
	}
}

func TestSearchHistoryService_RecordRequiresUser(t *testing.T) {
	svc := usecases.NewSearchHistoryService(&mockRecordRepo{}, nil)
	if _, err := svc.Record(context.Background(), "", domain.GeocodeOutcome{Query: "x"}); err == nil {
		t.Error("expected error for missing user")
	}
}

func TestSearchHistoryService_RecentClampsLimit(t *testing.T) {
	var gotLimit int
	repo := &mockRecordRepo{
		recentFn: func(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := usecases.NewSearchHistoryService(repo, nil)
	ctx := context.Background()

	svc.Recent(ctx, "user-1", 0)
	if gotLimit != 10 {
		t.Errorf("zero limit clamped to %d, want 10", gotLimit)
	}
	svc.Recent(ctx, "user-1", 999)
	if gotLimit != 10 {
		t.Errorf("oversized limit clamped to %d, want 10", gotLimit)
	}
	svc.Recent(ctx, "user-1", 25)
	if gotLimit != 25 {
		t.Errorf("valid limit changed to %d, want 25", gotLimit)
	}
}
