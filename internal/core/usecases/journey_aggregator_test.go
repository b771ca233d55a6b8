package usecases_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// --- Mock JourneyProvider ---

type mockJourneys struct {
	calls  atomic.Int64
	planFn func(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error)
}

func (m *mockJourneys) PlanJourney(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error) {
	m.calls.Add(1)
	if m.planFn != nil {
		return m.planFn(ctx, origin, destination, mode)
	}
	return &domain.Journey{
		Legs: []domain.Leg{
			{Mode: domain.LegRail, DurationMinutes: 20, LineName: "Elizabeth"},
		},
		TotalDurationMinutes: 20,
	}, nil
}

func drain(t *testing.T, snapshots <-chan domain.AggregationResult, timeout time.Duration) []domain.AggregationResult {
	t.Helper()
	deadline := time.After(timeout)
	var got []domain.AggregationResult
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return got
			}
			got = append(got, snap)
		case <-deadline:
			t.Fatalf("timed out draining snapshots; got %d", len(got))
		}
	}
}

var testOrigin = domain.Coordinate{Lat: 51.505, Lon: -0.019}

// --- Tests ---

func TestJourneyAggregator_WorkAndGym(t *testing.T) {
	journeys := &mockJourneys{
		planFn: func(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error) {
			minutes := 18
			if destination.Lat > 51.51 {
				minutes = 25
			}
			return &domain.Journey{
				Legs:                 []domain.Leg{{Mode: domain.LegRail, DurationMinutes: minutes}},
				TotalDurationMinutes: minutes,
			}, nil
		},
	}
	agg := usecases.NewJourneyAggregator(journeys, &mockResolver{
		resolveFn: func(ctx context.Context, text string) domain.GeocodeOutcome {
			// The gym has no stored coordinate, only a postcode.
			if domain.NormalizeQuery(text) != "E1 6AN" {
				t.Errorf("unexpected resolve of %q", text)
			}
			return domain.GeocodeOutcome{
				Query:      "E1 6AN",
				Coordinate: &domain.Coordinate{Lat: 51.509, Lon: -0.071},
			}
		},
	}, time.Second)

	dests := []domain.Destination{
		{ID: "work", DisplayName: "Work", Location: &domain.Coordinate{Lat: 51.515, Lon: -0.072}},
		{ID: "gym", DisplayName: "Gym", Postcode: "E1 6AN"},
	}

	snaps := drain(t, agg.Aggregate(context.Background(), testOrigin, dests), time.Second)
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}

	final := snaps[len(snaps)-1]
	if !final.Complete {
		t.Error("final snapshot not complete")
	}
	if final.InFlight != 0 {
		t.Errorf("final InFlight = %d, want 0", final.InFlight)
	}
	if final.Journeys["work"] == nil || final.Journeys["work"].TotalDurationMinutes != 25 {
		t.Errorf("work journey = %+v, want 25 min", final.Journeys["work"])
	}
	if final.Journeys["gym"] == nil || final.Journeys["gym"].TotalDurationMinutes != 18 {
		t.Errorf("gym journey = %+v, want 18 min", final.Journeys["gym"])
	}
}

func TestJourneyAggregator_PartialFailure(t *testing.T) {
	journeys := &mockJourneys{
		planFn: func(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error) {
			if destination.Lat == 0 {
				return nil, domain.ErrNoRouteFound
			}
			return &domain.Journey{
				Legs:                 []domain.Leg{{Mode: domain.LegBus, DurationMinutes: 12}},
				TotalDurationMinutes: 12,
			}, nil
		},
	}
	agg := usecases.NewJourneyAggregator(journeys, &mockResolver{}, time.Second)

	dests := []domain.Destination{
		{ID: "ok", Location: &domain.Coordinate{Lat: 51.52, Lon: -0.08}},
		{ID: "broken", Location: &domain.Coordinate{Lat: 0, Lon: 0}},
	}

	snaps := drain(t, agg.Aggregate(context.Background(), testOrigin, dests), time.Second)
	final := snaps[len(snaps)-1]
	if !final.Complete {
		t.Fatal("aggregation with a failed destination must still complete")
	}
	if final.Journeys["ok"] == nil {
		t.Error("successful destination missing from result")
	}
	if j, present := final.Journeys["broken"]; !present || j != nil {
		t.Errorf("failed destination should be present with nil journey, got %v (present=%v)", j, present)
	}
}

func TestJourneyAggregator_EmptyDestinations(t *testing.T) {
	journeys := &mockJourneys{}
	agg := usecases.NewJourneyAggregator(journeys, &mockResolver{}, time.Second)

	snaps := drain(t, agg.Aggregate(context.Background(), testOrigin, nil), time.Second)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if !snaps[0].Complete {
		t.Error("empty aggregation must complete immediately")
	}
	if len(snaps[0].Journeys) != 0 {
		t.Errorf("empty aggregation has %d journeys", len(snaps[0].Journeys))
	}
	if n := journeys.calls.Load(); n != 0 {
		t.Errorf("journey provider called %d times for zero destinations", n)
	}
}

func TestJourneyAggregator_GenerationsIncrease(t *testing.T) {
	agg := usecases.NewJourneyAggregator(&mockJourneys{}, &mockResolver{}, time.Second)
	ctx := context.Background()

	first := drain(t, agg.Aggregate(ctx, testOrigin, nil), time.Second)
	second := drain(t, agg.Aggregate(ctx, testOrigin, nil), time.Second)

	if first[0].Generation >= second[0].Generation {
		t.Errorf("generations not increasing: %d then %d", first[0].Generation, second[0].Generation)
	}
	if agg.Generation() != second[0].Generation {
		t.Errorf("Generation() = %d, want %d", agg.Generation(), second[0].Generation)
	}
}

func TestJourneyAggregator_SupersededRunNeverCompletes(t *testing.T) {
	block := make(chan struct{})
	journeys := &mockJourneys{
		planFn: func(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error) {
			<-block
			return &domain.Journey{
				Legs:                 []domain.Leg{{Mode: domain.LegWalk, DurationMinutes: 5}},
				TotalDurationMinutes: 5,
			}, nil
		},
	}
	agg := usecases.NewJourneyAggregator(journeys, &mockResolver{}, time.Second)
	ctx := context.Background()

	dests := []domain.Destination{{ID: "work", Location: &domain.Coordinate{Lat: 51.515, Lon: -0.072}}}

	stale := agg.Aggregate(ctx, testOrigin, dests)

	// A newer run on the same aggregator supersedes the blocked one.
	fresh := agg.Aggregate(ctx, testOrigin, dests)
	close(block)

	staleSnaps := drain(t, stale, time.Second)
	for _, snap := range staleSnaps {
		if snap.Complete {
			t.Error("superseded run emitted a complete snapshot")
		}
	}

	freshSnaps := drain(t, fresh, time.Second)
	final := freshSnaps[len(freshSnaps)-1]
	if !final.Complete {
		t.Error("current run did not complete")
	}
	if final.Journeys["work"] == nil {
		t.Error("current run missing work journey")
	}
}

func TestJourneyAggregator_CompleteOnlyOnFinalSnapshot(t *testing.T) {
	agg := usecases.NewJourneyAggregator(&mockJourneys{}, &mockResolver{}, time.Second)

	dests := []domain.Destination{
		{ID: "a", Location: &domain.Coordinate{Lat: 51.51, Lon: -0.05}},
		{ID: "b", Location: &domain.Coordinate{Lat: 51.52, Lon: -0.06}},
		{ID: "c", Location: &domain.Coordinate{Lat: 51.53, Lon: -0.07}},
	}

	snaps := drain(t, agg.Aggregate(context.Background(), testOrigin, dests), time.Second)
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	for i, snap := range snaps[:len(snaps)-1] {
		if snap.Complete {
			t.Errorf("snapshot %d marked complete before all destinations settled", i)
		}
	}
	if !snaps[len(snaps)-1].Complete {
		t.Error("final snapshot not complete")
	}
	for i := 1; i < len(snaps); i++ {
		if len(snaps[i].Journeys) <= len(snaps[i-1].Journeys) {
			t.Errorf("snapshot %d did not grow: %d then %d journeys",
				i, len(snaps[i-1].Journeys), len(snaps[i].Journeys))
		}
	}
}

func TestJourneyAggregator_UnresolvableDestination(t *testing.T) {
	journeys := &mockJourneys{}
	agg := usecases.NewJourneyAggregator(journeys, &mockResolver{
		resolveFn: func(ctx context.Context, text string) domain.GeocodeOutcome {
			return domain.GeocodeOutcome{Query: text, Err: domain.ErrNoMatch}
		},
	}, time.Second)

	dests := []domain.Destination{{ID: "nowhere", DisplayName: "Nowhere", Postcode: "XX1 1XX"}}

	snaps := drain(t, agg.Aggregate(context.Background(), testOrigin, dests), time.Second)
	final := snaps[len(snaps)-1]
	if !final.Complete {
		t.Fatal("aggregation must complete despite unresolvable destination")
	}
	if j := final.Journeys["nowhere"]; j != nil {
		t.Errorf("unresolvable destination produced journey %+v", j)
	}
	if n := journeys.calls.Load(); n != 0 {
		t.Errorf("journey provider called %d times without a coordinate", n)
	}
}
