package usecases

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/metrics"
)

// JourneyAggregator fans out one journey lookup per destination and joins
// on all of them. One aggregator serves one logical subject (a property,
// a screen); each Aggregate call starts a fresh generation, and outcomes
// stamped with a superseded generation are discarded at write time.
//
// Journey results are never cached across runs: transit times are
// time-of-day sensitive. Coordinates resolved for destinations are scoped
// to the run and are not persisted.
type JourneyAggregator struct {
	journeys    ports.JourneyProvider
	resolver    Resolver
	callTimeout time.Duration

	gen atomic.Uint64
}

// NewJourneyAggregator creates an aggregator. callTimeout bounds each
// journey-provider call so one hung destination cannot stall completion.
func NewJourneyAggregator(journeys ports.JourneyProvider, resolver Resolver, callTimeout time.Duration) *JourneyAggregator {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &JourneyAggregator{journeys: journeys, resolver: resolver, callTimeout: callTimeout}
}

// aggregationState is the shared result for one generation. Workers each
// own a distinct destination ID, so only the counters and the snapshot
// emission need the mutex.
type aggregationState struct {
	mu     sync.Mutex
	result domain.AggregationResult
}

// Aggregate starts a new generation and returns a stream of result
// snapshots. A snapshot is emitted after every settled destination; the
// final one has Complete set. The channel is closed once all work for
// this generation has settled. If a newer generation starts first, the
// channel is closed without a complete snapshot.
//
// A destination whose coordinate cannot be resolved, or whose journey
// lookup fails, contributes a nil journey and never blocks its siblings:
// the aggregation as a whole cannot fail.
func (a *JourneyAggregator) Aggregate(ctx context.Context, origin domain.Coordinate, destinations []domain.Destination) <-chan domain.AggregationResult {
	gen := a.gen.Add(1)
	snapshots := make(chan domain.AggregationResult, len(destinations)+1)

	state := &aggregationState{
		result: domain.AggregationResult{
			Generation: gen,
			Journeys:   make(map[string]*domain.Journey, len(destinations)),
			InFlight:   len(destinations),
		},
	}

	if len(destinations) == 0 {
		state.result.Complete = true
		snapshots <- state.result.Clone()
		close(snapshots)
		return snapshots
	}

	metrics.AggregationFanout.Observe(float64(len(destinations)))
	started := time.Now()

	var wg sync.WaitGroup
	for _, dest := range destinations {
		wg.Add(1)
		go func(dest domain.Destination) {
			defer wg.Done()
			journey := a.fetchJourney(ctx, origin, dest)
			a.settle(state, snapshots, gen, dest.ID, journey)
		}(dest)
	}

	go func() {
		wg.Wait()
		metrics.AggregationDuration.Observe(time.Since(started).Seconds())
		close(snapshots)
	}()

	return snapshots
}

// Generation returns the most recently started generation.
func (a *JourneyAggregator) Generation() uint64 {
	return a.gen.Load()
}

// settle records one destination's outcome. Writes stamped with a
// superseded generation are dropped: they represent correct cancellation,
// not failure, so they are not logged as errors either.
func (a *JourneyAggregator) settle(state *aggregationState, snapshots chan<- domain.AggregationResult, gen uint64, destID string, journey *domain.Journey) {
	if a.gen.Load() != gen {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if a.gen.Load() != gen {
		return
	}
	state.result.Journeys[destID] = journey
	state.result.InFlight--
	state.result.Complete = state.result.InFlight == 0
	snapshots <- state.result.Clone()
}

// fetchJourney resolves the destination coordinate if needed, then plans
// the journey. Either step failing yields nil.
func (a *JourneyAggregator) fetchJourney(ctx context.Context, origin domain.Coordinate, dest domain.Destination) *domain.Journey {
	coord := dest.Location
	if coord == nil {
		target := dest.GeocodeTarget()
		if target == "" {
			return nil
		}
		outcome := a.resolver.Resolve(ctx, target)
		if !outcome.Resolved() {
			slog.Debug("destination unresolvable", "destination_id", dest.ID, "error", outcome.Err)
			return nil
		}
		coord = outcome.Coordinate
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	journey, err := a.journeys.PlanJourney(callCtx, origin, *coord, domain.ModeAll)
	if err != nil {
		metrics.JourneyProviderErrors.Inc()
		slog.Debug("journey lookup failed", "destination_id", dest.ID, "error", err)
		return nil
	}
	return journey
}
