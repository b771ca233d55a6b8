package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
)

// CommuteService computes journey times from a property to a user's saved
// destinations. It keeps one JourneyAggregator per (property, user) so
// that a user revisiting the same property starts a fresh generation on
// the same subject, superseding any of their runs still in flight.
// Different users viewing the same listing never supersede each other.
type CommuteService struct {
	properties   ports.PropertyRepository
	destinations ports.DestinationRepository
	journeys     ports.JourneyProvider
	resolver     Resolver
	publisher    ports.EventPublisher // optional
	callTimeout  time.Duration

	mu   sync.Mutex
	aggs map[aggregatorKey]*JourneyAggregator
}

// aggregatorKey identifies one logical aggregation subject: a listing as
// seen by one user.
type aggregatorKey struct {
	propertyID string
	userID     string
}

// NewCommuteService creates a new CommuteService. publisher may be nil.
func NewCommuteService(
	properties ports.PropertyRepository,
	destinations ports.DestinationRepository,
	journeys ports.JourneyProvider,
	resolver Resolver,
	publisher ports.EventPublisher,
	callTimeout time.Duration,
) *CommuteService {
	return &CommuteService{
		properties:   properties,
		destinations: destinations,
		journeys:     journeys,
		resolver:     resolver,
		publisher:    publisher,
		callTimeout:  callTimeout,
		aggs:         make(map[aggregatorKey]*JourneyAggregator),
	}
}

// CommutesForProperty starts a fresh aggregation from the property's
// location to every saved destination of the user and returns the
// snapshot stream. Snapshots are also published to the event broker for
// WebSocket relay when a publisher is configured.
func (s *CommuteService) CommutesForProperty(ctx context.Context, propertyID, userID string) (<-chan domain.AggregationResult, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("get property %s: %w", propertyID, err)
	}

	dests, err := s.destinations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list destinations for %s: %w", userID, err)
	}

	agg := s.aggregatorFor(propertyID, userID)
	upstream := agg.Aggregate(ctx, property.Location, dests)

	out := make(chan domain.AggregationResult, cap(upstream))
	go func() {
		defer close(out)
		for snapshot := range upstream {
			if s.publisher != nil {
				_ = s.publisher.PublishAggregationSnapshot(ctx, propertyID, snapshot)
			}
			out <- snapshot
		}
	}()
	return out, nil
}

// Commute runs a one-off aggregation from an arbitrary origin, for callers
// that already hold a coordinate (e.g. the map screen).
func (s *CommuteService) Commute(ctx context.Context, origin domain.Coordinate, userID string) (<-chan domain.AggregationResult, error) {
	dests, err := s.destinations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list destinations for %s: %w", userID, err)
	}
	agg := NewJourneyAggregator(s.journeys, s.resolver, s.callTimeout)
	return agg.Aggregate(ctx, origin, dests), nil
}

// Final drains a snapshot stream and returns the last snapshot received.
// ok is false when the stream closed without a completed snapshot (the
// run was superseded by a newer generation).
func Final(snapshots <-chan domain.AggregationResult) (domain.AggregationResult, bool) {
	var last domain.AggregationResult
	for snapshot := range snapshots {
		last = snapshot
	}
	return last, last.Complete
}

func (s *CommuteService) aggregatorFor(propertyID, userID string) *JourneyAggregator {
	key := aggregatorKey{propertyID: propertyID, userID: userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.aggs[key]
	if !ok {
		agg = NewJourneyAggregator(s.journeys, s.resolver, s.callTimeout)
		s.aggs[key] = agg
	}
	return agg
}
