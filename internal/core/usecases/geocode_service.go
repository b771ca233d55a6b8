package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/metrics"
)

// Resolver turns free text or a postcode into a settled GeocodeOutcome.
type Resolver interface {
	Resolve(ctx context.Context, text string) domain.GeocodeOutcome
}

// GeocodeService resolves free-text queries to coordinates and memoizes
// the outcome per normalized query for the life of the service. Provider
// failures are cached too: geocoding is idempotent for a fixed input, so
// repeating a query that already failed must not re-hit the provider.
// Caller cancellation is the exception: it is not an outcome and is never
// memoized.
type GeocodeService struct {
	provider ports.GeocodingProvider
	cache    ports.CacheService // optional shared second level

	group singleflight.Group

	mu   sync.Mutex
	memo map[string]domain.GeocodeOutcome
}

// NewGeocodeService creates a new GeocodeService. cache may be nil.
func NewGeocodeService(provider ports.GeocodingProvider, cache ports.CacheService) *GeocodeService {
	return &GeocodeService{
		provider: provider,
		cache:    cache,
		memo:     make(map[string]domain.GeocodeOutcome),
	}
}

// Resolve returns the outcome for a query, calling the provider at most
// once per distinct normalized query. Concurrent callers for the same
// query share a single provider call.
func (s *GeocodeService) Resolve(ctx context.Context, text string) domain.GeocodeOutcome {
	query := domain.NormalizeQuery(text)
	if query == "" {
		return domain.GeocodeOutcome{Query: query, Err: domain.ErrEmptyInput}
	}

	s.mu.Lock()
	if out, ok := s.memo[query]; ok {
		s.mu.Unlock()
		metrics.GeocodeCacheHits.Inc()
		return out
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do(query, func() (any, error) {
		// Re-check under the flight: a racing caller may have stored it.
		s.mu.Lock()
		if out, ok := s.memo[query]; ok {
			s.mu.Unlock()
			return out, nil
		}
		s.mu.Unlock()

		metrics.GeocodeCacheMisses.Inc()
		out := s.resolveUncached(ctx, query)

		// A caller-cancelled call is not a provider outcome: memoizing it
		// would serve "context canceled" to every future search for this
		// query. Leave the memo empty and drop the flight so the next
		// caller re-hits the provider.
		if canceled(out.Err) {
			s.group.Forget(query)
			return out, nil
		}

		s.mu.Lock()
		s.memo[query] = out
		s.mu.Unlock()
		return out, nil
	})
	return v.(domain.GeocodeOutcome)
}

// canceled reports whether err came from the caller's context rather than
// the provider. Provider-side timeouts arrive wrapped in
// ErrProviderUnavailable and are memoized like any other outcome.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Invalidate drops the cached outcome for a query so the next Resolve
// re-hits the provider.
func (s *GeocodeService) Invalidate(ctx context.Context, text string) {
	query := domain.NormalizeQuery(text)
	if query == "" {
		return
	}
	s.mu.Lock()
	delete(s.memo, query)
	s.mu.Unlock()
	if s.cache != nil {
		_ = s.cache.Delete(ctx, geocodeCacheKey(query))
	}
}

func (s *GeocodeService) resolveUncached(ctx context.Context, query string) domain.GeocodeOutcome {
	// Shared second-level cache holds resolved coordinates only; transient
	// provider failures stay local to this instance.
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, geocodeCacheKey(query)); err == nil {
			var coord domain.Coordinate
			if err := json.Unmarshal(data, &coord); err == nil {
				return domain.GeocodeOutcome{Query: query, Coordinate: &coord}
			}
		}
	}

	coord, err := s.provider.Geocode(ctx, query)
	if err != nil {
		metrics.GeocodeProviderErrors.Inc()
		return domain.GeocodeOutcome{Query: query, Err: err}
	}

	if s.cache != nil {
		if data, err := json.Marshal(coord); err == nil {
			_ = s.cache.Set(ctx, geocodeCacheKey(query), data, 86400)
		}
	}

	return domain.GeocodeOutcome{Query: query, Coordinate: &coord}
}

func geocodeCacheKey(query string) string {
	return "geocode:" + query
}
