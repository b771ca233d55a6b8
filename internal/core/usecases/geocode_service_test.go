package usecases_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// --- Mock GeocodingProvider ---

type mockGeocoder struct {
	calls     atomic.Int64
	geocodeFn func(ctx context.Context, text string) (domain.Coordinate, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, text string) (domain.Coordinate, error) {
	m.calls.Add(1)
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, text)
	}
	return domain.Coordinate{Lat: 51.5, Lon: -0.1}, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// --- Tests ---

func TestGeocodeService_ResolveOncePerQuery(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodeService(geo, nil)
	ctx := context.Background()

	first := svc.Resolve(ctx, "Canary Wharf")
	if !first.Resolved() {
		t.Fatalf("expected resolution, got err %v", first.Err)
	}
	second := svc.Resolve(ctx, "Canary Wharf")
	if !second.Resolved() {
		t.Fatalf("expected cached resolution, got err %v", second.Err)
	}
	if *first.Coordinate != *second.Coordinate {
		t.Errorf("cached coordinate differs: %+v vs %+v", first.Coordinate, second.Coordinate)
	}
	if n := geo.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
}

func TestGeocodeService_NormalizesWhitespace(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodeService(geo, nil)
	ctx := context.Background()

	svc.Resolve(ctx, "Canary Wharf")
	svc.Resolve(ctx, "  Canary Wharf  ")
	if n := geo.calls.Load(); n != 1 {
		t.Errorf("provider called %d times for equivalent inputs, want 1", n)
	}
}

func TestGeocodeService_EmptyInput(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodeService(geo, nil)

	out := svc.Resolve(context.Background(), "   ")
	if !errors.Is(out.Err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", out.Err)
	}
	if n := geo.calls.Load(); n != 0 {
		t.Errorf("provider called %d times for empty input, want 0", n)
	}
}

func TestGeocodeService_FailuresAreCached(t *testing.T) {
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, text string) (domain.Coordinate, error) {
			return domain.Coordinate{}, domain.ErrNoMatch
		},
	}
	svc := usecases.NewGeocodeService(geo, nil)
	ctx := context.Background()

	first := svc.Resolve(ctx, "Atlantis")
	second := svc.Resolve(ctx, "Atlantis")
	if !errors.Is(first.Err, domain.ErrNoMatch) || !errors.Is(second.Err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch twice, got %v / %v", first.Err, second.Err)
	}
	if n := geo.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1 (failure should be memoized)", n)
	}
}

func TestGeocodeService_CancelledResolveIsNotMemoized(t *testing.T) {
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, text string) (domain.Coordinate, error) {
			// Return the context error raw, as the HTTP adapter does when
			// the caller's context ends mid-request.
			if err := ctx.Err(); err != nil {
				return domain.Coordinate{}, err
			}
			return domain.Coordinate{Lat: 51.5, Lon: -0.1}, nil
		},
	}
	svc := usecases.NewGeocodeService(geo, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	first := svc.Resolve(cancelled, "Canary Wharf")
	if !errors.Is(first.Err, context.Canceled) {
		t.Fatalf("cancelled resolve returned %v, want context.Canceled", first.Err)
	}

	// A later search for the same text must re-hit the provider, not be
	// served the cancelled outcome from the memo.
	fresh := svc.Resolve(context.Background(), "Canary Wharf")
	if !fresh.Resolved() {
		t.Fatalf("resolve after cancel returned %v, want resolution", fresh.Err)
	}
	if n := geo.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2 (cancellation must not be cached)", n)
	}

	// And the successful outcome is memoized as usual.
	svc.Resolve(context.Background(), "Canary Wharf")
	if n := geo.calls.Load(); n != 2 {
		t.Errorf("provider called %d times after success, want still 2", n)
	}
}

func TestGeocodeService_DeadlineExceededIsNotMemoized(t *testing.T) {
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, text string) (domain.Coordinate, error) {
			if err := ctx.Err(); err != nil {
				return domain.Coordinate{}, err
			}
			return domain.Coordinate{Lat: 51.5, Lon: -0.1}, nil
		},
	}
	svc := usecases.NewGeocodeService(geo, nil)

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	first := svc.Resolve(expired, "Shoreditch")
	if !errors.Is(first.Err, context.DeadlineExceeded) {
		t.Fatalf("expired resolve returned %v, want context.DeadlineExceeded", first.Err)
	}

	fresh := svc.Resolve(context.Background(), "Shoreditch")
	if !fresh.Resolved() {
		t.Fatalf("resolve after deadline returned %v, want resolution", fresh.Err)
	}
	if n := geo.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestGeocodeService_ConcurrentCallersShareOneFlight(t *testing.T) {
	release := make(chan struct{})
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, text string) (domain.Coordinate, error) {
			<-release
			return domain.Coordinate{Lat: 51.5, Lon: -0.1}, nil
		},
	}
	svc := usecases.NewGeocodeService(geo, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := svc.Resolve(ctx, "Shoreditch")
			if !out.Resolved() {
				t.Errorf("expected resolution, got %v", out.Err)
			}
		}()
	}
	close(release)
	wg.Wait()

	if n := geo.calls.Load(); n != 1 {
		t.Errorf("provider called %d times for 8 concurrent callers, want 1", n)
	}
}

func TestGeocodeService_SecondLevelCache(t *testing.T) {
	geo := &mockGeocoder{}
	cache := newMockCache()
	svc := usecases.NewGeocodeService(geo, cache)
	ctx := context.Background()

	svc.Resolve(ctx, "E1 6AN")
	if _, err := cache.Get(ctx, "geocode:E1 6AN"); err != nil {
		t.Fatal("resolved coordinate was not written to the shared cache")
	}

	// A fresh service instance should be served from the shared cache.
	geo2 := &mockGeocoder{}
	svc2 := usecases.NewGeocodeService(geo2, cache)
	out := svc2.Resolve(ctx, "E1 6AN")
	if !out.Resolved() {
		t.Fatalf("expected cache-served resolution, got %v", out.Err)
	}
	if n := geo2.calls.Load(); n != 0 {
		t.Errorf("provider called %d times despite shared cache hit, want 0", n)
	}
}

func TestGeocodeService_Invalidate(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodeService(geo, nil)
	ctx := context.Background()

	svc.Resolve(ctx, "Hackney")
	svc.Invalidate(ctx, "Hackney")
	svc.Resolve(ctx, "Hackney")

	if n := geo.calls.Load(); n != 2 {
		t.Errorf("provider called %d times after invalidation, want 2", n)
	}
}
