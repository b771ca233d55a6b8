//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/http"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/postgres"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("ijar-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	dsn := cfg.Database.DSN()
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	propertyRepo := postgres.NewPropertyRepo(db)
	destinationRepo := postgres.NewDestinationRepo(db)
	recordRepo := postgres.NewSearchRecordRepo(db)

	resolver := &mockResolver{}
	journeys := &mockJourneyProvider{}

	return &http.Dependencies{
		Properties:   usecases.NewPropertyService(propertyRepo, nil),
		Destinations: usecases.NewDestinationService(destinationRepo, resolver),
		Commutes:     usecases.NewCommuteService(propertyRepo, destinationRepo, journeys, resolver, nil, 5*time.Second),
		History:      usecases.NewSearchHistoryService(recordRepo, nil),
		Resolver:     resolver,
		Debounce:     10 * time.Millisecond,
		DB:           db,
	}
}

// seedTestProperty inserts a test listing and returns its UUID.
func seedTestProperty(t *testing.T, db *postgres.DB, title string, lat, lon float64) string {
	ctx := context.Background()
	var id string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO properties (id, title, address, postcode, monthly_rent, currency, bedrooms, bathrooms, furnished, lat, lon, lister)
		VALUES (gen_random_uuid(), $1, '1 Test Street', 'E1 6AN', 1800, 'GBP', 2, 1, true, $2, $3, 'test-lister')
		RETURNING id
	`, title, lat, lon).Scan(&id); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return id
}

// seedTestDestination inserts a saved destination and returns its UUID.
func seedTestDestination(t *testing.T, db *postgres.DB, userID, name string) string {
	ctx := context.Background()
	var id string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO destinations (id, user_id, display_name, postcode, lat, lon, position)
		VALUES (gen_random_uuid(), $1, $2, '', 51.515, -0.072, 0)
		RETURNING id
	`, userID, name).Scan(&id); err != nil {
		t.Fatalf("seed destination: %v", err)
	}
	return id
}

// TestListProperties_Integration_WithRealDB tests listing browsing against a real database.
func TestListProperties_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	seedTestProperty(t, db, "Integration flat A", 51.505, -0.019)
	seedTestProperty(t, db, "Integration flat B", 51.515, -0.072)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/properties", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Property   `json:"data"`
		Pagination struct{ Total int } `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Pagination.Total < 2 {
		t.Errorf("expected at least 2 properties, got %d", result.Pagination.Total)
	}
}

// TestNearbyProperties_Integration tests the geospatial query against a real database.
func TestNearbyProperties_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	// Isle of Dogs: 51.505, -0.019
	seedTestProperty(t, db, "Riverside studio", 51.505, -0.019)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/properties/nearby?lat=51.505&lon=-0.019&radius=5000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var properties []domain.Property
	if err := json.NewDecoder(resp.Body).Decode(&properties); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(properties) == 0 {
		t.Error("expected at least 1 nearby property, got 0")
	}
}

// TestPropertyCommutes_Integration runs the full aggregation path with real repos.
func TestPropertyCommutes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	userID := "integ_" + time.Now().Format("20060102150405")
	propertyID := seedTestProperty(t, db, "Commute test flat", 51.505, -0.019)
	seedTestDestination(t, db, userID, "Work")

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/properties/"+propertyID+"/commutes?user="+userID, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Complete bool                       `json:"complete"`
		Commutes map[string]*domain.Journey `json:"commutes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !result.Complete {
		t.Error("expected a complete aggregation")
	}
	if len(result.Commutes) != 1 {
		t.Errorf("expected 1 commute, got %d", len(result.Commutes))
	}
}
