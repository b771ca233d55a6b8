package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	natsadapter "github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/nats"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/postgres"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/config"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source  string      `json:"source"`
	Listers []FeedEntry `json:"listers"`
}

type FeedEntry struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	FeedURL string `json:"feed_url"`
}

// feedListing is the wire form of one listing in a lister's feed.
type feedListing struct {
	Ref         string   `json:"ref"`
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Postcode    string   `json:"postcode"`
	MonthlyRent int      `json:"monthly_rent"` // minor units
	Currency    string   `json:"currency"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Furnished   bool     `json:"furnished"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	ImageURLs   []string `json:"image_urls"`
	AvailableAt string   `json:"available_at"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("ijar-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPropertyRepo(db)

	// Broadcast new listings so connected clients refresh
	var publisher *natsadapter.Publisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		log.Printf("nats unavailable, skipping broadcasts: %v", err)
	} else {
		publisher = pub
		defer publisher.Close()
	}

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Ijar listings ingestor — %d listers from %s", len(manifest.Listers), manifest.Source)

	// Filter listers (optional CLI arg: slug list)
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	total := 0
	for _, lister := range manifest.Listers {
		if len(slugFilter) > 0 && !slugFilter[lister.Slug] {
			continue
		}
		n, err := ingestLister(ctx, repo, client, lister)
		if err != nil {
			log.Printf("ERROR [%s]: %v", lister.Slug, err)
			continue
		}
		total += n
	}

	if publisher != nil && total > 0 {
		msg, _ := json.Marshal(map[string]any{"event": "listings_updated", "count": total})
		_ = publisher.PublishBroadcast(ctx, msg)
	}

	log.Printf("ingestion complete: %d listings", total)
}

// ---------------------------------------------------------------------------
// Per-lister ingestion
// ---------------------------------------------------------------------------

func ingestLister(ctx context.Context, repo *postgres.PropertyRepo, client *http.Client, lister FeedEntry) (int, error) {
	log.Printf("[%s] downloading feed from %s", lister.Slug, lister.FeedURL)

	resp, err := client.Get(lister.FeedURL)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d for %s", resp.StatusCode, lister.FeedURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	var listings []feedListing
	if err := json.Unmarshal(body, &listings); err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}

	properties := make([]domain.Property, 0, len(listings))
	for _, l := range listings {
		if l.Lat == 0 && l.Lon == 0 {
			// A listing without a coordinate can't appear on the map or in
			// commute aggregations; skip it.
			continue
		}
		availableAt := time.Now()
		if l.AvailableAt != "" {
			if t, err := time.Parse("2006-01-02", l.AvailableAt); err == nil {
				availableAt = t
			}
		}
		properties = append(properties, domain.Property{
			// Deterministic ID per lister+ref so re-runs upsert in place
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(lister.Slug+"/"+l.Ref)).String(),
			Title:       l.Title,
			Address:     l.Address,
			Postcode:    l.Postcode,
			MonthlyRent: l.MonthlyRent,
			Currency:    l.Currency,
			Bedrooms:    l.Bedrooms,
			Bathrooms:   l.Bathrooms,
			Furnished:   l.Furnished,
			Location:    domain.Coordinate{Lat: l.Lat, Lon: l.Lon},
			Lister:      lister.Slug,
			ImageURLs:   l.ImageURLs,
			Metadata:    map[string]any{"source_ref": l.Ref},
			AvailableAt: availableAt,
			CreatedAt:   time.Now(),
		})
	}

	if len(properties) == 0 {
		log.Printf("[%s] no usable listings", lister.Slug)
		return 0, nil
	}

	if err := repo.UpsertBatch(ctx, properties); err != nil {
		return 0, fmt.Errorf("upsert batch: %w", err)
	}

	log.Printf("[%s] %d listings", lister.Slug, len(properties))
	return len(properties), nil
}
