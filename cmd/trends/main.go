package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/nats"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/valkey"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/config"
)

const (
	trendingKey = "search:trending"
	trendingTTL = 86400 // seconds
	flushEvery  = 30 * time.Second
	topN        = 50
)

// trendEntry is one query with its resolution count.
type trendEntry struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// The trends worker consumes recorded searches from the durable stream and
// keeps a rolling top-N of resolved queries in the cache, which the app
// surfaces as search suggestions.
func main() {
	cfg, err := config.Load("ijar-trends")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	var mu sync.Mutex
	counts := make(map[string]int)

	// Seed from the previous snapshot so restarts don't reset the board
	if data, err := cache.Get(ctx, trendingKey); err == nil {
		var entries []trendEntry
		if json.Unmarshal(data, &entries) == nil {
			for _, e := range entries {
				counts[e.Query] = e.Count
			}
		}
	}

	err = sub.SubscribeSearchRecorded(ctx, func(ctx context.Context, rec *domain.SearchRecord) error {
		if rec.Outcome != "resolved" {
			return nil
		}
		query := domain.NormalizeQuery(rec.Query)
		if query == "" {
			return nil
		}
		mu.Lock()
		counts[query]++
		mu.Unlock()
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	log.Println("trends worker started")

	flush := func() {
		mu.Lock()
		entries := make([]trendEntry, 0, len(counts))
		for q, n := range counts {
			entries = append(entries, trendEntry{Query: q, Count: n})
		}
		mu.Unlock()

		sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
		if len(entries) > topN {
			entries = entries[:topN]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return
		}
		if err := cache.Set(ctx, trendingKey, data, trendingTTL); err != nil {
			log.Printf("flush trending: %v", err)
		}
	}

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			flush()
		case sig := <-quit:
			log.Printf("received signal %v, flushing and shutting down", sig)
			flush()
			cancel()
			return
		}
	}
}
