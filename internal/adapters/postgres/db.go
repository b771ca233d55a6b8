package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool

	stopMetrics chan struct{}
}

// New creates a new DB connection pool and starts periodic pool-stat
// reporting to Prometheus.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 50

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := &DB{Pool: pool, stopMetrics: make(chan struct{})}
	go db.reportPoolStats()
	return db, nil
}

func (db *DB) reportPoolStats() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		case <-db.stopMetrics:
			return
		}
	}
}

// Close releases pool resources.
func (db *DB) Close() {
	close(db.stopMetrics)
	db.Pool.Close()
}
