package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/geocoding"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/http"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/journeys"
	natsadapter "github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/nats"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/postgres"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/valkey"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/config"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/logging"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("ijar-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache (optional — the API degrades to uncached reads without it)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS (optional — snapshots and search events go unpublished without it)
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// External providers
	geocoder := geocoding.New(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout())
	planner := journeys.New(cfg.Journeys.BaseURL, cfg.Journeys.APIKey, cfg.Journeys.Timeout())

	// Repos
	propertyRepo := postgres.NewPropertyRepo(db)
	destinationRepo := postgres.NewDestinationRepo(db)
	recordRepo := postgres.NewSearchRecordRepo(db)

	// Use cases
	resolver := usecases.NewGeocodeService(geocoder, cacheSvc)
	propertySvc := usecases.NewPropertyService(propertyRepo, cacheSvc)
	destinationSvc := usecases.NewDestinationService(destinationRepo, resolver)
	commuteSvc := usecases.NewCommuteService(propertyRepo, destinationRepo, planner, resolver, publisher, cfg.Commute.CallTimeout())
	historySvc := usecases.NewSearchHistoryService(recordRepo, publisher)

	deps := &http.Dependencies{
		Properties:   propertySvc,
		Destinations: destinationSvc,
		Commutes:     commuteSvc,
		History:      historySvc,
		Resolver:     resolver,
		Debounce:     cfg.Search.Debounce(),
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Ijar API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.ijar.app",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
