package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Sunset headers for retired endpoints
	app.Use(DeprecationMiddleware())

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout, 30s for commute fan-out
	v1 := app.Group("/v1")
	v1.Get("/properties", timeout.NewWithContext(ListPropertiesHandler(deps), 15*time.Second))
	v1.Get("/properties/search", timeout.NewWithContext(SearchPropertiesHandler(deps), 15*time.Second))
	v1.Get("/properties/nearby", timeout.NewWithContext(NearbyPropertiesHandler(deps), 15*time.Second))
	v1.Get("/properties/:id", timeout.NewWithContext(GetPropertyHandler(deps), 15*time.Second))
	v1.Get("/properties/:id/commutes", timeout.NewWithContext(PropertyCommutesHandler(deps), 30*time.Second))

	// One-off commutes from an arbitrary origin (map screen)
	v1.Get("/commutes", timeout.NewWithContext(CommuteHandler(deps), 30*time.Second))

	// Deprecated alias kept until sunset, see deprecation.go
	v1.Get("/journeys", timeout.NewWithContext(CommuteHandler(deps), 30*time.Second))

	// Geocoding
	v1.Get("/locations/resolve", timeout.NewWithContext(ResolveLocationHandler(deps), 15*time.Second))

	// Saved destinations
	v1.Post("/destinations", timeout.NewWithContext(CreateDestinationHandler(deps), 15*time.Second))
	v1.Get("/destinations", timeout.NewWithContext(ListDestinationsHandler(deps), 15*time.Second))
	v1.Post("/destinations/reorder", timeout.NewWithContext(ReorderDestinationsHandler(deps), 15*time.Second))
	v1.Post("/destinations/:id/enrich", timeout.NewWithContext(EnrichDestinationHandler(deps), 15*time.Second))
	v1.Delete("/destinations/:id", timeout.NewWithContext(DeleteDestinationHandler(deps), 15*time.Second))

	// Search history
	v1.Get("/searches/recent", timeout.NewWithContext(RecentSearchesHandler(deps), 15*time.Second))

	// Catalog stats
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
