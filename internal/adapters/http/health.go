package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "ijar-api",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler reports readiness based on database, broker, and cache
// connectivity. The database is required; NATS and Valkey are optional at
// startup and only fail readiness once configured but unreachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		ready := true

		fail := func(name, detail string) {
			checks[name] = detail
			ready = false
		}

		if deps.DB == nil {
			fail("database", "not configured")
		} else if err := deps.DB.Pool.Ping(ctx); err != nil {
			fail("database", "error: "+err.Error())
		} else {
			checks["database"] = "ok"
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			fail("nats", "disconnected")
		}

		if deps.Cache == nil {
			checks["cache"] = "not configured"
		} else {
			_, err := deps.Cache.Get(ctx, "__health_check__")
			// A missing key reads as "valkey nil message"; that means the
			// cache answered, which is all readiness cares about.
			if err != nil && err.Error() != "valkey nil message" {
				fail("cache", "error: "+err.Error())
			} else {
				checks["cache"] = "ok"
			}
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
