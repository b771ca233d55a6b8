package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // Handler path pattern
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

// deprecatedRoutes lists endpoints retired from earlier API revisions.
// The journeys alias predates the commute aggregation rework.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/journeys",
		SunsetDate:  time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/commutes",
	},
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
// This helps clients migrate gracefully to newer API versions.
func DeprecationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if this route is deprecated
		for _, d := range deprecatedRoutes {
			if c.Path() == d.Path {
				// RFC 8594 Deprecation header
				c.Set("Deprecation", "true")

				// RFC 8594 Sunset header (HTTP-Date format)
				c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

				// RFC 8288 Link header with deprecation info
				if d.Alternative != "" {
					c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
				}

				// Warning header (optional, RFC 7234)
				days := time.Until(d.SunsetDate).Hours() / 24
				c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

				break
			}
		}

		return c.Next()
	}
}
