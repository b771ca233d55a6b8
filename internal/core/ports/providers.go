package ports

import (
	"context"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// GeocodingProvider turns free text or a postcode into a coordinate.
// Implementations must be safe for concurrent use. Errors are one of
// domain.ErrNoMatch, domain.ErrProviderUnavailable, domain.ErrMalformed
// (possibly wrapped). When the caller's context ends first, the context
// error is returned unchanged so callers can tell cancellation apart
// from provider failure.
type GeocodingProvider interface {
	Geocode(ctx context.Context, text string) (domain.Coordinate, error)
}

// JourneyProvider plans a transit journey between two coordinates.
// Implementations must be safe for concurrent use. Errors are one of
// domain.ErrNoRouteFound, domain.ErrProviderUnavailable, domain.ErrTimeout
// (possibly wrapped).
type JourneyProvider interface {
	PlanJourney(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error)
}
