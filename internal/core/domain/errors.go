package domain

import "errors"

// Geocoding errors.
var (
	// ErrEmptyInput is returned when a geocode query is empty or whitespace-only.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoMatch is returned when the provider responded but found nothing.
	// Callers should render this distinctly from ErrProviderUnavailable.
	ErrNoMatch = errors.New("no match for query")

	// ErrProviderUnavailable is returned on network or transport failure.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformed is returned when a provider response cannot be parsed.
	ErrMalformed = errors.New("malformed provider response")
)

// Journey planning errors.
var (
	// ErrNoRouteFound is returned when no transit route exists between two points.
	ErrNoRouteFound = errors.New("no route found")

	// ErrTimeout is returned when a provider call exceeded its deadline.
	ErrTimeout = errors.New("provider timeout")
)

// ErrStale marks a result from a superseded generation. It is internal:
// stale results are dropped silently and never surfaced to callers.
var ErrStale = errors.New("stale generation")

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")
