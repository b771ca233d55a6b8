package domain

import "strings"

// NormalizeQuery produces the canonical cache key for a geocode query.
// Whitespace is trimmed; case is preserved because providers may be
// case-sensitive for postcodes.
func NormalizeQuery(text string) string {
	return strings.TrimSpace(text)
}

// GeocodeOutcome is the settled result of resolving one query: either a
// coordinate or a typed error, never both.
type GeocodeOutcome struct {
	Query      string      `json:"query"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Err        error       `json:"-"`
}

// Resolved reports whether the outcome carries a coordinate.
func (o GeocodeOutcome) Resolved() bool {
	return o.Err == nil && o.Coordinate != nil
}
