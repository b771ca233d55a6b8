package domain

// AggregationResult is one snapshot of a multi-destination journey
// aggregation. Journeys maps destination ID to a journey, or nil when that
// destination's resolution or journey lookup failed. Complete is monotonic
// within one generation: once true it never reverts, and a new generation
// starts a fresh result rather than mutating a completed one.
type AggregationResult struct {
	Generation uint64              `json:"generation"`
	Journeys   map[string]*Journey `json:"journeys"`
	InFlight   int                 `json:"in_flight"`
	Complete   bool                `json:"complete"`
}

// Clone returns a deep-enough copy for handing to subscribers: the map is
// copied, journey values are shared (they are never mutated after creation).
func (r AggregationResult) Clone() AggregationResult {
	out := r
	out.Journeys = make(map[string]*Journey, len(r.Journeys))
	for id, j := range r.Journeys {
		out.Journeys[id] = j
	}
	return out
}
