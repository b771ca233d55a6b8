package domain

import (
	"errors"
	"fmt"
)

// TransitMode selects which modes a journey plan may use.
type TransitMode string

const (
	ModeAll  TransitMode = "all"
	ModeBus  TransitMode = "bus"
	ModeRail TransitMode = "rail"
	ModeWalk TransitMode = "walk"
)

// LegMode is the mode of one journey leg.
type LegMode string

const (
	LegWalk  LegMode = "walk"
	LegBus   LegMode = "bus"
	LegRail  LegMode = "rail"
	LegOther LegMode = "other"
)

// Leg is one mode-homogeneous segment of a multi-modal journey.
type Leg struct {
	Mode            LegMode `json:"mode"`
	DurationMinutes int     `json:"duration_minutes"`
	LineName        string  `json:"line_name,omitempty"`
	Instruction     string  `json:"instruction"`
}

// Journey is an ordered sequence of legs between two coordinates.
// A journey always has at least one leg; use NewJourney to construct.
type Journey struct {
	Legs                 []Leg `json:"legs"`
	TotalDurationMinutes int   `json:"total_duration_minutes"`
}

// NewJourney builds a journey from its legs. A journey with zero legs is
// invalid and cannot be constructed.
func NewJourney(legs []Leg) (*Journey, error) {
	if len(legs) == 0 {
		return nil, errors.New("journey must have at least one leg")
	}
	total := 0
	for i, leg := range legs {
		if leg.DurationMinutes < 0 {
			return nil, fmt.Errorf("leg %d: negative duration", i)
		}
		total += leg.DurationMinutes
	}
	return &Journey{Legs: legs, TotalDurationMinutes: total}, nil
}
