package domain

import (
	"time"
)

// Property represents a rental listing.
type Property struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Address      string         `json:"address"`
	Postcode     string         `json:"postcode,omitempty"`
	MonthlyRent  int            `json:"monthly_rent"` // minor units per month
	Currency     string         `json:"currency"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    int            `json:"bathrooms"`
	Furnished    bool           `json:"furnished"`
	Location     Coordinate     `json:"location"`
	Lister       string         `json:"lister,omitempty"`
	ImageURLs    []string       `json:"image_urls,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Distance     *float64       `json:"distance,omitempty"` // computed field
	AvailableAt  time.Time      `json:"available_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Destination is a user-owned saved location (work, gym, school).
// It may exist without a coordinate: records imported from storage are
// enriched lazily, and two destinations with the same address but different
// IDs are resolved independently.
type Destination struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Postcode    string      `json:"postcode,omitempty"`
	Location    *Coordinate `json:"location,omitempty"`
	Position    int         `json:"position"`
	CreatedAt   time.Time   `json:"created_at"`
}

// GeocodeTarget returns the text used to resolve this destination's
// coordinate: the postcode when present, otherwise the display name.
func (d Destination) GeocodeTarget() string {
	if d.Postcode != "" {
		return d.Postcode
	}
	return d.DisplayName
}

// SearchRecord is one settled free-text location search by a user.
type SearchRecord struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Query     string      `json:"query"`
	Outcome   string      `json:"outcome"` // "resolved" | "no_match" | "error"
	Location  *Coordinate `json:"location,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
