// Package geocoding implements ports.GeocodingProvider against a
// Pelias-style forward geocoding HTTP API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// Client is a stateless geocoding client; it is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a geocoding client. timeout bounds each request.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves free text or a postcode to a coordinate.
func (c *Client) Geocode(ctx context.Context, text string) (domain.Coordinate, error) {
	endpoint := c.baseURL + "/search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("size", "1")
	req.URL.RawQuery = q.Encode()
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The caller's context ending is not a provider failure; return the
		// context error raw. The client's own timeout leaves ctx live and
		// maps to unavailability below.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Coordinate{}, ctxErr
		}
		return domain.Coordinate{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return domain.Coordinate{}, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	default:
		return domain.Coordinate{}, fmt.Errorf("%w: status %d", domain.ErrMalformed, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: decode: %v", domain.ErrMalformed, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinate{}, domain.ErrNoMatch
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinate{}, fmt.Errorf("%w: coordinate pair expected, got %d values", domain.ErrMalformed, len(coords))
	}

	return domain.Coordinate{Lat: coords[1], Lon: coords[0]}, nil
}
