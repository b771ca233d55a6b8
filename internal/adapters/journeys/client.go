// Package journeys implements ports.JourneyProvider against a TfL-style
// journey planner HTTP API.
package journeys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// Client is a stateless journey-planner client; it is safe for concurrent
// use. Results are never cached here: transit times depend on the time of
// day, so every plan is a fresh provider call.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a journey-planner client. timeout bounds each request.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type planResponse struct {
	Journeys []struct {
		Legs []struct {
			Mode            string `json:"mode"`
			DurationMinutes int    `json:"duration_minutes"`
			LineName        string `json:"line_name"`
			Instruction     string `json:"instruction"`
		} `json:"legs"`
	} `json:"journeys"`
}

// PlanJourney plans a journey between two coordinates and returns the
// first (fastest) itinerary offered by the provider.
func (c *Client) PlanJourney(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransitMode) (*domain.Journey, error) {
	endpoint := c.baseURL + "/journeys"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
	}

	q := url.Values{}
	q.Set("from", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	q.Set("to", fmt.Sprintf("%f,%f", destination.Lat, destination.Lon))
	q.Set("mode", string(mode))
	req.URL.RawQuery = q.Encode()
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, domain.ErrNoRouteFound
	default:
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var decoded planResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProviderUnavailable, err)
	}

	if len(decoded.Journeys) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	raw := decoded.Journeys[0]
	legs := make([]domain.Leg, 0, len(raw.Legs))
	for _, l := range raw.Legs {
		legs = append(legs, domain.Leg{
			Mode:            legMode(l.Mode),
			DurationMinutes: l.DurationMinutes,
			LineName:        l.LineName,
			Instruction:     l.Instruction,
		})
	}

	journey, err := domain.NewJourney(legs)
	if err != nil {
		return nil, domain.ErrNoRouteFound
	}
	return journey, nil
}

func legMode(mode string) domain.LegMode {
	switch mode {
	case "walk", "walking":
		return domain.LegWalk
	case "bus", "coach":
		return domain.LegBus
	case "rail", "train", "metro", "tram", "overground", "tube":
		return domain.LegRail
	default:
		return domain.LegOther
	}
}
