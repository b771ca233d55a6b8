package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// CatalogStats holds row counts across the listing tables.
type CatalogStats struct {
	Properties    int    `json:"properties"`
	Destinations  int    `json:"destinations"`
	SearchRecords int    `json:"search_records"`
	LastListing   string `json:"last_listing,omitempty"`
}

// StatsHandler returns row counts from the catalog tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM properties),
				(SELECT count(*) FROM destinations),
				(SELECT count(*) FROM search_records),
				COALESCE((SELECT max(created_at)::text FROM properties), '')
		`)
		if err := row.Scan(&stats.Properties, &stats.Destinations,
			&stats.SearchRecords, &stats.LastListing); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListPropertiesHandler returns a page of listings, newest first.
func ListPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		properties, total, err := deps.Properties.List(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: properties, Pagination: pg})
	}
}

// SearchPropertiesHandler performs fuzzy search on listing titles and addresses.
func SearchPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		properties, err := deps.Properties.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(properties)
	}
}

// NearbyPropertiesHandler returns listings within a radius of a point.
func NearbyPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 20000 {
			return errBadRequest(c, "radius must be between 1 and 20000 meters")
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		properties, err := deps.Properties.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(properties)
	}
}

// GetPropertyHandler returns a single listing by ID.
func GetPropertyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "property id is required")
		}
		property, err := deps.Properties.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "property not found")
		}
		return c.JSON(property)
	}
}

// commuteResponse is the REST form of a finished aggregation.
type commuteResponse struct {
	Generation uint64                     `json:"generation"`
	Complete   bool                       `json:"complete"`
	Commutes   map[string]*domain.Journey `json:"commutes"`
}

// PropertyCommutesHandler runs commute aggregation from a listing to every
// saved destination of the user and returns the final snapshot. Clients
// that want intermediate snapshots subscribe over WebSocket instead.
func PropertyCommutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "property id is required")
		}
		userID := c.Query("user")
		if userID == "" {
			return errBadRequest(c, "user query parameter is required")
		}

		snapshots, err := deps.Commutes.CommutesForProperty(c.Context(), id, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "property not found")
			}
			return errInternal(c, err.Error())
		}

		final, ok := usecases.Final(snapshots)
		if !ok {
			// A newer request for the same listing superseded this run.
			return errConflict(c, "aggregation superseded by a newer request")
		}

		return c.JSON(commuteResponse{
			Generation: final.Generation,
			Complete:   final.Complete,
			Commutes:   final.Journeys,
		})
	}
}

// CommuteHandler runs a one-off commute aggregation from an arbitrary
// origin, for callers that already hold a coordinate.
func CommuteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		userID := c.Query("user")

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if userID == "" {
			return errBadRequest(c, "user query parameter is required")
		}

		snapshots, err := deps.Commutes.Commute(c.Context(), domain.Coordinate{Lat: lat, Lon: lon}, userID)
		if err != nil {
			return errInternal(c, err.Error())
		}

		final, ok := usecases.Final(snapshots)
		if !ok {
			return errConflict(c, "aggregation superseded by a newer request")
		}

		return c.JSON(commuteResponse{
			Generation: final.Generation,
			Complete:   final.Complete,
			Commutes:   final.Journeys,
		})
	}
}

// ResolveLocationHandler geocodes free text into a coordinate.
func ResolveLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		outcome := deps.Resolver.Resolve(c.Context(), query)
		switch {
		case errors.Is(outcome.Err, domain.ErrEmptyInput):
			return errBadRequest(c, "q query parameter is required")
		case errors.Is(outcome.Err, domain.ErrNoMatch):
			return errNotFound(c, "no location matches the query")
		case errors.Is(outcome.Err, domain.ErrProviderUnavailable):
			return errUnavailable(c, "geocoding provider unavailable")
		case errors.Is(outcome.Err, domain.ErrMalformed):
			return errBadGateway(c, "geocoding provider returned a malformed response")
		case outcome.Err != nil:
			return errInternal(c, outcome.Err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"query":      outcome.Query,
			"coordinate": outcome.Coordinate,
		})
	}
}

// createDestinationRequest is the POST body for saving a destination.
type createDestinationRequest struct {
	UserID      string             `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Postcode    string             `json:"postcode"`
	Location    *domain.Coordinate `json:"location"`
}

// CreateDestinationHandler saves a new destination for a user.
func CreateDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDestinationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.UserID == "" || req.DisplayName == "" {
			return errBadRequest(c, "user_id and display_name are required")
		}

		dest, err := deps.Destinations.Create(c.Context(), req.UserID, req.DisplayName, req.Postcode, req.Location)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(dest)
	}
}

// ListDestinationsHandler returns a user's destinations in saved order.
func ListDestinationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Query("user")
		if userID == "" {
			return errBadRequest(c, "user query parameter is required")
		}
		dests, err := deps.Destinations.ListByUser(c.Context(), userID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(dests)
	}
}

// reorderDestinationsRequest is the POST body for reordering destinations.
type reorderDestinationsRequest struct {
	UserID     string   `json:"user_id"`
	OrderedIDs []string `json:"ordered_ids"`
}

// ReorderDestinationsHandler applies a new ordering of a user's destinations.
func ReorderDestinationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reorderDestinationsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.UserID == "" || len(req.OrderedIDs) == 0 {
			return errBadRequest(c, "user_id and ordered_ids are required")
		}

		if err := deps.Destinations.Reorder(c.Context(), req.UserID, req.OrderedIDs); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// EnrichDestinationHandler resolves a destination's coordinate and
// persists it.
func EnrichDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "destination id is required")
		}

		dest, err := deps.Destinations.Enrich(c.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return errNotFound(c, "destination not found")
			case errors.Is(err, domain.ErrNoMatch):
				return errNotFound(c, "no location matches the destination")
			case errors.Is(err, domain.ErrProviderUnavailable):
				return errUnavailable(c, "geocoding provider unavailable")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(dest)
	}
}

// DeleteDestinationHandler removes a destination.
func DeleteDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "destination id is required")
		}
		if err := deps.Destinations.Delete(c.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "destination not found")
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// RecentSearchesHandler returns the user's latest settled searches.
func RecentSearchesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Query("user")
		if userID == "" {
			return errBadRequest(c, "user query parameter is required")
		}
		limit := c.QueryInt("limit", 10)

		records, err := deps.History.Recent(c.Context(), userID, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("X-Result-Count", strconv.Itoa(len(records)))
		return c.JSON(records)
	}
}
