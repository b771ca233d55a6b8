package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
)

// DestinationService manages a user's saved destinations.
type DestinationService struct {
	destinations ports.DestinationRepository
	resolver     Resolver
}

// NewDestinationService creates a new DestinationService.
func NewDestinationService(destinations ports.DestinationRepository, resolver Resolver) *DestinationService {
	return &DestinationService{destinations: destinations, resolver: resolver}
}

// Create saves a new destination. A coordinate is optional: destinations
// without one are resolved lazily during aggregation.
func (s *DestinationService) Create(ctx context.Context, userID, displayName, postcode string, loc *domain.Coordinate) (*domain.Destination, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if displayName == "" {
		return nil, fmt.Errorf("display name is required")
	}

	existing, err := s.destinations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}

	dest := &domain.Destination{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		Postcode:    postcode,
		Location:    loc,
		Position:    len(existing),
		CreatedAt:   time.Now(),
	}
	if err := s.destinations.Create(ctx, dest); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	return dest, nil
}

// ListByUser returns the user's destinations in saved order.
func (s *DestinationService) ListByUser(ctx context.Context, userID string) ([]domain.Destination, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.destinations.ListByUser(ctx, userID)
}

// Enrich resolves a destination's coordinate and persists it. This is the
// only path that writes run-time resolution back into storage.
func (s *DestinationService) Enrich(ctx context.Context, id string) (*domain.Destination, error) {
	dest, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get destination %s: %w", id, err)
	}
	if dest.Location != nil {
		return dest, nil
	}

	outcome := s.resolver.Resolve(ctx, dest.GeocodeTarget())
	if !outcome.Resolved() {
		return nil, fmt.Errorf("resolve %q: %w", dest.GeocodeTarget(), outcome.Err)
	}

	if err := s.destinations.SaveCoordinate(ctx, id, *outcome.Coordinate); err != nil {
		return nil, fmt.Errorf("save coordinate: %w", err)
	}
	dest.Location = outcome.Coordinate
	return dest, nil
}

// ClearCoordinate removes a persisted coordinate, reverting the
// destination to lazy resolution.
func (s *DestinationService) ClearCoordinate(ctx context.Context, id string) error {
	return s.destinations.ClearCoordinate(ctx, id)
}

// Reorder applies a new ordering of the user's destinations.
func (s *DestinationService) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if len(orderedIDs) == 0 {
		return fmt.Errorf("ordered ids are required")
	}
	return s.destinations.Reorder(ctx, userID, orderedIDs)
}

// Delete removes a destination.
func (s *DestinationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("destination id is required")
	}
	return s.destinations.Delete(ctx, id)
}
