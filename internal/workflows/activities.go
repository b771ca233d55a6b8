package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// ResolvedCoordinate is the serializable activity result for a geocode.
type ResolvedCoordinate struct {
	Lat float64
	Lon float64
}

// AlertActivities holds the activity implementations for the destination
// alert workflow.
type AlertActivities struct {
	Destinations ports.DestinationRepository
	Resolver     usecases.Resolver
	Notifier     ports.NotificationService
}

// ResolveDestination geocodes a destination's postcode or display name.
func (a *AlertActivities) ResolveDestination(ctx context.Context, destinationID string) (ResolvedCoordinate, error) {
	dest, err := a.Destinations.GetByID(ctx, destinationID)
	if err != nil {
		return ResolvedCoordinate{}, fmt.Errorf("get destination %s: %w", destinationID, err)
	}
	if dest.Location != nil {
		return ResolvedCoordinate{Lat: dest.Location.Lat, Lon: dest.Location.Lon}, nil
	}

	outcome := a.Resolver.Resolve(ctx, dest.GeocodeTarget())
	if !outcome.Resolved() {
		return ResolvedCoordinate{}, fmt.Errorf("resolve %q: %w", dest.GeocodeTarget(), outcome.Err)
	}
	return ResolvedCoordinate{Lat: outcome.Coordinate.Lat, Lon: outcome.Coordinate.Lon}, nil
}

// PersistCoordinate writes the resolved coordinate back to storage.
func (a *AlertActivities) PersistCoordinate(ctx context.Context, destinationID string, coord ResolvedCoordinate) error {
	loc := domain.Coordinate{Lat: coord.Lat, Lon: coord.Lon}
	if err := a.Destinations.SaveCoordinate(ctx, destinationID, loc); err != nil {
		return fmt.Errorf("save coordinate for %s: %w", destinationID, err)
	}
	return nil
}

// SendAlertNotification tells the user their destination is ready for
// commute calculations.
func (a *AlertActivities) SendAlertNotification(ctx context.Context, userID, displayName string) error {
	if a.Notifier == nil {
		log.Printf("PUSH (no notifier) → user=%s destination=%s", userID, displayName)
		return nil
	}
	title := "Destination ready"
	body := fmt.Sprintf("Commute times to %s are now shown on every listing.", displayName)
	return a.Notifier.SendPush(ctx, userID, title, body)
}

// ClearCoordinate removes the persisted coordinate (saga compensation).
func (a *AlertActivities) ClearCoordinate(ctx context.Context, destinationID string) error {
	if err := a.Destinations.ClearCoordinate(ctx, destinationID); err != nil {
		return fmt.Errorf("clear coordinate for %s: %w", destinationID, err)
	}
	log.Printf("Coordinate for %s cleared (saga compensation)", destinationID)
	return nil
}
