package ports

import (
	"context"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// PropertyRepository persists rental listings.
type PropertyRepository interface {
	Upsert(ctx context.Context, property *domain.Property) error
	UpsertBatch(ctx context.Context, properties []domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, offset, limit int) ([]domain.Property, int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Property, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Property, error)
}

// DestinationRepository persists a user's saved destinations.
type DestinationRepository interface {
	Create(ctx context.Context, dest *domain.Destination) error
	ListByUser(ctx context.Context, userID string) ([]domain.Destination, error)
	GetByID(ctx context.Context, id string) (*domain.Destination, error)
	// SaveCoordinate persists coordinate enrichment for a destination.
	// Enrichment is otherwise scoped to a single aggregation run and is
	// only written back through this explicit call.
	SaveCoordinate(ctx context.Context, id string, loc domain.Coordinate) error
	ClearCoordinate(ctx context.Context, id string) error
	Reorder(ctx context.Context, userID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
}

// SearchRecordRepository persists settled free-text searches.
type SearchRecordRepository interface {
	Insert(ctx context.Context, rec *domain.SearchRecord) error
	RecentByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error)
}
