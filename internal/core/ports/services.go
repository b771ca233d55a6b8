package ports

import (
	"context"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSearchRecorded(ctx context.Context, rec *domain.SearchRecord) error
	PublishAggregationSnapshot(ctx context.Context, propertyID string, snapshot domain.AggregationResult) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSearchRecorded(ctx context.Context, handler func(ctx context.Context, rec *domain.SearchRecord) error) error
	SubscribeAggregationSnapshots(ctx context.Context, handler func(ctx context.Context, propertyID string, snapshot domain.AggregationResult) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, userID, title, body string) error
}
