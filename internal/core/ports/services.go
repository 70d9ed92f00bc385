package ports

import (
	"context"

	"github.com/citysim/histmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSimulationUpdated(ctx context.Context, event *domain.SimulationUpdated) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSimulationUpdated(ctx context.Context, handler func(ctx context.Context, event *domain.SimulationUpdated) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, keys ...string) error
	// GetField and SetField address one field of a hash, so that every
	// variant stored under key can be dropped with a single Delete.
	GetField(ctx context.Context, key, field string) ([]byte, error)
	SetField(ctx context.Context, key, field string, value []byte, ttlSeconds int) error
}
