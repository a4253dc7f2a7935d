package notifier

import (
	"context"

	"github.com/kal997/file-interest-server/internal/models"
)

// Deliverer pushes notification events to whoever is waiting for them.
// Delivery is best effort: callers log the error and move on.
type Deliverer interface {
	Deliver(ctx context.Context, events []models.NotificationEvent) error
}

// Subscriber receives notification events published by another process
type Subscriber interface {
	Subscribe(ctx context.Context, patterns []string) (<-chan models.NotificationEvent, error)
	Unsubscribe(patterns []string) error
	HealthCheck(ctx context.Context) error
	Close() error
}
