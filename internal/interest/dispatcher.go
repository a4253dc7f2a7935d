package interest

import (
	"time"

	"github.com/kal997/file-interest-server/internal/models"
)

// Dispatcher matches uploads against the registry
type Dispatcher struct {
	registry *Registry
	now      func() time.Time
}

// NewDispatcher creates a dispatcher draining registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		now:      registry.now,
	}
}

// OnUploaded consumes every subscription for filename and returns one event
// per subscription that was still active. The result is empty, never nil,
// when nobody was waiting.
func (d *Dispatcher) OnUploaded(filename string) []models.NotificationEvent {
	active := d.registry.DrainActive(filename)

	now := d.now()
	events := make([]models.NotificationEvent, 0, len(active))
	for _, sub := range active {
		events = append(events, models.NotificationEvent{
			Filename:       filename,
			SubscriptionID: sub.ID,
			NotifiedAt:     now,
		})
	}
	return events
}
