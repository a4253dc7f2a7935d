package models

import (
	"fmt"
	"time"
)

// SubscriptionState is the lifecycle state of a Subscription.
// Every state except Active is terminal.
type SubscriptionState int

const (
	Active SubscriptionState = iota + 1
	Expired
	Fulfilled
	Cancelled
)

func (s SubscriptionState) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Fulfilled:
		return "fulfilled"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Subscription is a time-limited interest in a filename
type Subscription struct {
	// Random identifier, informational only
	ID string `json:"id"`

	// The filename the subscriber waits for
	Filename string `json:"filename"`

	// When the interest was registered
	CreatedAt time.Time `json:"created_at"`

	// Last instant at which the interest may still fire
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the subscription can still fire at now.
// A subscription whose expiry equals now is still active.
func (s Subscription) Active(now time.Time) bool {
	return !now.After(s.ExpiresAt)
}

// State returns Active or Expired depending on now.
// Fulfilled and Cancelled are assigned by whoever removes the subscription.
func (s Subscription) State(now time.Time) SubscriptionState {
	if s.Active(now) {
		return Active
	}
	return Expired
}

// NotificationEvent is emitted once per fulfilled subscription
type NotificationEvent struct {
	Filename       string    `json:"filename"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	NotifiedAt     time.Time `json:"notified_at"`
}

// Channel returns the Redis pub/sub channel the event is published on
func (e NotificationEvent) Channel() string {
	// Format: fileserver:notify:{filename}
	return NotificationChannel(e.Filename)
}

// NotificationChannel returns the pub/sub channel for a filename or pattern
func NotificationChannel(filename string) string {
	return fmt.Sprintf("fileserver:notify:%s", filename)
}
