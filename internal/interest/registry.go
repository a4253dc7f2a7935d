// Package interest tracks time-limited subscriptions to filenames and turns
// uploads into notification events.
//
// Expiry is lazy: a filename's list is pruned whenever Register, Pending or
// DrainActive touch it. Sweep exists only to bound memory for filenames that
// are never touched again.
package interest

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kal997/file-interest-server/internal/models"
)

// ErrInvalidDuration is returned by Register for durations outside 1..MaxDurationSeconds
var ErrInvalidDuration = errors.New("invalid duration")

// MaxDurationSeconds is the longest interest a time.Duration can hold
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Option configures a Registry
type Option func(*Registry)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithIDGenerator replaces the random subscription id source
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		r.newID = newID
	}
}

// Registry holds the outstanding subscriptions per filename.
// A single mutex guards the map; it is never held across I/O.
type Registry struct {
	mu    sync.Mutex
	subs  map[string][]models.Subscription
	now   func() time.Time
	newID func() string
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		subs:  make(map[string][]models.Subscription),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a subscription for filename valid for durationSeconds.
// The file does not need to exist yet.
func (r *Registry) Register(filename string, durationSeconds int64) (models.Subscription, error) {
	if durationSeconds <= 0 {
		return models.Subscription{}, fmt.Errorf("%w: %d seconds (must be greater than 0)", ErrInvalidDuration, durationSeconds)
	}
	if durationSeconds > MaxDurationSeconds {
		return models.Subscription{}, fmt.Errorf("%w: %d seconds (must be at most %d)", ErrInvalidDuration, durationSeconds, MaxDurationSeconds)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	sub := models.Subscription{
		ID:        r.newID(),
		Filename:  filename,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(durationSeconds) * time.Second),
	}

	active := r.pruneLocked(filename, now)
	r.subs[filename] = append(active, sub)
	return sub, nil
}

// Cancel drops every subscription for filename and returns how many there were.
// Cancelling an unknown filename is a no-op.
func (r *Registry) Cancel(filename string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.subs[filename])
	delete(r.subs, filename)
	return n
}

// DrainActive removes every subscription for filename, expired or not,
// and returns the ones still active.
func (r *Registry) DrainActive(filename string) []models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	active := r.pruneLocked(filename, now)
	delete(r.subs, filename)
	return active
}

// Pending prunes expired subscriptions for filename and returns the active count
func (r *Registry) Pending(filename string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pruneLocked(filename, r.now()))
}

// Sweep removes expired subscriptions of every filename and returns how many were removed
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for filename, subs := range r.subs {
		active := r.pruneLocked(filename, now)
		removed += len(subs) - len(active)
	}
	return removed
}

// Len returns the number of stored subscriptions, expired ones included
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, subs := range r.subs {
		n += len(subs)
	}
	return n
}

// pruneLocked drops expired entries for filename in place and returns the
// survivors. Empty lists are deleted from the map. r.mu must be held.
func (r *Registry) pruneLocked(filename string, now time.Time) []models.Subscription {
	subs, ok := r.subs[filename]
	if !ok {
		return nil
	}

	active := subs[:0]
	for _, sub := range subs {
		if sub.State(now) == models.Active {
			active = append(active, sub)
		}
	}
	// Clear the tail so dropped entries can be collected
	for i := len(active); i < len(subs); i++ {
		subs[i] = models.Subscription{}
	}

	if len(active) == 0 {
		delete(r.subs, filename)
		return nil
	}
	r.subs[filename] = active
	return active
}
