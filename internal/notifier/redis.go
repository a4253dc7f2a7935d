package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kal997/file-interest-server/internal/models"
)

// RedisNotifier publishes notification events on Redis pub/sub and
// subscribes to them from other processes
type RedisNotifier struct {
	client *redis.Client

	mu       sync.Mutex
	pubsub   *redis.PubSub
	patterns []string
}

// NewRedisNotifier creates a new Redis notifier
func NewRedisNotifier(addr string) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		client: client,
	}, nil
}

// Deliver publishes each event as JSON on the channel of its filename
func (rn *RedisNotifier) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	var errs []error
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode notification for %s: %w", event.Filename, err))
			continue
		}
		if err := rn.client.Publish(ctx, event.Channel(), payload).Err(); err != nil {
			errs = append(errs, fmt.Errorf("failed to publish notification for %s: %w", event.Filename, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe to notifications for filenames matching the glob patterns
func (rn *RedisNotifier) Subscribe(ctx context.Context, patterns []string) (<-chan models.NotificationEvent, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns provided")
	}

	channelPatterns := toChannelPatterns(patterns)

	pubsub := rn.client.PSubscribe(ctx, channelPatterns...)

	// Wait for the confirmation so nothing published after Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	rn.mu.Lock()
	rn.pubsub = pubsub
	rn.patterns = channelPatterns
	rn.mu.Unlock()

	// Create event buffered channel
	eventChan := make(chan models.NotificationEvent, 100)
	messages := pubsub.Channel()

	go func() {
		defer close(eventChan)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				event := rn.parseMessage(msg)
				if event != nil {
					select {
					case eventChan <- *event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return eventChan, nil
}

// parseMessage converts a Redis message to a NotificationEvent.
// Messages on foreign channels or with an undecodable payload are skipped.
func (rn *RedisNotifier) parseMessage(msg *redis.Message) *models.NotificationEvent {
	if msg == nil {
		return nil
	}

	prefix := models.NotificationChannel("")
	if !strings.HasPrefix(msg.Channel, prefix) {
		return nil
	}

	var event models.NotificationEvent
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		return nil
	}
	if event.Filename == "" {
		event.Filename = strings.TrimPrefix(msg.Channel, prefix)
	}
	if event.NotifiedAt.IsZero() {
		event.NotifiedAt = time.Now()
	}
	return &event
}

// Unsubscribe from patterns
func (rn *RedisNotifier) Unsubscribe(patterns []string) error {
	rn.mu.Lock()
	pubsub := rn.pubsub
	rn.mu.Unlock()

	if pubsub == nil {
		return fmt.Errorf("not subscribed")
	}

	return pubsub.PUnsubscribe(context.Background(), toChannelPatterns(patterns)...)
}

// HealthCheck verifies Redis connectivity
func (rn *RedisNotifier) HealthCheck(ctx context.Context) error {
	return rn.client.Ping(ctx).Err()
}

// Close closes the notifier and cleans up resources
func (rn *RedisNotifier) Close() error {
	var err error

	rn.mu.Lock()
	if rn.pubsub != nil {
		err = rn.pubsub.Close()
		rn.pubsub = nil
	}
	rn.mu.Unlock()

	if rn.client != nil {
		if closeErr := rn.client.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}

func toChannelPatterns(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, pattern := range patterns {
		out[i] = models.NotificationChannel(pattern)
	}
	return out
}
