package logger

import (
	"context"

	"github.com/kal997/file-interest-server/internal/models"
)

// Logger defines the interface of the notification audit log
type Logger interface {
	// Log writes a message to the logger
	Log(ctx context.Context, message string) error

	// LogEvent writes one line describing a notification event
	LogEvent(ctx context.Context, event models.NotificationEvent) error

	// Close closes the logger and any resources
	Close() error
}
