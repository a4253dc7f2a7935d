package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kal997/file-interest-server/internal/models"
)

const timestampFormat = "2006-01-02 15:04:05.000000"

// syncWriter is the part of *os.File the audit log needs
type syncWriter interface {
	WriteString(s string) (int, error)
	Sync() error
	Close() error
}

// FileLogger implements Logger as an append-only audit file
type FileLogger struct {
	file   syncWriter
	mutex  sync.Mutex
	closed bool
}

// NewFileLogger opens logfile for appending, creating its directory if needed
func NewFileLogger(logfile string) (*FileLogger, error) {
	if dir := filepath.Dir(logfile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileLogger{
		file: file,
	}, nil
}

// Log writes a timestamped message to the file
func (fl *FileLogger) Log(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	if fl.closed {
		return fmt.Errorf("logger is closed")
	}

	logLine := fmt.Sprintf("%s - %s\n", time.Now().Format(timestampFormat), message)

	if _, err := fl.file.WriteString(logLine); err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}

	// Ensure data is written to disk
	if err := fl.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return nil
}

// LogEvent records a delivered notification
func (fl *FileLogger) LogEvent(ctx context.Context, event models.NotificationEvent) error {
	message := fmt.Sprintf("file available: %s", event.Filename)
	if event.SubscriptionID != "" {
		message += fmt.Sprintf(" subscription=%s", event.SubscriptionID)
	}
	if !event.NotifiedAt.IsZero() {
		message += fmt.Sprintf(" notified_at=%s", event.NotifiedAt.UTC().Format(time.RFC3339Nano))
	}
	return fl.Log(ctx, message)
}

// Close closes the log file
func (fl *FileLogger) Close() error {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	if fl.closed {
		return nil
	}

	fl.closed = true
	return fl.file.Close()
}
