package storage

import (
	"context"
	"errors"

	"github.com/kal997/file-interest-server/internal/models"
)

var (
	// ErrNotFound is returned by Get when no file of that name exists
	ErrNotFound = errors.New("file not found")

	// ErrStorageFault wraps failures of the underlying medium
	ErrStorageFault = errors.New("storage fault")
)

// Store defines the backend-agnostic file store.
// Put replaces a file atomically: concurrent readers see either the
// previous content or the new one, never a mix.
type Store interface {
	// Put saves content under name, overwriting any previous file
	Put(ctx context.Context, name string, content []byte) error

	// Get returns the file stored under name or ErrNotFound
	Get(ctx context.Context, name string) (*models.File, error)

	// List returns the stored filenames in lexical order
	List(ctx context.Context) ([]string, error)

	// HealthCheck verifies storage connectivity
	HealthCheck(ctx context.Context) error

	// Close closes the storage connection
	Close() error
}
