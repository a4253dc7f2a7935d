package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kal997/file-interest-server/internal/models"
)

// DiskStore implements Store as a flat directory of files
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if needed and returns a store rooted there
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Put writes content to a temp file and renames it over name
func (ds *DiskStore) Put(ctx context.Context, name string, content []byte) error {
	if err := models.ValidateFilename(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(ds.dir, models.StagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorageFault, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorageFault, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrStorageFault, name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorageFault, name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrStorageFault, name, err)
	}
	if err := os.Rename(tmpName, ds.path(name)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrStorageFault, name, err)
	}
	committed = true
	return nil
}

// Get reads the whole file
func (ds *DiskStore) Get(ctx context.Context, name string) (*models.File, error) {
	if err := models.ValidateFilename(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(ds.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageFault, name, err)
	}
	return &models.File{Name: name, Content: content}, nil
}

// List returns regular files in the directory, skipping staged uploads
func (ds *DiskStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ds.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read directory: %v", ErrStorageFault, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), models.StagingPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// HealthCheck verifies the directory is still reachable
func (ds *DiskStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(ds.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFault, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStorageFault, ds.dir)
	}
	return nil
}

// Close is a no-op for the directory backend
func (ds *DiskStore) Close() error {
	return nil
}

func (ds *DiskStore) path(name string) string {
	return filepath.Join(ds.dir, name)
}
