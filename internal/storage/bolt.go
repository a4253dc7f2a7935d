package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kal997/file-interest-server/internal/models"
)

var bucketFiles = []byte("files")

// BoltStore implements Store on a bbolt database.
// Each Put is a single write transaction, so readers never observe partial content.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the database at dbPath
func NewBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", bucketFiles, err)
	}

	return &BoltStore{db: db}, nil
}

// Put stores the compressed content under name
func (bs *BoltStore) Put(ctx context.Context, name string, content []byte) error {
	if err := models.ValidateFilename(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := compress(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFault, err)
	}

	err = bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStorageFault, name, err)
	}
	return nil
}

// Get returns the decompressed content stored under name
func (bs *BoltStore) Get(ctx context.Context, name string) (*models.File, error) {
	if err := models.ValidateFilename(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := bs.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketFiles).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		// v is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	content, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStorageFault, name, err)
	}
	return &models.File{Name: name, Content: content}, nil
}

// List returns the bucket keys, which bbolt keeps in byte order
func (bs *BoltStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := []string{}
	err := bs.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStorageFault, err)
	}
	return names, nil
}

// HealthCheck runs an empty read transaction
func (bs *BoltStore) HealthCheck(ctx context.Context) error {
	if err := bs.db.View(func(tx *bbolt.Tx) error { return nil }); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFault, err)
	}
	return nil
}

// Close closes the underlying database
func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
