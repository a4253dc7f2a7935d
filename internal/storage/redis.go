package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kal997/file-interest-server/internal/config"
	"github.com/kal997/file-interest-server/internal/models"

	"github.com/redis/go-redis/v9"
)

// filesSetKey indexes every stored filename
const filesSetKey = "fileserver:files"

// RedisStore implements the Store interface using Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis storage instance
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   0,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
	}, nil
}

// Put writes content and indexes the name in one MULTI/EXEC
func (rs *RedisStore) Put(ctx context.Context, name string, content []byte) error {
	if err := models.ValidateFilename(name); err != nil {
		return err
	}

	data, err := compress(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFault, err)
	}

	file := &models.File{Name: name}
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, file.GenerateRedisKey(), data, 0)
		pipe.SAdd(ctx, filesSetKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to store file in Redis: %v", ErrStorageFault, err)
	}

	return nil
}

// Get fetches and decompresses the file content
func (rs *RedisStore) Get(ctx context.Context, name string) (*models.File, error) {
	if err := models.ValidateFilename(name); err != nil {
		return nil, err
	}

	data, err := rs.client.Get(ctx, models.FileRedisKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read file from Redis: %v", ErrStorageFault, err)
	}

	content, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStorageFault, name, err)
	}
	return &models.File{Name: name, Content: content}, nil
}

// List returns the indexed filenames sorted lexically
func (rs *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := rs.client.SMembers(ctx, filesSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list files in Redis: %v", ErrStorageFault, err)
	}
	sort.Strings(names)
	return names, nil
}

// HealthCheck verifies Redis connectivity
func (rs *RedisStore) HealthCheck(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFault, err)
	}
	return nil
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
