package storage

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kal997/file-interest-server/internal/config"
)

// setRedisEnv points the configuration at addr
func setRedisEnv(t *testing.T, addr string) {
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FILE", "/tmp/test.log")
}

// Test the actual NewRedisStore constructor with real config
func TestNewRedisStore_Success(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	setRedisEnv(t, mr.Addr())
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)

	storage, err := NewRedisStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, storage)
	defer func() {
		_ = storage.Close()
	}()

	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// Test NewRedisStore with connection failure
func TestNewRedisStore_ConnectionFailure(t *testing.T) {
	setRedisEnv(t, "127.0.0.1:1")
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)

	storage, err := NewRedisStore(cfg)
	assert.Error(t, err)
	assert.Nil(t, storage)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

// Helper to create test storage with miniredis
func newTestStorage(tb testing.TB) (*RedisStore, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	require.NoError(tb, err)

	storage := &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}

	cleanup := func() {
		_ = storage.Close()
		mr.Close()
	}
	return storage, mr, cleanup
}

func TestRedisStore_Put_WritesContentAndIndex(t *testing.T) {
	storage, mr, cleanup := newTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, storage.Put(ctx, "report.pdf", []byte("pdf bytes")))

	// Content key exists and holds the compressed value
	assert.True(t, mr.Exists("fileserver:file:report.pdf"))
	raw, err := mr.Get("fileserver:file:report.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, "pdf bytes", raw)

	// Name is indexed
	members, err := mr.Members(filesSetKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, members)

	// No TTL: files never expire
	assert.Zero(t, mr.TTL("fileserver:file:report.pdf"))
}

func TestRedisStore_Get_CorruptValue(t *testing.T) {
	storage, mr, cleanup := newTestStorage(t)
	defer cleanup()

	require.NoError(t, mr.Set("fileserver:file:broken", "not zstd"))

	file, err := storage.Get(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrStorageFault)
	assert.Nil(t, file)
}

// Test Store with Redis error
func TestRedisStore_RedisError(t *testing.T) {
	storage, mr, cleanup := newTestStorage(t)
	defer cleanup()

	// Close miniredis to simulate Redis failure
	mr.Close()

	ctx := context.Background()

	err := storage.Put(ctx, "file.txt", []byte("content"))
	assert.ErrorIs(t, err, ErrStorageFault)
	assert.Contains(t, err.Error(), "failed to store file in Redis")

	_, err = storage.Get(ctx, "file.txt")
	assert.ErrorIs(t, err, ErrStorageFault)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = storage.List(ctx)
	assert.ErrorIs(t, err, ErrStorageFault)
}

// Test HealthCheck - both success and failure
func TestRedisStore_HealthCheck(t *testing.T) {
	storage, mr, cleanup := newTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	assert.NoError(t, storage.HealthCheck(ctx))

	mr.Close()
	assert.ErrorIs(t, storage.HealthCheck(ctx), ErrStorageFault)
}

func TestRedisStore_Close(t *testing.T) {
	storage, _, cleanup := newTestStorage(t)
	defer cleanup()

	// First close should succeed
	assert.NoError(t, storage.Close())

	// Second close should return an error (connection already closed)
	assert.Error(t, storage.Close())
}

// Test with context cancellation
func TestRedisStore_Put_ContextCancelled(t *testing.T) {
	storage, mr, cleanup := newTestStorage(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := storage.Put(ctx, "file.txt", []byte("content"))
	assert.Error(t, err)
	assert.False(t, mr.Exists("fileserver:file:file.txt"))
}

// Benchmark for Put operation
func BenchmarkRedisStore_Put(b *testing.B) {
	storage, _, cleanup := newTestStorage(b)
	defer cleanup()

	ctx := context.Background()
	content := []byte("benchmark content")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = storage.Put(ctx, "bench.txt", content)
	}
}
