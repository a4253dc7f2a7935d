//go:build integration
// +build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kal997/file-interest-server/internal/config"
)

// Runs against whatever backend the environment configures
func TestStore_Integration(t *testing.T) {
	// Load real config from environment
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Skipf("Config not available: %v", err)
	}

	store, err := New(cfg)
	if err != nil {
		t.Skipf("Store not available: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.HealthCheck(ctx))

	name := "integration-" + time.Now().Format("20060102T150405.000000000")
	content := []byte("integration content")

	require.NoError(t, store.Put(ctx, name, content))

	file, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, content, file.Content)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, name)
}
