package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyValueStore exercises the KeyValueStore contract against any backend.
func testKeyValueStore(t *testing.T, store KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "service_tracking_codes", `{"codes":[]}`))
	v, found, err := store.Get(ctx, "service_tracking_codes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"codes":[]}`, v)

	require.NoError(t, store.Set(ctx, "service_tracking_codes", `{"codes":[1]}`))
	v, _, err = store.Get(ctx, "service_tracking_codes")
	require.NoError(t, err)
	assert.Equal(t, `{"codes":[1]}`, v)

	require.NoError(t, store.Remove(ctx, "service_tracking_codes"))
	_, found, err = store.Get(ctx, "service_tracking_codes")
	require.NoError(t, err)
	assert.False(t, found)

	// removing twice is fine
	assert.NoError(t, store.Remove(ctx, "service_tracking_codes"))
}

func TestMemoryStore(t *testing.T) {
	testKeyValueStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	testKeyValueStore(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/kv.db"
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	store := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0, "test:shop-admin:")
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v, skipping integration test", err)
	}

	testKeyValueStore(t, store)
}
