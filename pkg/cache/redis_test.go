package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a client for a local Redis on DB 15 and skips the test
// when none is reachable. The integration suite uses testcontainers instead.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	store := NewRedisStore(client, "", Options{})
	require.NotNil(t, store)
	assert.Same(t, client, store.redis)
	assert.Equal(t, DefaultRedisPrefix, store.prefix)
	assert.Equal(t, DefaultExpiration, store.expiration)
}

func TestNewRedisStore_Panic(t *testing.T) {
	assert.Panics(t, func() {
		NewRedisStore(nil, "", Options{})
	})
}

func TestRedisStore_NativeTTL(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "apisports-test:", Options{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "nfl:seasons", []byte(`{"response":[2022,2023]}`)))

	ttl, err := client.TTL(ctx, "apisports-test:nfl:seasons").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, DefaultExpiration-DefaultExpiration/60)
	assert.LessOrEqual(t, ttl, DefaultExpiration)
}

func TestRedisStore_ClearKeepsForeignKeys(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "apisports-test:", Options{})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "unrelated", "keep", 0).Err())
	require.NoError(t, store.Set(ctx, "nfl:seasons", []byte(`{}`)))

	require.NoError(t, store.Clear(ctx))

	val, err := client.Get(ctx, "unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", val)
}

func TestRedisStore_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "apisports-test:", Options{})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "apisports-test:broken", "not-json", 0).Err())

	_, ok, err := store.Get(ctx, "broken")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestRedisStore_StatsCountsInvalidEntryAsStale(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "apisports-test:", Options{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "nfl:seasons", []byte(`{"response":[2023]}`)))
	require.NoError(t, client.Set(ctx, "apisports-test:broken", "not-json", 0).Err())

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Fresh)
	assert.Equal(t, 1, stats.Stale)

	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists, err := client.Exists(ctx, "apisports-test:broken").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
