package cache_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"vrp-route-service/internal/adapters/cache"
	"vrp-route-service/internal/adapters/repositories"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/db"
	"vrp-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.SQLite))
	return conn
}

func TestSQLDistanceCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewSQLDistanceCache(openTestDB(t), db.SQLite)

	got, err := c.GetMany(ctx, "o", []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.PutMany(ctx, "o", map[string]ports.DistanceResult{
		"a": {DistanceMeters: 1200.5, DurationSeconds: 90.25},
		"b": {DistanceMeters: 10, DurationSeconds: 1},
	}))
	require.NoError(t, c.PutMany(ctx, "o", map[string]ports.DistanceResult{
		"b": {DistanceMeters: 20, DurationSeconds: 2},
	}))

	got, err = c.GetMany(ctx, "o", []string{"a", "b", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.DistanceResult{
		"a": {DistanceMeters: 1200.5, DurationSeconds: 90.25},
		"b": {DistanceMeters: 20, DurationSeconds: 2},
	}, got)

	// Pairs are directed.
	got, err = c.GetMany(ctx, "a", []string{"o"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewSQLGeocodeCache(openTestDB(t), db.SQLite)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"1 Main St": {Lon: -122.1, Lat: 37.4},
	}))

	got, err := c.GetMany(ctx, []string{"1 Main St", "2 Oak Ave"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"1 Main St": {Lon: -122.1, Lat: 37.4}}, got)
}

type countingDistanceCache struct {
	ports.DistanceCache
	gets int
}

func (c *countingDistanceCache) GetMany(ctx context.Context, origin string, dests []string) (map[string]ports.DistanceResult, error) {
	c.gets++
	return c.DistanceCache.GetMany(ctx, origin, dests)
}

func TestLRUDistanceCacheFrontsPersistentCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingDistanceCache{DistanceCache: cache.NewSQLDistanceCache(openTestDB(t), db.SQLite)}
	require.NoError(t, backing.PutMany(ctx, "o", map[string]ports.DistanceResult{"a": {DistanceMeters: 5}}))

	c, err := cache.NewLRUDistanceCache(8, backing)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := c.GetMany(ctx, "o", []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, 5.0, got["a"].DistanceMeters)
	}
	// Only the first lookup reaches the backing store.
	assert.Equal(t, 1, backing.gets)

	require.NoError(t, c.PutMany(ctx, "o", map[string]ports.DistanceResult{"b": {DistanceMeters: 7}}))
	got, err := backing.GetMany(ctx, "o", []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got["b"].DistanceMeters)
}

func TestLRUCacheEvicts(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewLRUGeocodeCache(1, nil)
	require.NoError(t, err)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"a": {Lon: 1}}))
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"b": {Lon: 2}}))

	got, err := c.GetMany(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"b": {Lon: 2}}, got)

	_, err = cache.NewLRUGeocodeCache(0, nil)
	require.Error(t, err)
}
