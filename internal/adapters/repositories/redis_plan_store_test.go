package repositories_test

import (
	"context"
	"testing"
	"time"
	"vrp-route-service/internal/adapters/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*repositories.RedisPlanStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := repositories.NewRedisPlanStore("redis://"+mr.Addr(), "test:plan:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(context.Background()))
	return store, mr
}

func TestRedisPlanStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	exercisePlanStore(t, store)
}

func TestRedisPlanStore_ExpiredPlansLeaveIndex(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SavePlan(ctx, samplePlan("old", base)))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.SavePlan(ctx, samplePlan("new", base.Add(time.Hour))))

	list, err := store.ListPlans(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)

	members, err := mr.ZMembers("test:plan:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, members)
}

func TestNewRedisPlanStore_BadURL(t *testing.T) {
	_, err := repositories.NewRedisPlanStore("not-a-url", "", time.Minute)
	require.Error(t, err)
}
