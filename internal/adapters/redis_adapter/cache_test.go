package redis_a_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/stockledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/test/helpers"
)

func newCache(t *testing.T) (*redis_a.Cache, *helpers.TestRedis) {
	t.Helper()
	r := helpers.SetupTestRedis(t)
	return redis_a.NewCache(r.Client, 5*time.Minute, helpers.TestLogger()), r
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	type payload struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	tests := []struct {
		name  string
		key   string
		value payload
	}{
		{name: "stores_and_retrieves_struct", key: "test:struct", value: payload{ID: "123", Name: "Test"}},
		{name: "overwrites_existing_value", key: "test:struct", value: payload{ID: "456", Name: "Other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value))

			var got payload
			require.NoError(t, cache.Get(ctx, tt.key, &got))
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestCache_GetMiss(t *testing.T) {
	cache, _ := newCache(t)

	var dest string
	err := cache.Get(context.Background(), "missing", &dest)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:key", "value", time.Second))
	r.Server.FastForward(2 * time.Second)

	var dest string
	assert.ErrorIs(t, cache.Get(ctx, "ttl:key", &dest), redis_a.ErrCacheMiss)
}

func TestCache_DeleteAndExpire(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.Set(ctx, "a", 1))
	require.NoError(t, cache.Set(ctx, "b", 2))
	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, r.Server.Exists("a"))
	assert.True(t, r.Server.Exists("b"))

	require.NoError(t, cache.Expire(ctx, "b", time.Second))
	r.Server.FastForward(2 * time.Second)
	assert.False(t, r.Server.Exists("b"))

	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_SetNX(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	ok, err := cache.SetNX(ctx, "nx", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetNX(ctx, "nx", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	var got string
	require.NoError(t, cache.Get(ctx, "nx", &got))
	assert.Equal(t, "first", got)
}

func TestCache_Ping(t *testing.T) {
	cache, r := newCache(t)
	require.NoError(t, cache.Ping(context.Background()))

	r.Server.Close()
	assert.Error(t, cache.Ping(context.Background()))
}

func TestCache_BuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   redis_a.CacheKeyPrefix
		parts    []string
		expected string
	}{
		{name: "snapshot_key", prefix: redis_a.PrefixSnapshot, parts: []string{"w", "p", "c"}, expected: "snap:w:p:c"},
		{name: "scan_key", prefix: redis_a.PrefixScan, parts: []string{"id"}, expected: "scan:id"},
		{name: "prefix_only", prefix: redis_a.PrefixLock, expected: "lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redis_a.BuildKey(tt.prefix, tt.parts...))
		})
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)
	snapshots := redis_a.NewSnapshotCache(cache, time.Minute)

	key := domain.SnapshotKey{WarehouseID: uuid.New(), ProductID: uuid.New(), ClientID: uuid.New()}
	_, err := snapshots.GetSnapshot(ctx, key)
	require.ErrorIs(t, err, redis_a.ErrCacheMiss)

	snap := domain.NewSnapshot(key)
	snap.Quantity, snap.AvailableQty, snap.DamagedQty = 5, 4, 1
	require.NoError(t, snapshots.SetSnapshot(ctx, snap))
	assert.True(t, r.Server.Exists("snap:"+key.WarehouseID.String()+":"+key.ProductID.String()+":"+key.ClientID.String()))

	got, err := snapshots.GetSnapshot(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.SameCounts(snap))

	require.NoError(t, snapshots.InvalidateSnapshot(ctx, key))
	_, err = snapshots.GetSnapshot(ctx, key)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestScanSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)
	sessions := redis_a.NewScanSessionStore(cache, time.Minute)

	key := domain.SnapshotKey{WarehouseID: uuid.New(), ProductID: uuid.New(), ClientID: uuid.New()}
	session := domain.NewScanSession(key, domain.MovementIn, "picker")
	require.NoError(t, sessions.SaveSession(ctx, session))

	got, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, domain.SessionOpen, got.Status)

	r.Server.FastForward(2 * time.Minute)
	got, err = sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, sessions.SaveSession(ctx, session))
	require.NoError(t, sessions.DeleteSession(ctx, session.ID))
	got, err = sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLocker_TryLock(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)
	locker := redis_a.NewLocker(cache)

	release, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, release)

	again, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, release(ctx))
	again, err = locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestLocker_ExpiredReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)
	locker := redis_a.NewLocker(cache)

	stale, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, stale)

	r.Server.FastForward(2 * time.Minute)

	current, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, current)

	require.ErrorIs(t, stale(ctx), redis_a.ErrLockLost)

	again, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, again, "lock taken after expiry must survive the stale release")

	require.NoError(t, current(ctx))
}

func TestCache_DeleteIfEqual(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "lock:a", "token-1", time.Minute))

	deleted, err := cache.DeleteIfEqual(ctx, "lock:a", "token-2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, r.Server.Exists("lock:a"))

	deleted, err = cache.DeleteIfEqual(ctx, "lock:a", "token-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, r.Server.Exists("lock:a"))
}

func TestExportStatusStore(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)
	store := redis_a.NewExportStatusStore(cache, time.Hour)

	missing, err := store.GetExport(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SaveExport(ctx, &ports.ExportStatus{
		ID: "exp-1", Format: "csv", Status: ports.ExportQueued, CreatedAt: now, UpdatedAt: now,
	}))

	got, err := store.GetExport(ctx, "exp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ports.ExportQueued, got.Status)
	assert.True(t, now.Equal(got.CreatedAt))

	r.Server.FastForward(2 * time.Hour)
	got, err = store.GetExport(ctx, "exp-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
