package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/revitgen/pkg/adapters/redis"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestQueryLog_Contract(t *testing.T) {
	_, client := setup(t)
	tests.RunQueryLogContract(t, redis.NewQueryLog(client))
}

func TestQueryLog_MaxEntries(t *testing.T) {
	mr, client := setup(t)
	log := redis.NewQueryLog(client, redis.WithPrefix("t:"), redis.WithMaxEntries(2))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(ctx, domain.LogEntry{Query: fmt.Sprintf("q%d", i)}))
	}

	entries, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "q4", entries[0].Query)
	assert.Equal(t, "q3", entries[1].Query)
	assert.True(t, mr.Exists("t:log"))
}

func TestScriptCache_Contract(t *testing.T) {
	_, client := setup(t)
	tests.RunScriptCacheContract(t, redis.NewScriptCache(client))
}

func TestScriptCache_TTL(t *testing.T) {
	mr, client := setup(t)
	cache := redis.NewScriptCache(client, redis.WithDefaultTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", &domain.Script{Query: "a"}, time.Second))
	require.NoError(t, cache.Set(ctx, "default", &domain.Script{Query: "b"}, 0))
	assert.Equal(t, time.Hour, mr.TTL("revitgen:cache:default"))

	mr.FastForward(2 * time.Second)
	_, ok, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := cache.Get(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got.Query)
}

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:resource1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"))
}

func TestLocker_Contention(t *testing.T) {
	_, client := setup(t)
	first := redis.NewLocker(client)
	second := redis.NewLocker(client)
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = second.Lock(short, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := second.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_ForeignUnlockIsNoop(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// The lock expired and someone else took it; our release must not remove theirs.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("revitgen:lock:k", "someone-else"))

	require.NoError(t, unlock(ctx))
	v, err := mr.Get("revitgen:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}
