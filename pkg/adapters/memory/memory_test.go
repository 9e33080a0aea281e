package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/revitgen/pkg/adapters/memory"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLog_Contract(t *testing.T) {
	tests.RunQueryLogContract(t, memory.NewQueryLog())
}

func TestScriptCache_Contract(t *testing.T) {
	tests.RunScriptCacheContract(t, memory.NewScriptCache())
}

func TestScriptCache_Expiry(t *testing.T) {
	cache := memory.NewScriptCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &domain.Script{Query: "q"}, 20*time.Millisecond))
	_, ok, _ := cache.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestScriptCache_Isolation(t *testing.T) {
	cache := memory.NewScriptCache()
	ctx := context.Background()
	script := &domain.Script{Report: domain.Report{Code: "a", Diagnostics: []domain.Diagnostic{{Rule: "r"}}}}
	require.NoError(t, cache.Set(ctx, "k", script, 0))

	script.Report.Diagnostics[0].Rule = "mutated"
	got, _, _ := cache.Get(ctx, "k")
	assert.Equal(t, "r", got.Report.Diagnostics[0].Rule)
}

func TestLocker(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "key", time.Second)
	require.NoError(t, err)

	// A second acquirer times out while the first holds the lock.
	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "key", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent.
	other, err := locker.Lock(ctx, "other", time.Second)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "double unlock is harmless")

	again, err := locker.Lock(ctx, "key", time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestScriptCache_SetSweepsExpired(t *testing.T) {
	cache := memory.NewScriptCache()
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), &domain.Script{}, time.Nanosecond))
	}
	assert.LessOrEqual(t, cache.Len(), 128)

	// Items without a ttl survive sweeps.
	require.NoError(t, cache.Set(ctx, "keep", &domain.Script{Query: "q"}, 0))
	for i := 0; i < 1000; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("j%d", i), &domain.Script{}, time.Nanosecond))
	}
	got, ok, err := cache.Get(ctx, "keep")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "q", got.Query)
}

func TestLocker_ReleasesSlots(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		unlock, err := locker.Lock(ctx, fmt.Sprintf("key-%d", i), time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	}
	assert.Equal(t, 0, locker.Len())

	unlock, err := locker.Lock(ctx, "busy", time.Second)
	require.NoError(t, err)
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "busy", time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locker.Len(), "a timed-out waiter leaves only the holder")

	require.NoError(t, unlock(ctx))
	assert.Equal(t, 0, locker.Len())
}
