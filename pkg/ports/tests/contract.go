package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunQueryLogContract verifies that a QueryLog implementation honors the port contract.
// The log must start empty.
func RunQueryLogContract(t *testing.T, log ports.QueryLog) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		entries, err := log.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Append and Recent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			err := log.Append(ctx, domain.LogEntry{
				Timestamp: base.Add(time.Duration(i) * time.Minute),
				Query:     fmt.Sprintf("query %d", i),
				Code:      "print('ok')",
				Model:     "test-model",
				Valid:     true,
			})
			require.NoError(t, err)
		}

		entries, err := log.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "query 2", entries[0].Query, "newest entry first")
		assert.Equal(t, "query 1", entries[1].Query)
		assert.True(t, entries[0].Timestamp.Equal(base.Add(2*time.Minute)))
		assert.Equal(t, "test-model", entries[0].Model)
	})

	t.Run("Unlimited", func(t *testing.T) {
		entries, err := log.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("Error entries", func(t *testing.T) {
		err := log.Append(ctx, domain.LogEntry{
			Timestamp: base.Add(time.Hour),
			Query:     "broken",
			Code:      "rate limited",
			Error:     "rate limited",
		})
		require.NoError(t, err)

		entries, err := log.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "rate limited", entries[0].Error)
		assert.False(t, entries[0].Valid)
	})

	t.Run("Concurrent appends", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, log.Append(ctx, domain.LogEntry{
					Timestamp: base.Add(2 * time.Hour),
					Query:     fmt.Sprintf("parallel %d", i),
				}))
			}(i)
		}
		wg.Wait()

		entries, err := log.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 14)
	})
}

// RunScriptCacheContract verifies that a ScriptCache implementation honors the port contract.
func RunScriptCacheContract(t *testing.T, cache ports.ScriptCache) {
	t.Helper()
	ctx := context.Background()

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set and Get", func(t *testing.T) {
		script := &domain.Script{
			Query: "count walls",
			Model: "test-model",
			Report: domain.Report{
				Code: "print('walls')",
			},
		}
		require.NoError(t, cache.Set(ctx, "k1", script, time.Minute))

		got, ok, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "print('walls')", got.Code())
		assert.Equal(t, "count walls", got.Query)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k1", &domain.Script{Report: domain.Report{Code: "v2"}}, 0))
		got, ok, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v2", got.Code())
	})
}
