package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/revitgen/pkg/adapters/memory"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewQueryLog()
	mw, err := middleware.NewPIIMiddleware(middleware.DefaultRedactions)
	require.NoError(t, err)
	secure := mw(underlying)

	ctx := context.Background()
	original := entry("email the schedule to jane.doe@example.com", "key = 'sk-abcdefghijklmnopqrstuv'")
	original.Error = "quota exceeded for jane.doe@example.com"
	require.NoError(t, secure.Append(ctx, original))

	// The caller's entry is not modified.
	assert.Equal(t, "email the schedule to jane.doe@example.com", original.Query)

	stored, err := underlying.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "email the schedule to ***", stored[0].Query)
	assert.Equal(t, "key = '***'", stored[0].Code)
	assert.Equal(t, "quota exceeded for ***", stored[0].Error)
	assert.Equal(t, "gpt-4.1", stored[0].Model)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_RedactsBeforeEncrypting(t *testing.T) {
	underlying := memory.NewQueryLog()
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultRedactions)
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	log := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, log.Append(ctx, domain.LogEntry{Query: "ping bob@example.org"}))

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ping ***", got[0].Query)

	stored, err := underlying.Recent(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, "ping ***", stored[0].Query)
}
