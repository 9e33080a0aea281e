package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/aretw0/revitgen/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Names(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "gemini", "openai", "openrouter", "static"}, registry.Default().Names())
}

func TestBuild_Unknown(t *testing.T) {
	_, err := registry.Default().Build(context.Background(), registry.ProviderConfig{Name: "llama"})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestBuild_KeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := registry.Default().Build(context.Background(), registry.ProviderConfig{Name: "openai"})
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)

	t.Setenv("OPENAI_API_KEY", "sk-env")
	c, err := registry.Default().Build(context.Background(), registry.ProviderConfig{Name: "openai", Model: "gpt-4.1-mini-2025-04-14"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini-2025-04-14", c.Model())
}

func TestBuild_Static(t *testing.T) {
	c, err := registry.Default().Build(context.Background(), registry.ProviderConfig{Name: "static"})
	require.NoError(t, err)
	assert.Equal(t, "static", c.Name())
}

func TestRegister_Overrides(t *testing.T) {
	r := registry.NewRegistry()
	calls := 0
	r.Register("x", func(context.Context, registry.ProviderConfig) (ports.Completer, error) {
		calls++
		return nil, nil
	})
	_, err := r.Build(context.Background(), registry.ProviderConfig{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
