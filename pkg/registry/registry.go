package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aretw0/revitgen/pkg/adapters/anthropic"
	"github.com/aretw0/revitgen/pkg/adapters/gemini"
	"github.com/aretw0/revitgen/pkg/adapters/openai"
	"github.com/aretw0/revitgen/pkg/adapters/static"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// ProviderConfig carries what a factory needs to build a Completer.
type ProviderConfig struct {
	Name    string
	Model   string
	APIKey  string
	BaseURL string
}

// Factory builds a Completer from configuration.
type Factory func(ctx context.Context, cfg ProviderConfig) (ports.Completer, error)

// Registry manages the available model providers.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a provider to the registry.
// If a provider with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Names lists registered providers in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up a provider by cfg.Name and builds it.
func (r *Registry) Build(ctx context.Context, cfg ProviderConfig) (ports.Completer, error) {
	r.mu.RLock()
	fn, ok := r.factories[cfg.Name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", domain.ErrUnknownProvider, cfg.Name, r.Names())
	}
	return fn(ctx, cfg)
}

// EnvKeys maps providers to the environment variable holding their API key.
var EnvKeys = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

// apiKey prefers the configured key and falls back to the provider's env variable.
func apiKey(cfg ProviderConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if env, ok := EnvKeys[cfg.Name]; ok {
		return os.Getenv(env)
	}
	return ""
}

// Default returns a registry with every built-in provider.
func Default() *Registry {
	r := NewRegistry()
	r.Register("openai", func(_ context.Context, cfg ProviderConfig) (ports.Completer, error) {
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(apiKey(cfg), cfg.Model, opts...)
	})
	r.Register("openrouter", func(_ context.Context, cfg ProviderConfig) (ports.Completer, error) {
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.NewOpenRouter(apiKey(cfg), cfg.Model, opts...)
	})
	r.Register("anthropic", func(_ context.Context, cfg ProviderConfig) (ports.Completer, error) {
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(apiKey(cfg), cfg.Model, opts...)
	})
	r.Register("gemini", func(ctx context.Context, cfg ProviderConfig) (ports.Completer, error) {
		return gemini.New(ctx, apiKey(cfg), cfg.Model, cfg.BaseURL)
	})
	r.Register("static", func(_ context.Context, cfg ProviderConfig) (ports.Completer, error) {
		return static.New(cfg.Model), nil
	})
	return r
}
