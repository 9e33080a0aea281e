package revitgen

import (
	"log/slog"
	"time"

	"github.com/aretw0/revitgen/pkg/observability"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/aretw0/revitgen/pkg/prompt"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCompleter sets the language model. Required.
func WithCompleter(c ports.Completer) Option {
	return func(e *Engine) {
		e.completer = c
	}
}

// WithPromptSource sets where the prompt library comes from (default: the embedded one).
func WithPromptSource(src prompt.Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithVariant selects the system prompt variant (default: prompt.Extended).
func WithVariant(v prompt.Variant) Option {
	return func(e *Engine) {
		e.variant = v
	}
}

// WithChecker enables syntax checking of generated code.
func WithChecker(c ports.SyntaxChecker) Option {
	return func(e *Engine) {
		e.checker = c
	}
}

// WithQueryLog records every request.
func WithQueryLog(l ports.QueryLog) Option {
	return func(e *Engine) {
		e.queryLog = l
	}
}

// WithCache enables the script cache.
func WithCache(c ports.ScriptCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithCacheTTL sets how long cached scripts live. Zero keeps them until evicted.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithLocker serializes concurrent misses for the same request. Only used with a cache.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records Prometheus metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxTokens caps the completion length (default: 3000).
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		e.maxTokens = n
	}
}
