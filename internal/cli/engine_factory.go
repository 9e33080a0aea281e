package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/revitgen"
	"github.com/aretw0/revitgen/internal/config"
	"github.com/aretw0/revitgen/internal/telemetry"
	"github.com/aretw0/revitgen/pkg/adapters/file"
	"github.com/aretw0/revitgen/pkg/adapters/memory"
	"github.com/aretw0/revitgen/pkg/adapters/process"
	redisAdapter "github.com/aretw0/revitgen/pkg/adapters/redis"
	"github.com/aretw0/revitgen/pkg/llm"
	"github.com/aretw0/revitgen/pkg/observability"
	"github.com/aretw0/revitgen/pkg/persistence/middleware"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/aretw0/revitgen/pkg/prompt"
	"github.com/aretw0/revitgen/pkg/registry"
	backend "github.com/redis/go-redis/v9"
)

// App is a fully wired engine plus the resources it holds.
type App struct {
	Engine  *revitgen.Engine
	Metrics *observability.Metrics
	Logger  *slog.Logger

	closers []func(context.Context) error
}

// Close releases the redis client and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// Providers resolves llm.provider to a completer.
var Providers = registry.Default()

// ErrModelDisabled is returned by completions on an App built WithoutModel.
var ErrModelDisabled = errors.New("language model not initialized for this command")

type appOptions struct {
	withoutModel bool
}

// AppOption adjusts NewApp.
type AppOption func(*appOptions)

// WithoutModel skips building the provider, so commands that only check code, read
// prompts or read the query log run without an API key.
func WithoutModel() AppOption {
	return func(o *appOptions) {
		o.withoutModel = true
	}
}

// NewApp initializes the engine with the conventions every command shares.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, options ...AppOption) (*App, error) {
	var o appOptions
	for _, opt := range options {
		opt(&o)
	}
	app := &App{Logger: logger, Metrics: observability.NewMetrics()}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry.Enabled, nil, "revitgen", revitgen.Version)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, shutdown)

	completer, err := newCompleter(ctx, cfg, o.withoutModel)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("error initializing provider: %w", err)
	}
	completer = llm.WithTimeout(completer, cfg.LLM.Timeout)
	completer = llm.WithRetry(completer, llm.Policy{
		MaxAttempts:     cfg.LLM.Retry.Attempts,
		InitialInterval: cfg.LLM.Retry.InitialInterval,
		MaxInterval:     cfg.LLM.Retry.MaxInterval,
	}, logger)
	completer = llm.WithTracing(completer, telemetry.Tracer(""))

	variant, err := prompt.ParseVariant(cfg.Prompt.Variant)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	opts := []revitgen.Option{
		revitgen.WithCompleter(completer),
		revitgen.WithVariant(variant),
		revitgen.WithLogger(logger),
		revitgen.WithMetrics(app.Metrics),
		revitgen.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if cfg.Prompt.Dir != "" {
		opts = append(opts, revitgen.WithPromptSource(prompt.DirSource{Dir: cfg.Prompt.Dir}))
	}
	if cfg.Checker.IPyPath != "" {
		var checkerOpts []process.Option
		if cfg.Checker.Timeout > 0 {
			checkerOpts = append(checkerOpts, process.WithTimeout(cfg.Checker.Timeout))
		}
		opts = append(opts, revitgen.WithChecker(process.NewChecker(cfg.Checker.IPyPath, checkerOpts...)))
	}

	var client *backend.Client
	redisClient := func() *backend.Client {
		if client == nil {
			client = redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		}
		return client
	}

	queryLog, err := newQueryLog(cfg, redisClient)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if queryLog != nil {
		opts = append(opts, revitgen.WithQueryLog(queryLog))
	}

	switch cfg.Cache.Backend {
	case config.BackendMemory:
		opts = append(opts,
			revitgen.WithCache(memory.NewScriptCache()),
			revitgen.WithLocker(memory.NewLocker()),
			revitgen.WithCacheTTL(cfg.Cache.TTL),
		)
	case config.BackendRedis:
		c := redisClient()
		opts = append(opts,
			revitgen.WithCache(redisAdapter.NewScriptCache(c, redisAdapter.WithPrefix(cfg.Redis.Prefix), redisAdapter.WithDefaultTTL(cfg.Cache.TTL))),
			revitgen.WithLocker(redisAdapter.NewLocker(c, redisAdapter.WithPrefix(cfg.Redis.Prefix))),
			revitgen.WithCacheTTL(cfg.Cache.TTL),
		)
	}

	engine, err := revitgen.New(opts...)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = engine

	if client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis is unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
	}
	return app, nil
}

func newCompleter(ctx context.Context, cfg *config.Config, withoutModel bool) (ports.Completer, error) {
	if withoutModel {
		return llm.Unavailable(cfg.LLM.Provider, cfg.LLM.Model, ErrModelDisabled), nil
	}
	return Providers.Build(ctx, registry.ProviderConfig{
		Name:    cfg.LLM.Provider,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})
}

func newQueryLog(cfg *config.Config, redisClient func() *backend.Client) (ports.QueryLog, error) {
	qc := cfg.QueryLog

	var log ports.QueryLog
	switch qc.Backend {
	case config.BackendMemory:
		log = memory.NewQueryLog()
	case config.BackendFile:
		log = file.NewQueryLog(qc.Path)
	case config.BackendRedis:
		log = redisAdapter.NewQueryLog(redisClient(),
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithMaxEntries(qc.MaxEntries))
	default:
		return nil, nil
	}

	var mws []middleware.Middleware
	if qc.Redact {
		patterns := qc.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultRedactions
		}
		pii, err := middleware.NewPIIMiddleware(patterns)
		if err != nil {
			return nil, fmt.Errorf("querylog.redact_patterns: %w", err)
		}
		mws = append(mws, pii)
	}
	if qc.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(qc.EncryptionKey, qc.FallbackKeys...)
		if err != nil {
			return nil, fmt.Errorf("querylog.encryption_key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(log, mws...), nil
}
