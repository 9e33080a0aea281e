package revitgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/revitgen/internal/logging"
	"github.com/aretw0/revitgen/pkg/codecheck"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/observability"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/aretw0/revitgen/pkg/prompt"
	"github.com/aretw0/revitgen/pkg/runner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Version is overridden at build time with -ldflags "-X github.com/aretw0/revitgen.Version=...".
var Version = "dev"

// DefaultMaxTokens matches what the pyRevit clients were tuned against.
const DefaultMaxTokens = 3000

// ErrNoCompleter is returned by New when no language model is configured.
var ErrNoCompleter = errors.New("revitgen: a completer is required")

const lockTTL = 2 * time.Minute

// Engine runs the generation pipeline. It is safe for concurrent use.
type Engine struct {
	completer ports.Completer
	source    prompt.Source
	variant   prompt.Variant
	checker   ports.SyntaxChecker
	queryLog  ports.QueryLog
	cache     ports.ScriptCache
	cacheTTL  time.Duration
	locker    ports.DistributedLocker
	logger    *slog.Logger
	metrics   *observability.Metrics
	maxTokens int
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		variant:   prompt.Extended,
		checker:   codecheck.NopChecker{},
		maxTokens: DefaultMaxTokens,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.completer == nil {
		return nil, ErrNoCompleter
	}
	if _, err := prompt.ParseVariant(string(e.variant)); err != nil {
		return nil, err
	}
	if e.source == nil {
		e.source = prompt.Static(prompt.Default())
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("provider", e.completer.Name(), "model", e.completer.Model())
	e.tracer = otel.Tracer("github.com/aretw0/revitgen")
	return e, nil
}

// Info describes how the engine is wired.
type Info struct {
	Version  string         `json:"version"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Variant  prompt.Variant `json:"variant"`
	Checker  bool           `json:"syntax_check"`
	Cache    bool           `json:"cache"`
}

// Info returns the engine's configuration summary.
func (e *Engine) Info() Info {
	_, nop := e.checker.(codecheck.NopChecker)
	return Info{
		Version:  Version,
		Provider: e.completer.Name(),
		Model:    e.completer.Model(),
		Variant:  e.variant,
		Checker:  !nop,
		Cache:    e.cache != nil,
	}
}

// Fingerprint identifies a request for caching. Queries differing only in case or
// whitespace share a fingerprint; any change to the composed system prompt does not.
func Fingerprint(provider, model string, variant prompt.Variant, system, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	promptSum := sha256.Sum256([]byte(system))
	sum := sha256.Sum256([]byte(provider + "\x00" + model + "\x00" + string(variant) + "\x00" +
		hex.EncodeToString(promptSum[:]) + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}

// Generate produces a script for query.
//
// Input that fails sanitization is rejected before anything is logged. Provider
// failures are logged with the error message as the entry's code and returned
// wrapped in domain.ErrGeneration. A script with lint or syntax errors is still
// returned; check Report.Valid.
func (e *Engine) Generate(ctx context.Context, query string) (*domain.Script, error) {
	q, err := runner.SanitizeQuery(query)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "revitgen.generate")
	defer span.End()

	system, err := e.SystemPrompt(ctx)
	if err != nil {
		return nil, err
	}

	key := Fingerprint(e.completer.Name(), e.completer.Model(), e.variant, system, q)
	if script, ok := e.cached(ctx, key, q); ok {
		span.SetAttributes(attribute.Bool("revitgen.cache_hit", true))
		return script, nil
	}

	if e.cache != nil && e.locker != nil {
		unlock, err := e.locker.Lock(ctx, key, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("Failed to release generation lock", "error", err)
			}
		}()
		// Another replica may have filled the cache while we waited.
		if script, ok := e.cached(ctx, key, q); ok {
			span.SetAttributes(attribute.Bool("revitgen.cache_hit", true))
			return script, nil
		}
	}

	script, checked, err := e.generate(ctx, system, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("revitgen.valid", script.Report.Valid()))

	// Scripts whose syntax check broke are returned but never cached.
	if e.cache != nil && checked && script.Report.Valid() {
		if err := e.cache.Set(ctx, key, script, e.cacheTTL); err != nil {
			e.logger.Warn("Failed to cache script", "error", err)
		}
	}
	return script, nil
}

// generate calls the model and vets its reply. checked is false when the syntax
// checker failed for a reason other than a missing interpreter.
func (e *Engine) generate(ctx context.Context, system, q string) (script *domain.Script, checked bool, err error) {
	start := e.now()
	completion, err := e.completer.Complete(ctx, domain.CompletionRequest{
		System:    system,
		User:      q,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		e.logger.Error("Completion failed", "error", err)
		e.record(ctx, domain.LogEntry{
			Timestamp: start,
			Query:     q,
			Code:      err.Error(),
			Model:     e.completer.Model(),
			Provider:  e.completer.Name(),
			Error:     err.Error(),
		})
		e.observe(observability.OutcomeError)
		return nil, false, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if e.metrics != nil {
		e.metrics.ObserveCompletion(e.completer.Name(), e.now().Sub(start), completion.Usage)
	}

	report, err := e.analyze(ctx, codecheck.Clean(completion.Text))
	checked = err == nil || errors.Is(err, domain.ErrCheckerUnavailable)
	if err != nil {
		// The lint findings are still in report; only the compile step is missing.
		e.logger.Warn("Syntax check failed to run", "error", err)
	}

	model := completion.Model
	if model == "" {
		model = e.completer.Model()
	}
	script = &domain.Script{
		Query:     q,
		Raw:       completion.Text,
		Model:     model,
		Provider:  e.completer.Name(),
		Usage:     completion.Usage,
		Report:    report,
		CreatedAt: start,
	}

	valid := report.Valid()
	e.record(ctx, domain.LogEntry{
		Timestamp: start,
		Query:     q,
		Code:      script.Code(),
		Model:     model,
		Provider:  script.Provider,
		Valid:     valid,
	})
	if e.metrics != nil {
		e.metrics.ObserveFindings(report)
	}
	if valid {
		e.observe(observability.OutcomeValid)
	} else {
		e.observe(observability.OutcomeInvalid)
	}
	e.logger.Info("Script generated",
		"valid", valid,
		"findings", len(report.Diagnostics),
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
	)
	return script, checked, nil
}

// Check vets arbitrary code (optionally fenced) without calling the model.
// A missing interpreter leaves the syntax unchecked; other checker failures are returned.
func (e *Engine) Check(ctx context.Context, code string) (*domain.Report, error) {
	report, err := e.analyze(ctx, codecheck.Clean(code))
	if err != nil && !errors.Is(err, domain.ErrCheckerUnavailable) {
		return nil, err
	}
	if err != nil {
		e.logger.Warn("Syntax check skipped", "error", err)
	}
	return &report, nil
}

func (e *Engine) analyze(ctx context.Context, code string) (domain.Report, error) {
	return codecheck.Analyze(ctx, e.checker, code)
}

// SystemPrompt composes the configured variant from the prompt source.
// The source is consulted on every call.
func (e *Engine) SystemPrompt(ctx context.Context) (string, error) {
	return e.SystemPromptFor(ctx, e.variant)
}

// SystemPromptFor composes variant v.
func (e *Engine) SystemPromptFor(ctx context.Context, v prompt.Variant) (string, error) {
	lib, err := e.source.Library(ctx)
	if err != nil {
		return "", err
	}
	return lib.System(v)
}

// Examples returns the reference scripts shipped in the prompt library.
func (e *Engine) Examples(ctx context.Context) ([]prompt.Example, error) {
	lib, err := e.source.Library(ctx)
	if err != nil {
		return nil, err
	}
	return lib.Examples(), nil
}

// Logs returns up to limit recent log entries, newest first. Without a query log it
// returns nothing.
func (e *Engine) Logs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if e.queryLog == nil {
		return []domain.LogEntry{}, nil
	}
	return e.queryLog.Recent(ctx, limit)
}

func (e *Engine) cached(ctx context.Context, key, q string) (*domain.Script, bool) {
	if e.cache == nil {
		return nil, false
	}
	script, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("Cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	script.Cached = true
	e.record(ctx, domain.LogEntry{
		Timestamp: e.now(),
		Query:     q,
		Code:      script.Code(),
		Model:     script.Model,
		Provider:  script.Provider,
		Valid:     true,
	})
	e.observe(observability.OutcomeCached)
	e.logger.Debug("Cache hit", "key", key)
	return script, true
}

// record appends to the query log. A failing log never fails the request.
func (e *Engine) record(ctx context.Context, entry domain.LogEntry) {
	if e.queryLog == nil {
		return
	}
	if err := e.queryLog.Append(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn("Failed to append query log", "error", err)
	}
}

func (e *Engine) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.ObserveGeneration(e.completer.Name(), outcome)
	}
}
