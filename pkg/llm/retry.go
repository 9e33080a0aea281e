package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts counts the first call. Zero or one disables retries.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultPolicy is three attempts starting one second apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		MaxElapsed:      time.Minute,
	}
}

func (p Policy) backoff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh one per call.
	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}
	bo.MaxElapsedTime = p.MaxElapsed

	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx)
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrRetryable) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type retrying struct {
	ports.Completer
	policy Policy
	logger *slog.Logger
}

// WithRetry retries transient failures of c according to p.
func WithRetry(c ports.Completer, p Policy, logger *slog.Logger) ports.Completer {
	if logger == nil {
		logger = slog.Default()
	}
	return &retrying{Completer: c, policy: p, logger: logger}
}

func (r *retrying) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	var (
		out     domain.Completion
		attempt int
	)
	op := func() error {
		attempt++
		res, err := r.Completer.Complete(ctx, req)
		if err == nil {
			out = res
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Completion failed, retrying",
			"provider", r.Name(), "attempt", attempt, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, r.policy.backoff(ctx), notify); err != nil {
		return domain.Completion{}, err
	}
	return out, nil
}
