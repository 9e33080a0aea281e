package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

type timed struct {
	ports.Completer
	d time.Duration
}

// WithTimeout bounds each call to c by d. A call that runs out of time while the
// caller's context is still live fails with domain.ErrRetryable, so a retry
// decorator wrapped around it gets another attempt. A non-positive d returns c.
func WithTimeout(c ports.Completer, d time.Duration) ports.Completer {
	if d <= 0 {
		return c
	}
	return &timed{Completer: c, d: d}
}

func (t *timed) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	out, err := t.Completer.Complete(attemptCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return domain.Completion{}, fmt.Errorf("%w: no reply from %s within %s", domain.ErrRetryable, t.Name(), t.d)
	}
	return out, err
}
