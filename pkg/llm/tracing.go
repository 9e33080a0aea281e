package llm

import (
	"context"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationScope names the tracer used when none is given.
const InstrumentationScope = "github.com/aretw0/revitgen/llm"

type traced struct {
	ports.Completer
	tracer trace.Tracer
}

// WithTracing wraps every completion in a span. A nil tracer uses the global provider.
func WithTracing(c ports.Completer, tracer trace.Tracer) ports.Completer {
	if tracer == nil {
		tracer = otel.Tracer(InstrumentationScope)
	}
	return &traced{Completer: c, tracer: tracer}
}

func (t *traced) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	ctx, span := t.tracer.Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("revitgen.llm.provider", t.Name()),
		attribute.String("revitgen.llm.model", t.Model()),
		attribute.Int("revitgen.llm.system_chars", len(req.System)),
		attribute.Int("revitgen.llm.query_chars", len(req.User)),
	)

	out, err := t.Completer.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	span.SetAttributes(
		attribute.Int64("revitgen.llm.input_tokens", out.Usage.InputTokens),
		attribute.Int64("revitgen.llm.output_tokens", out.Usage.OutputTokens),
	)
	return out, nil
}
