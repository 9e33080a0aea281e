package ports

import (
	"context"

	"github.com/aretw0/revitgen/pkg/domain"
)

// Completer sends a single-turn request to a language model.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)

	// Name identifies the provider (e.g. "openai", "anthropic").
	Name() string

	// Model is the model identifier requests are sent to.
	Model() string
}
