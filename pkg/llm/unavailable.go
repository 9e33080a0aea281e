package llm

import (
	"context"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

type unavailable struct {
	name, model string
	err         error
}

// Unavailable reports name and model like a real provider but fails every
// completion with err. Commands that never call the model use it so they run
// without credentials.
func Unavailable(name, model string, err error) ports.Completer {
	return &unavailable{name: name, model: model, err: err}
}

func (u *unavailable) Name() string  { return u.name }
func (u *unavailable) Model() string { return u.model }

func (u *unavailable) Complete(context.Context, domain.CompletionRequest) (domain.Completion, error) {
	return domain.Completion{}, u.err
}
