// Package static provides a Completer that answers from a fixed script list.
// It lets the service run offline (demos, pushbutton development) and backs tests.
package static

import (
	"context"
	"sync"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// DefaultReply is served when no replies are configured. It is deliberately fenced, as
// real models often answer, so the cleaning step is exercised end to end.
const DefaultReply = "Here is the script:\n```python\n" + `# -*- coding: utf-8 -*-
from pyrevit import revit, DB, forms, script

doc = revit.doc
logger = script.get_logger()

try:
    count = DB.FilteredElementCollector(doc, doc.ActiveView.Id)\
        .WhereElementIsNotElementType()\
        .GetElementCount()
    forms.alert("{} element(s) visible in the active view.".format(count), title="Element Count")
except Exception as e:
    logger.error(str(e))
    forms.alert("Failed to count elements:\n{}".format(e), title="Error")
` + "```\n"

// Completer replays replies in order, wrapping around at the end.
type Completer struct {
	model   string
	mu      sync.Mutex
	replies []string
	next    int
	calls   []domain.CompletionRequest
	err     error
}

var _ ports.Completer = (*Completer)(nil)

// New creates a completer. With no replies it serves DefaultReply.
func New(model string, replies ...string) *Completer {
	if model == "" {
		model = "static"
	}
	if len(replies) == 0 {
		replies = []string{DefaultReply}
	}
	return &Completer{model: model, replies: replies}
}

// Failing creates a completer that always returns err.
func Failing(err error) *Completer {
	c := New("static")
	c.err = err
	return c
}

func (c *Completer) Name() string  { return "static" }
func (c *Completer) Model() string { return c.model }

func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)

	if err := ctx.Err(); err != nil {
		return domain.Completion{}, err
	}
	if c.err != nil {
		return domain.Completion{}, c.err
	}

	reply := c.replies[c.next%len(c.replies)]
	c.next++
	return domain.Completion{
		Text:     reply,
		Model:    c.model,
		Provider: c.Name(),
	}, nil
}

// Calls returns the requests received so far.
func (c *Completer) Calls() []domain.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CompletionRequest, len(c.calls))
	copy(out, c.calls)
	return out
}
