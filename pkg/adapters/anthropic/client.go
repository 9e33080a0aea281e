// Package anthropic implements ports.Completer with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 3000

// Client wraps the SDK client.
type Client struct {
	client sdk.Client
	model  sdk.Model
}

var _ ports.Completer = (*Client)(nil)

// New creates a client. Retries are left to the caller's retry decorator, so the
// SDK's own retry loop is disabled unless opts re-enable it.
func New(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or provider.api_key", domain.ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultModel
	}
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	return &Client{
		client: sdk.NewClient(append(base, opts...)...),
		model:  sdk.Model(model),
	}, nil
}

func (c *Client) Name() string  { return "anthropic" }
func (c *Client) Model() string { return string(c.model) }

// Complete sends the system prompt in the dedicated System field and the query as the
// only user turn. Text blocks of the answer are concatenated.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500) {
			return domain.Completion{}, errors.Join(err, domain.ErrRetryable)
		}
		return domain.Completion{}, err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	model := string(msg.Model)
	if model == "" {
		model = string(c.model)
	}
	return domain.Completion{
		Text:     b.String(),
		Model:    model,
		Provider: c.Name(),
		Usage: domain.Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
		Latency: time.Since(start),
	}, nil
}
