// Package openai talks to OpenAI-compatible Chat Completions endpoints.
// The same client serves OpenAI itself and OpenRouter, which only differ by base URL
// and a pair of attribution headers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL    = "https://api.openai.com/v1/"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1/"
	DefaultModel      = "gpt-4.1-2025-04-14"
)

// APIError is an error answer from the endpoint.
type APIError = sdk.Error

// Client wraps the SDK client.
type Client struct {
	name    string
	model   string
	baseURL string
	referer string
	http    *http.Client
	client  sdk.Client
}

var _ ports.Completer = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithBaseURL points the client at another compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/") + "/"
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithName overrides the provider name reported in logs and metrics.
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithReferer sets the HTTP-Referer header OpenRouter uses for attribution.
func WithReferer(referer string) Option {
	return func(c *Client) {
		c.referer = referer
	}
}

// New creates a client for model. An empty model selects DefaultModel. Retries are
// left to the caller's retry decorator.
func New(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY or provider.api_key", domain.ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		name:    "openai",
		model:   model,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.http),
		option.WithMaxRetries(0),
	}
	if c.referer != "" {
		reqOpts = append(reqOpts,
			option.WithHeader("HTTP-Referer", c.referer),
			option.WithHeader("X-Title", "revitgen"),
		)
	}
	c.client = sdk.NewClient(reqOpts...)
	return c, nil
}

// NewOpenRouter creates a client for OpenRouter.
func NewOpenRouter(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set OPENROUTER_API_KEY or provider.api_key", domain.ErrMissingAPIKey)
	}
	base := []Option{WithBaseURL(OpenRouterBaseURL), WithName("openrouter")}
	return New(apiKey, model, append(base, opts...)...)
}

func (c *Client) Name() string  { return c.name }
func (c *Client) Model() string { return c.model }

// Retryable reports whether err is a rate limit or a server-side failure.
func Retryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500)
}

// Complete sends one system+user exchange and returns the first choice.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(req.System),
			sdk.UserMessage(req.User),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if Retryable(err) {
			return domain.Completion{}, errors.Join(err, domain.ErrRetryable)
		}
		return domain.Completion{}, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return domain.Completion{
		Text:     resp.Choices[0].Message.Content,
		Model:    model,
		Provider: c.name,
		Usage: domain.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Latency: time.Since(start),
	}, nil
}
