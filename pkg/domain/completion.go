package domain

import "time"

// CompletionRequest is a single-turn chat request: a system prompt and one user message.
type CompletionRequest struct {
	System    string
	User      string
	MaxTokens int
}

// Usage reports token accounting when the provider exposes it.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Completion is the raw answer of a provider.
type Completion struct {
	Text     string
	Model    string
	Provider string
	Usage    Usage
	Latency  time.Duration
}
