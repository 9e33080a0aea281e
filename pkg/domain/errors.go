package domain

import "errors"

// ErrEmptyQuery is returned when a generation request carries no usable text.
var ErrEmptyQuery = errors.New("no input provided")

// ErrInputTooLarge is returned when a query exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds maximum allowed size")

// ErrInvalidUTF8 is returned when a query is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")

// ErrGeneration wraps any failure of the model provider.
var ErrGeneration = errors.New("code generation failed")

// ErrRetryable marks provider errors that are worth another attempt (rate limits, 5xx).
var ErrRetryable = errors.New("retryable provider error")

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("model returned no text")

// ErrPromptNotFound is returned when a prompt directory or file cannot be read.
var ErrPromptNotFound = errors.New("system prompt not found")

// ErrUnknownVariant is returned for a prompt variant that does not exist.
var ErrUnknownVariant = errors.New("unknown prompt variant")

// ErrFencedPrompt is returned when a composed system prompt contains markdown fences.
var ErrFencedPrompt = errors.New("system prompt contains markdown fences")

// ErrExampleNotFound is returned when an example script name is not in the library.
var ErrExampleNotFound = errors.New("example not found")

// ErrCheckerUnavailable is returned when the syntax checker cannot be started.
var ErrCheckerUnavailable = errors.New("syntax checker unavailable")

// ErrUnknownProvider is returned when no completer is registered under a name.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrMissingAPIKey is returned when a provider needs a key that was not configured.
var ErrMissingAPIKey = errors.New("API key required")
