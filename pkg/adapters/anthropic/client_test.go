package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aretw0/revitgen/pkg/adapters/anthropic"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "msg_test123",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-sonnet-4-5",
			"content": []map[string]interface{}{
				{"type": "text", "text": "# -*- coding: utf-8 -*-\n"},
				{"type": "text", "text": "from pyrevit import forms"},
			},
			"usage": map[string]interface{}{"input_tokens": 900, "output_tokens": 12},
		})
	}))
	defer server.Close()

	c, err := anthropic.New("test-key", "", option.WithBaseURL(server.URL))
	require.NoError(t, err)
	assert.Equal(t, anthropic.DefaultModel, c.Model())

	out, err := c.Complete(context.Background(), domain.CompletionRequest{System: "rules", User: "alert me"})
	require.NoError(t, err)
	assert.Equal(t, "# -*- coding: utf-8 -*-\nfrom pyrevit import forms", out.Text)
	assert.Equal(t, int64(900), out.Usage.InputTokens)
	assert.Equal(t, "anthropic", out.Provider)

	assert.EqualValues(t, 3000, body["max_tokens"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "rules", system[0].(map[string]any)["text"])
}

func TestClient_RetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	c, err := anthropic.New("test-key", "m", option.WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), domain.CompletionRequest{User: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRetryable))
}

func TestNew_MissingKey(t *testing.T) {
	_, err := anthropic.New("", "")
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}
