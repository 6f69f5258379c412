package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, handler http.HandlerFunc) (*AnthropicExecutor, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	exec := NewAnthropicExecutor(&config.AnthropicConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		MaxTokens: 1024,
		Timeout:   10 * time.Second,
	})
	return exec, server
}

func TestAnthropicExecute(t *testing.T) {
	var captured map[string]interface{}

	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": "Pipeline looks healthy."},
				map[string]interface{}{
					"type":  "tool_use",
					"name":  "search_crm",
					"input": map[string]interface{}{"query": "overdue"},
				},
			},
			"usage": map[string]interface{}{
				"input_tokens":  float64(120),
				"output_tokens": float64(45),
			},
		})
	})

	result, err := exec.Execute(context.Background(), &TaskRequest{
		Provider:           "anthropic",
		Model:              "claude-3-5-haiku-20241022",
		SystemPrompt:       "You review the CRM pipeline.",
		TaskPrompt:         "Summarize overdue deals",
		CustomInstructions: "Keep it short.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pipeline looks healthy.", result.Text)
	assert.Equal(t, 120, result.Usage.PromptTokens)
	assert.Equal(t, 45, result.Usage.CompletionTokens)
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "search_crm", result.ToolCalls[0].ToolName)

	// Request shaping
	assert.Equal(t, "claude-3-5-haiku-20241022", captured["model"])
	system, _ := captured["system"].(string)
	assert.Contains(t, system, "You review the CRM pipeline.")
	assert.Contains(t, system, "Keep it short.")
}

func TestAnthropicExecuteDefaultsModel(t *testing.T) {
	var captured map[string]interface{}

	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []interface{}{},
			"usage":   map[string]interface{}{},
		})
	})

	_, err := exec.Execute(context.Background(), &TaskRequest{TaskPrompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, captured["model"])
}

func TestAnthropicExecuteAPIError(t *testing.T) {
	exec, _ := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "rate_limit_error",
				"message": "API rate limit exceeded",
			},
		})
	})

	_, err := exec.Execute(context.Background(), &TaskRequest{TaskPrompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API rate limit exceeded")
}
