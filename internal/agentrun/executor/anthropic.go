package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/config"
)

const (
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-3-5-sonnet-20241022"
)

type AnthropicExecutor struct {
	apiKey    string
	baseURL   string
	maxTokens int
	client    *http.Client
}

func NewAnthropicExecutor(cfg *config.AnthropicConfig) *AnthropicExecutor {
	return &AnthropicExecutor{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *AnthropicExecutor) Execute(ctx context.Context, req *TaskRequest) (*TaskResult, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	payload := map[string]interface{}{
		"model":      model,
		"max_tokens": e.maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": req.TaskPrompt},
		},
	}

	if system := e.buildSystemPrompt(req); system != "" {
		payload["system"] = system
	}

	start := time.Now()
	result, err := e.makeRequest(ctx, e.baseURL+"/v1/messages", payload)
	if err != nil {
		return nil, err
	}
	durationMs := time.Since(start).Milliseconds()

	text := ""
	var toolCalls models.ToolCalls
	if contentArr, ok := result["content"].([]interface{}); ok {
		for _, block := range contentArr {
			b, ok := block.(map[string]interface{})
			if !ok {
				continue
			}
			switch b["type"] {
			case "text":
				if t, ok := b["text"].(string); ok {
					text += t
				}
			case "tool_use":
				name, _ := b["name"].(string)
				toolCalls = append(toolCalls, models.ToolCall{
					ToolName: name,
					Args:     b["input"],
				})
			}
		}
	}

	usage := Usage{}
	if u, ok := result["usage"].(map[string]interface{}); ok {
		if in, ok := u["input_tokens"].(float64); ok {
			usage.PromptTokens = int(in)
		}
		if out, ok := u["output_tokens"].(float64); ok {
			usage.CompletionTokens = int(out)
		}
	}

	return &TaskResult{
		Text:       text,
		ToolCalls:  toolCalls,
		Usage:      usage,
		DurationMs: durationMs,
	}, nil
}

func (e *AnthropicExecutor) buildSystemPrompt(req *TaskRequest) string {
	parts := make([]string, 0, 3)
	if req.SystemPrompt != "" {
		parts = append(parts, req.SystemPrompt)
	}
	if req.CustomInstructions != "" {
		parts = append(parts, req.CustomInstructions)
	}
	if len(req.StylePresets) > 0 {
		if data, err := json.Marshal(req.StylePresets); err == nil {
			parts = append(parts, "Style configuration: "+string(data))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (e *AnthropicExecutor) makeRequest(ctx context.Context, url string, payload map[string]interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.Unmarshal(body, &errResp)
		if errMsg, ok := errResp["error"].(map[string]interface{}); ok {
			return nil, fmt.Errorf("anthropic API error: %v", errMsg["message"])
		}
		return nil, fmt.Errorf("anthropic API error: %s", string(body))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result, nil
}
