package executor

import (
	"context"

	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
)

// TaskRequest is everything a provider needs to run one scheduled agent task.
type TaskRequest struct {
	Provider           string
	Model              string
	SystemPrompt       string
	TaskPrompt         string
	Tools              []string
	StylePresets       map[string]interface{}
	CustomInstructions string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

type TaskResult struct {
	Text       string
	ToolCalls  models.ToolCalls
	Usage      Usage
	DurationMs int64
}

// TaskExecutor runs one agent task to completion. Implementations perform no
// retries; a returned error is terminal for that attempt.
type TaskExecutor interface {
	Execute(ctx context.Context, req *TaskRequest) (*TaskResult, error)
}
