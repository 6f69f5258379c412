package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

// JSON type for JSONB columns
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSON: not a byte slice")
	}
	return json.Unmarshal(bytes, j)
}

// ToolCall is one tool invocation recorded during an agent run.
type ToolCall struct {
	ToolName string      `json:"toolName"`
	Args     interface{} `json:"args,omitempty"`
	Result   interface{} `json:"result,omitempty"`
}

// ToolCalls type for JSONB array columns
type ToolCalls []ToolCall

func (t ToolCalls) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *ToolCalls) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan ToolCalls: not a byte slice")
	}
	return json.Unmarshal(bytes, t)
}

// StringArray type for text[] columns
type StringArray = pq.StringArray

// Execution status constants
const (
	ExecutionStatusPendingApproval = "pending_approval"
	ExecutionStatusRunning         = "running"
	ExecutionStatusCompleted       = "completed"
	ExecutionStatusFailed          = "failed"
)

// Workspace member roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Agent providers
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)
