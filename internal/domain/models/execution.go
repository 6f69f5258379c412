package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentExecution is one run attempt of a schedule. A row transitions out of
// pending_approval/running into exactly one terminal status and is never
// updated again.
type AgentExecution struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"schedule_id"`
	AgentID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"agent_id"`
	ScheduledFor time.Time  `gorm:"not null" json:"scheduled_for"`
	Status       string     `gorm:"size:20;not null;default:pending_approval;index" json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ToolCalls    ToolCalls  `gorm:"type:jsonb" json:"tool_calls,omitempty"`
	TokensInput  int        `gorm:"default:0" json:"tokens_input"`
	TokensOutput int        `gorm:"default:0" json:"tokens_output"`
	DurationMs   int64      `gorm:"default:0" json:"duration_ms"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message,omitempty"`
	ApprovedBy   *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Schedule AgentSchedule   `gorm:"foreignKey:ScheduleID" json:"-"`
	Agent    AgentDefinition `gorm:"foreignKey:AgentID" json:"-"`
	Approver *Profile        `gorm:"foreignKey:ApprovedBy" json:"-"`
}

func (AgentExecution) TableName() string {
	return "agent_executions"
}
