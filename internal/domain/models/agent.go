package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentDefinition is the workspace-independent description of an agent:
// what it is called, how it is prompted, and which model serves it.
type AgentDefinition struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	SystemPrompt string         `gorm:"type:text" json:"system_prompt"`
	Provider     string         `gorm:"size:50" json:"provider"`
	Model        string         `gorm:"size:100" json:"model"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AgentDefinition) TableName() string {
	return "agent_definitions"
}

// LocalAgent is the workspace-scoped runtime configuration of an agent.
// A schedule whose agent has no LocalAgent row cannot run.
type LocalAgent struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AgentID            uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"agent_id"`
	WorkspaceID        uuid.UUID   `gorm:"type:uuid;index;not null" json:"workspace_id"`
	Tools              StringArray `gorm:"type:text[]" json:"tools"`
	SystemPrompt       string      `gorm:"type:text" json:"system_prompt"`
	ReportsTo          StringArray `gorm:"type:text[]" json:"reports_to,omitempty"`
	StylePresets       JSON        `gorm:"type:jsonb" json:"style_presets,omitempty"`
	CustomInstructions *string     `gorm:"type:text" json:"custom_instructions,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	Agent     AgentDefinition `gorm:"foreignKey:AgentID" json:"-"`
	Workspace Workspace       `gorm:"foreignKey:WorkspaceID" json:"-"`
}

func (LocalAgent) TableName() string {
	return "local_agents"
}
