package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentMessage is a chat message sent by an agent to a workspace member,
// e.g. a schedule completion or failure notice.
type AgentMessage struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;index;not null" json:"workspace_id"`
	AgentID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"agent_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;index;not null" json:"recipient_id"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Workspace Workspace       `gorm:"foreignKey:WorkspaceID" json:"-"`
	Agent     AgentDefinition `gorm:"foreignKey:AgentID" json:"-"`
	Recipient Profile         `gorm:"foreignKey:RecipientID" json:"-"`
}

func (AgentMessage) TableName() string {
	return "agent_messages"
}
