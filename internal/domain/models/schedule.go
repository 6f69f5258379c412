package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgentSchedule struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AgentID          uuid.UUID      `gorm:"type:uuid;index;not null" json:"agent_id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	CronExpression   string         `gorm:"size:100;not null" json:"cron_expression"`
	Timezone         string         `gorm:"size:50" json:"timezone"`
	TaskPrompt       string         `gorm:"type:text;not null" json:"task_prompt"`
	RequiresApproval bool           `gorm:"default:false" json:"requires_approval"`
	IsEnabled        bool           `gorm:"default:true" json:"is_enabled"`
	NextRunAt        *time.Time     `gorm:"index" json:"next_run_at,omitempty"`
	LastRunAt        *time.Time     `json:"last_run_at,omitempty"`
	CreatedBy        *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Agent   AgentDefinition `gorm:"foreignKey:AgentID" json:"-"`
	Creator *Profile        `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (AgentSchedule) TableName() string {
	return "agent_schedules"
}
