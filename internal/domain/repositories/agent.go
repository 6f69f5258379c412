package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"gorm.io/gorm"
)

type LocalAgentRepository struct {
	*BaseRepository[models.LocalAgent]
}

func NewLocalAgentRepository(db *gorm.DB) *LocalAgentRepository {
	return &LocalAgentRepository{
		BaseRepository: NewBaseRepository[models.LocalAgent](db),
	}
}

// FindByAgentID looks up the workspace-scoped configuration for an agent.
// Returns (nil, nil) when the agent has no local configuration.
func (r *LocalAgentRepository) FindByAgentID(ctx context.Context, agentID uuid.UUID) (*models.LocalAgent, error) {
	var agent models.LocalAgent
	err := r.DB().WithContext(ctx).Where("agent_id = ?", agentID).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}
