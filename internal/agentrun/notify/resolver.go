package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// Directory looks up workspace membership for notification fallback.
type Directory interface {
	AdminIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error)
	OwnerID(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error)
}

type Resolver struct {
	directory Directory
}

func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve determines who gets notified about a run's outcome. The fallback
// order is fixed: the agent's reports_to list, then the schedule creator,
// then workspace admins, then the workspace owner. The first non-empty tier
// wins.
func (r *Resolver) Resolve(ctx context.Context, localAgent *models.LocalAgent, schedule *models.AgentSchedule, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	if localAgent != nil && len(localAgent.ReportsTo) > 0 {
		ids := make([]uuid.UUID, 0, len(localAgent.ReportsTo))
		for _, raw := range localAgent.ReportsTo {
			id, err := uuid.Parse(raw)
			if err != nil {
				log.Warn().
					Str("agent_id", localAgent.AgentID.String()).
					Str("value", raw).
					Msg("Skipping unparseable reports_to entry")
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	if schedule.CreatedBy != nil {
		return []uuid.UUID{*schedule.CreatedBy}, nil
	}

	admins, err := r.directory.AdminIDs(ctx, workspaceID)
	if err != nil {
		log.Warn().Err(err).
			Str("workspace_id", workspaceID.String()).
			Msg("Admin lookup failed, falling back to owner")
	} else if len(admins) > 0 {
		return admins, nil
	}

	owner, err := r.directory.OwnerID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace owner: %w", err)
	}

	return []uuid.UUID{owner}, nil
}
