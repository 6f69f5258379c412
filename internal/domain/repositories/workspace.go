package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	*BaseRepository[models.Workspace]
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{
		BaseRepository: NewBaseRepository[models.Workspace](db),
	}
}

// AdminIDs returns the profile ids of all workspace admins.
func (r *WorkspaceRepository) AdminIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB().WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND role = ?", workspaceID, models.RoleAdmin).
		Order("created_at ASC").
		Pluck("profile_id", &ids).Error
	return ids, err
}

// OwnerID returns the profile id of the workspace owner.
func (r *WorkspaceRepository) OwnerID(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error) {
	var workspace models.Workspace
	err := r.DB().WithContext(ctx).
		Select("owner_id").
		Where("id = ?", workspaceID).
		First(&workspace).Error
	if err != nil {
		return uuid.Nil, err
	}
	return workspace.OwnerID, nil
}
