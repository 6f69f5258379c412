package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"gorm.io/gorm"
)

type ExecutionRepository struct {
	*BaseRepository[models.AgentExecution]
}

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{
		BaseRepository: NewBaseRepository[models.AgentExecution](db),
	}
}

// FindApproved returns executions that were approved out-of-band and are
// still waiting to run, with schedule and agent preloaded.
func (r *ExecutionRepository) FindApproved(ctx context.Context, limit int) ([]models.AgentExecution, error) {
	var executions []models.AgentExecution
	err := r.DB().WithContext(ctx).
		Preload("Schedule").
		Preload("Agent").
		Where("approved_by IS NOT NULL AND status = ?", models.ExecutionStatusPendingApproval).
		Order("created_at ASC").
		Limit(limit).
		Find(&executions).Error
	return executions, err
}

// TransitionStatus moves an execution from an expected status to a new one.
// It returns false when no row moved, i.e. another writer got there first or
// the row already reached a terminal status.
func (r *ExecutionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, startedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if startedAt != nil {
		updates["started_at"] = *startedAt
	}

	result := r.DB().WithContext(ctx).Model(&models.AgentExecution{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCompleted records the successful terminal state of an execution.
func (r *ExecutionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, toolCalls models.ToolCalls, tokensIn, tokensOut int, durationMs int64) error {
	now := time.Now()
	return r.DB().WithContext(ctx).Model(&models.AgentExecution{}).
		Where("id = ? AND status = ?", id, models.ExecutionStatusRunning).
		Updates(map[string]interface{}{
			"status":        models.ExecutionStatusCompleted,
			"completed_at":  now,
			"tool_calls":    toolCalls,
			"tokens_input":  tokensIn,
			"tokens_output": tokensOut,
			"duration_ms":   durationMs,
		}).Error
}

// MarkFailed records the failed terminal state of an execution. It accepts
// rows in either non-terminal status so the approved path can fail a row
// that never started.
func (r *ExecutionRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	now := time.Now()
	return r.DB().WithContext(ctx).Model(&models.AgentExecution{}).
		Where("id = ? AND status IN ?", id, []string{
			models.ExecutionStatusPendingApproval,
			models.ExecutionStatusRunning,
		}).
		Updates(map[string]interface{}{
			"status":        models.ExecutionStatusFailed,
			"completed_at":  now,
			"error_message": errorMessage,
		}).Error
}

// FindStuck returns executions that have been running past the threshold.
func (r *ExecutionRepository) FindStuck(ctx context.Context, threshold time.Duration) ([]models.AgentExecution, error) {
	cutoff := time.Now().Add(-threshold)

	var executions []models.AgentExecution
	err := r.DB().WithContext(ctx).
		Where("status = ? AND started_at < ?", models.ExecutionStatusRunning, cutoff).
		Find(&executions).Error
	return executions, err
}

// DeleteTerminalBefore removes completed and failed executions older than
// the cutoff. Returns the number of rows deleted.
func (r *ExecutionRepository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB().WithContext(ctx).
		Where("created_at < ? AND status IN ?", cutoff, []string{
			models.ExecutionStatusCompleted,
			models.ExecutionStatusFailed,
		}).
		Delete(&models.AgentExecution{})
	return result.RowsAffected, result.Error
}
