package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	*BaseRepository[models.AgentSchedule]
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{
		BaseRepository: NewBaseRepository[models.AgentSchedule](db),
	}
}

// FindDue returns enabled schedules whose next run is at or before now,
// with the agent definition preloaded. The batch is bounded so one tick
// cannot run unbounded.
func (r *ScheduleRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.AgentSchedule, error) {
	var schedules []models.AgentSchedule
	err := r.DB().WithContext(ctx).
		Preload("Agent").
		Where("is_enabled = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) AdvanceNextRun(ctx context.Context, scheduleID uuid.UUID, nextRunAt time.Time) error {
	return r.DB().WithContext(ctx).Model(&models.AgentSchedule{}).
		Where("id = ?", scheduleID).
		Updates(map[string]interface{}{
			"last_run_at": time.Now(),
			"next_run_at": nextRunAt,
		}).Error
}

func (r *ScheduleRepository) SetEnabled(ctx context.Context, scheduleID uuid.UUID, enabled bool) error {
	return r.DB().WithContext(ctx).Model(&models.AgentSchedule{}).
		Where("id = ?", scheduleID).
		Update("is_enabled", enabled).Error
}
