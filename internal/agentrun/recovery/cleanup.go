package recovery

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type CleanupStore interface {
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleanup deletes terminal executions past the retention window.
type Cleanup struct {
	store         CleanupStore
	retentionDays int
	interval      time.Duration
}

func NewCleanup(store CleanupStore, retentionDays int) *Cleanup {
	return &Cleanup{
		store:         store,
		retentionDays: retentionDays,
		interval:      time.Hour,
	}
}

func (c *Cleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleanup) cleanup(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -c.retentionDays)

	deleted, err := c.store.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clean up old executions")
		return
	}

	if deleted > 0 {
		log.Info().
			Int64("deleted", deleted).
			Int("retention_days", c.retentionDays).
			Msg("Cleaned up old executions")
	}
}

func (c *Cleanup) CleanupOnce(ctx context.Context) {
	c.cleanup(ctx)
}
