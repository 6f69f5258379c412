package recovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/metrics"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// StuckExecutionStore is the slice of the execution store that recovery
// needs.
type StuckExecutionStore interface {
	FindStuck(ctx context.Context, threshold time.Duration) ([]models.AgentExecution, error)
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// StuckRecovery forces executions that have sat in running past the
// threshold into a terminal failed state, so a worker crash mid-run cannot
// leave rows running forever.
type StuckRecovery struct {
	store     StuckExecutionStore
	metrics   *metrics.Collector
	threshold time.Duration
	interval  time.Duration
}

func NewStuckRecovery(store StuckExecutionStore, collector *metrics.Collector, threshold time.Duration) *StuckRecovery {
	return &StuckRecovery{
		store:     store,
		metrics:   collector,
		threshold: threshold,
		interval:  5 * time.Minute,
	}
}

func (r *StuckRecovery) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run once on start
	r.recover(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.recover(ctx)
		}
	}
}

func (r *StuckRecovery) recover(ctx context.Context) {
	stuck, err := r.store.FindStuck(ctx, r.threshold)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch stuck executions")
		return
	}

	if len(stuck) == 0 {
		return
	}

	recovered := 0
	for _, execution := range stuck {
		msg := "execution exceeded " + r.threshold.String() + " in running state"
		if err := r.store.MarkFailed(ctx, execution.ID, msg); err != nil {
			log.Error().Err(err).
				Str("execution_id", execution.ID.String()).
				Msg("Failed to fail stuck execution")
			continue
		}

		recovered++
		log.Warn().
			Str("execution_id", execution.ID.String()).
			Str("schedule_id", execution.ScheduleID.String()).
			Msg("Recovered stuck execution")
	}

	if recovered > 0 {
		r.metrics.IncRecovered(int64(recovered))
		log.Info().Int("count", recovered).Msg("Recovered stuck executions")
	}
}

func (r *StuckRecovery) RecoverOnce(ctx context.Context) {
	r.recover(ctx)
}
