package agentrun

import (
	"context"
	"sync"
	"time"

	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/cron"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/executor"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/leader"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/metrics"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/notify"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/recovery"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/repositories"
	pkgredis "github.com/orbitdesk-ai/orbitdesk/internal/pkg/redis"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Runner owns the periodic processing loop. The processor only ticks on the
// instance currently holding the leader lease.
type Runner struct {
	config *Config

	// Components
	election   *leader.Election
	processor  *Processor
	stuckRecov *recovery.StuckRecovery
	cleanup    *recovery.Cleanup
	metrics    *metrics.Collector

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Dependencies struct {
	DB        *gorm.DB
	Redis     *pkgredis.Client
	Executor  executor.TaskExecutor
	Messenger notify.Messenger
}

func New(cfg *Config, deps *Dependencies) *Runner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Validate()

	ctx, cancel := context.WithCancel(context.Background())

	scheduleRepo := repositories.NewScheduleRepository(deps.DB)
	executionRepo := repositories.NewExecutionRepository(deps.DB)
	localAgentRepo := repositories.NewLocalAgentRepository(deps.DB)
	workspaceRepo := repositories.NewWorkspaceRepository(deps.DB)

	election := leader.NewElection(deps.Redis, cfg.LeaderKey, cfg.LeaderTTL)
	collector := metrics.NewCollector()

	processor := NewProcessor(&ProcessorDeps{
		Schedules:  scheduleRepo,
		Executions: executionRepo,
		Agents:     localAgentRepo,
		Evaluator:  cron.NewEvaluator(),
		Executor:   deps.Executor,
		Resolver:   notify.NewResolver(workspaceRepo),
		Dispatcher: notify.NewDispatcher(deps.Messenger),
		Metrics:    collector,
	}, cfg.BatchSize)

	stuckRecov := recovery.NewStuckRecovery(executionRepo, collector, cfg.StuckThreshold)
	cleanup := recovery.NewCleanup(executionRepo, cfg.RetentionDays)

	return &Runner{
		config:     cfg,
		election:   election,
		processor:  processor,
		stuckRecov: stuckRecov,
		cleanup:    cleanup,
		metrics:    collector,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (r *Runner) Start() error {
	log.Info().
		Str("leader_key", r.config.LeaderKey).
		Dur("tick_interval", r.config.TickInterval).
		Int("batch_size", r.config.BatchSize).
		Msg("Starting agent runner")

	r.wg.Add(1)
	go r.leaderLoop()

	return nil
}

func (r *Runner) Stop() error {
	log.Info().Msg("Stopping agent runner...")

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Agent runner stopped gracefully")
	case <-time.After(r.config.ShutdownTimeout):
		log.Warn().Msg("Agent runner shutdown timed out")
	}

	r.election.Release(context.Background())

	return nil
}

func (r *Runner) leaderLoop() {
	defer r.wg.Done()

	extendTicker := time.NewTicker(r.config.LeaderTTL / 3)
	defer extendTicker.Stop()

	acquireTicker := time.NewTicker(5 * time.Second)
	defer acquireTicker.Stop()

	var tickCancel context.CancelFunc
	var recoveryCancel context.CancelFunc
	var cleanupCancel context.CancelFunc

	stopWorkers := func() {
		if tickCancel != nil {
			tickCancel()
			tickCancel = nil
		}
		if recoveryCancel != nil {
			recoveryCancel()
			recoveryCancel = nil
		}
		if cleanupCancel != nil {
			cleanupCancel()
			cleanupCancel = nil
		}
	}

	startWorkers := func() {
		var tickCtx, recoveryCtx, cleanupCtx context.Context

		tickCtx, tickCancel = context.WithCancel(r.ctx)
		recoveryCtx, recoveryCancel = context.WithCancel(r.ctx)
		cleanupCtx, cleanupCancel = context.WithCancel(r.ctx)

		r.wg.Add(3)
		go func() {
			defer r.wg.Done()
			r.tickLoop(tickCtx)
		}()
		go func() {
			defer r.wg.Done()
			r.stuckRecov.Run(recoveryCtx)
		}()
		go func() {
			defer r.wg.Done()
			r.cleanup.Run(cleanupCtx)
		}()
	}

	for {
		select {
		case <-r.ctx.Done():
			stopWorkers()
			return

		case <-acquireTicker.C:
			if !r.election.IsLeader() {
				acquired, err := r.election.TryAcquire(r.ctx)
				if err != nil {
					log.Error().Err(err).Msg("Failed to acquire leadership")
					continue
				}
				if acquired {
					r.metrics.SetLeader(true)
					startWorkers()
				}
			}

		case <-extendTicker.C:
			if r.election.IsLeader() {
				if !r.election.Extend(r.ctx) {
					log.Warn().Msg("Lost leadership")
					r.metrics.SetLeader(false)
					stopWorkers()
				}
			}
		}
	}
}

func (r *Runner) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	r.metrics.IncTicks()

	r.processor.ProcessDueSchedules(ctx)
	r.processor.ProcessApprovedExecutions(ctx)

	r.metrics.RecordTickDuration(time.Since(start))
}

// TickOnce runs a single processing cycle, for operator tooling.
func (r *Runner) TickOnce(ctx context.Context) {
	r.tick(ctx)
}

func (r *Runner) IsLeader() bool {
	return r.election.IsLeader()
}

func (r *Runner) Metrics() *metrics.Collector {
	return r.metrics
}

func (r *Runner) Health() map[string]interface{} {
	snapshot := r.metrics.Snapshot()

	return map[string]interface{}{
		"is_leader":       snapshot.IsLeader,
		"uptime_seconds":  int64(snapshot.Uptime.Seconds()),
		"ticks_total":     snapshot.TicksTotal,
		"processed_total": snapshot.ProcessedTotal,
		"errors_total":    snapshot.ErrorsTotal,
		"recovered_total": snapshot.RecoveredTotal,
		"last_tick_ms":    snapshot.LastTickDuration,
	}
}
