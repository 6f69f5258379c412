package agentrun

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/cron"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/executor"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/metrics"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/notify"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// ScheduleStore is the persistence surface the processor needs for schedules.
type ScheduleStore interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.AgentSchedule, error)
	AdvanceNextRun(ctx context.Context, scheduleID uuid.UUID, nextRunAt time.Time) error
}

// ExecutionStore is the persistence surface for execution rows.
type ExecutionStore interface {
	Create(ctx context.Context, execution *models.AgentExecution) error
	FindApproved(ctx context.Context, limit int) ([]models.AgentExecution, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, startedAt *time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, toolCalls models.ToolCalls, tokensIn, tokensOut int, durationMs int64) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// LocalAgentStore resolves workspace-scoped agent configuration.
type LocalAgentStore interface {
	FindByAgentID(ctx context.Context, agentID uuid.UUID) (*models.LocalAgent, error)
}

// Result is the per-tick outcome of one processor entry point.
type Result struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Processor runs due agent schedules and resumes approved executions. Items
// are processed sequentially; a failure in one never aborts the rest of the
// batch.
type Processor struct {
	schedules  ScheduleStore
	executions ExecutionStore
	agents     LocalAgentStore
	evaluator  *cron.Evaluator
	executor   executor.TaskExecutor
	resolver   *notify.Resolver
	dispatcher *notify.Dispatcher
	metrics    *metrics.Collector

	batchSize int
	nowFn     func() time.Time
}

type ProcessorDeps struct {
	Schedules  ScheduleStore
	Executions ExecutionStore
	Agents     LocalAgentStore
	Evaluator  *cron.Evaluator
	Executor   executor.TaskExecutor
	Resolver   *notify.Resolver
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.Collector
}

func NewProcessor(deps *ProcessorDeps, batchSize int) *Processor {
	m := deps.Metrics
	if m == nil {
		m = metrics.NewCollector()
	}

	return &Processor{
		schedules:  deps.Schedules,
		executions: deps.Executions,
		agents:     deps.Agents,
		evaluator:  deps.Evaluator,
		executor:   deps.Executor,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		metrics:    m,
		batchSize:  batchSize,
		nowFn:      time.Now,
	}
}

// InitialStatus is the approval gate: a schedule that requires approval
// defers its execution, everything else starts immediately.
func InitialStatus(schedule *models.AgentSchedule) string {
	if schedule.RequiresApproval {
		return models.ExecutionStatusPendingApproval
	}
	return models.ExecutionStatusRunning
}

// ProcessDueSchedules is the cron-tick entry point for schedule-triggered
// runs. A finder fault short-circuits the tick; everything after that is
// contained per schedule.
func (p *Processor) ProcessDueSchedules(ctx context.Context) Result {
	var result Result

	now := p.nowFn()
	schedules, err := p.schedules.FindDue(ctx, now, p.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch due schedules")
		result.Errors++
		p.metrics.IncErrors(1)
		return result
	}

	for i := range schedules {
		p.processSchedule(ctx, &schedules[i], &result)
	}

	p.metrics.IncProcessed(int64(result.Processed))
	p.metrics.IncErrors(int64(result.Errors))

	if result.Processed > 0 || result.Errors > 0 {
		log.Info().
			Int("processed", result.Processed).
			Int("errors", result.Errors).
			Int("due", len(schedules)).
			Msg("Processed due schedules")
	}

	return result
}

func (p *Processor) processSchedule(ctx context.Context, schedule *models.AgentSchedule, result *Result) {
	logger := log.With().Str("schedule_id", schedule.ID.String()).Logger()

	localAgent, err := p.agents.FindByAgentID(ctx, schedule.AgentID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to look up local agent")
		result.Errors++
		return
	}
	if localAgent == nil {
		// Not configured in any workspace; nothing to run, nothing to record.
		logger.Debug().Str("agent_id", schedule.AgentID.String()).Msg("Schedule skipped, no local agent")
		return
	}

	now := p.nowFn()
	scheduledFor := now
	if schedule.NextRunAt != nil {
		scheduledFor = *schedule.NextRunAt
	}

	execution := &models.AgentExecution{
		ScheduleID:   schedule.ID,
		AgentID:      schedule.AgentID,
		ScheduledFor: scheduledFor,
		Status:       InitialStatus(schedule),
	}
	if execution.Status == models.ExecutionStatusRunning {
		execution.StartedAt = &now
	}

	if err := p.executions.Create(ctx, execution); err != nil {
		logger.Error().Err(err).Msg("Failed to create execution")
		result.Errors++
		return
	}

	if execution.Status == models.ExecutionStatusPendingApproval {
		logger.Info().Str("execution_id", execution.ID.String()).Msg("Execution deferred for approval")
		result.Processed++
	} else if p.runExecution(ctx, execution.ID, schedule, &schedule.Agent, localAgent) {
		result.Processed++
	} else {
		result.Errors++
	}

	// The attempt was made either way; advance by the cron cadence so a
	// failing agent is not re-triggered on the very next tick.
	p.advanceSchedule(ctx, schedule, now, result)
}

func (p *Processor) advanceSchedule(ctx context.Context, schedule *models.AgentSchedule, now time.Time, result *Result) {
	nextRun, err := p.evaluator.NextRun(schedule.CronExpression, schedule.Timezone, now)
	if err != nil {
		// Leave next_run_at unadvanced so the bad expression stays visible.
		log.Error().Err(err).
			Str("schedule_id", schedule.ID.String()).
			Str("cron", schedule.CronExpression).
			Msg("Failed to compute next run")
		result.Errors++
		return
	}

	if err := p.schedules.AdvanceNextRun(ctx, schedule.ID, nextRun); err != nil {
		log.Error().Err(err).
			Str("schedule_id", schedule.ID.String()).
			Msg("Failed to advance next run")
		result.Errors++
	}
}

// ProcessApprovedExecutions resumes executions approved out-of-band. It
// never recomputes next_run_at; that belongs to the cycle that created the
// row.
func (p *Processor) ProcessApprovedExecutions(ctx context.Context) Result {
	var result Result

	executions, err := p.executions.FindApproved(ctx, p.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch approved executions")
		result.Errors++
		p.metrics.IncErrors(1)
		return result
	}

	for i := range executions {
		p.processApproved(ctx, &executions[i], &result)
	}

	p.metrics.IncProcessed(int64(result.Processed))
	p.metrics.IncErrors(int64(result.Errors))

	if result.Processed > 0 || result.Errors > 0 {
		log.Info().
			Int("processed", result.Processed).
			Int("errors", result.Errors).
			Msg("Processed approved executions")
	}

	return result
}

func (p *Processor) processApproved(ctx context.Context, execution *models.AgentExecution, result *Result) {
	logger := log.With().Str("execution_id", execution.ID.String()).Logger()

	localAgent, err := p.agents.FindByAgentID(ctx, execution.AgentID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to look up local agent")
		result.Errors++
		return
	}
	if localAgent == nil {
		// The row already exists and must reach a terminal state.
		msg := "no local agent configuration for agent " + execution.AgentID.String()
		if err := p.executions.MarkFailed(ctx, execution.ID, msg); err != nil {
			logger.Error().Err(err).Msg("Failed to mark execution failed")
		}
		result.Errors++
		return
	}

	// Claim the row before invoking the executor so a crash mid-run leaves
	// it visibly running instead of pending_approval forever.
	now := p.nowFn()
	claimed, err := p.executions.TransitionStatus(ctx, execution.ID,
		models.ExecutionStatusPendingApproval, models.ExecutionStatusRunning, &now)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to claim execution")
		result.Errors++
		return
	}
	if !claimed {
		logger.Debug().Msg("Execution already claimed, skipping")
		return
	}

	if p.runExecution(ctx, execution.ID, &execution.Schedule, &execution.Agent, localAgent) {
		result.Processed++
	} else {
		result.Errors++
	}
}

// runExecution invokes the task executor exactly once and applies the single
// terminal update plus the notification fan-out. Returns true on success.
func (p *Processor) runExecution(ctx context.Context, executionID uuid.UUID, schedule *models.AgentSchedule, agent *models.AgentDefinition, localAgent *models.LocalAgent) bool {
	logger := log.With().
		Str("execution_id", executionID.String()).
		Str("schedule_id", schedule.ID.String()).
		Logger()

	provider := agent.Provider
	if provider == "" {
		provider = models.ProviderAnthropic
	}

	req := &executor.TaskRequest{
		Provider:     provider,
		Model:        agent.Model,
		SystemPrompt: localAgent.SystemPrompt,
		TaskPrompt:   schedule.TaskPrompt,
		Tools:        localAgent.Tools,
		StylePresets: localAgent.StylePresets,
	}
	if localAgent.CustomInstructions != nil {
		req.CustomInstructions = *localAgent.CustomInstructions
	}

	outcome := &notify.Outcome{ScheduleName: schedule.Name}

	taskResult, err := p.executor.Execute(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("Agent task failed")
		outcome.Status = models.ExecutionStatusFailed
		outcome.ErrorSummary = err.Error()

		if markErr := p.executions.MarkFailed(ctx, executionID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("Failed to mark execution failed")
		}
	} else {
		outcome.Status = models.ExecutionStatusCompleted

		markErr := p.executions.MarkCompleted(ctx, executionID, taskResult.ToolCalls,
			taskResult.Usage.PromptTokens, taskResult.Usage.CompletionTokens, taskResult.DurationMs)
		if markErr != nil {
			logger.Error().Err(markErr).Msg("Failed to mark execution completed")
		}
	}

	p.notifyOutcome(ctx, schedule, localAgent, outcome)

	return err == nil
}

func (p *Processor) notifyOutcome(ctx context.Context, schedule *models.AgentSchedule, localAgent *models.LocalAgent, outcome *notify.Outcome) {
	recipients, err := p.resolver.Resolve(ctx, localAgent, schedule, localAgent.WorkspaceID)
	if err != nil {
		log.Warn().Err(err).
			Str("schedule_id", schedule.ID.String()).
			Msg("Failed to resolve notification recipients")
		return
	}

	p.dispatcher.Dispatch(ctx, localAgent.WorkspaceID, schedule.AgentID, recipients, outcome)
}
