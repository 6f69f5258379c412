package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// SendRequest is one message addressed to one workspace member.
type SendRequest struct {
	WorkspaceID uuid.UUID
	AgentID     uuid.UUID
	RecipientID uuid.UUID
	Body        string
}

// Messenger delivers a single agent message.
type Messenger interface {
	Send(ctx context.Context, req *SendRequest) error
}

// Outcome describes a finished run for message formatting.
type Outcome struct {
	ScheduleName string
	Status       string
	ErrorSummary string
}

type Dispatcher struct {
	messenger Messenger
}

func NewDispatcher(messenger Messenger) *Dispatcher {
	return &Dispatcher{messenger: messenger}
}

// Dispatch sends the outcome message to each recipient. Delivery failures
// are logged and swallowed; one bad recipient never blocks the others and
// never fails the run that produced the notification.
func (d *Dispatcher) Dispatch(ctx context.Context, workspaceID, agentID uuid.UUID, recipients []uuid.UUID, outcome *Outcome) {
	body := FormatOutcome(outcome)

	for _, recipient := range recipients {
		err := d.messenger.Send(ctx, &SendRequest{
			WorkspaceID: workspaceID,
			AgentID:     agentID,
			RecipientID: recipient,
			Body:        body,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("recipient_id", recipient.String()).
				Str("schedule_name", outcome.ScheduleName).
				Msg("Failed to deliver run notification")
		}
	}
}

func FormatOutcome(outcome *Outcome) string {
	if outcome.Status == models.ExecutionStatusFailed {
		return fmt.Sprintf("Scheduled task %q failed: %s", outcome.ScheduleName, outcome.ErrorSummary)
	}
	return fmt.Sprintf("Scheduled task %q completed successfully.", outcome.ScheduleName)
}
