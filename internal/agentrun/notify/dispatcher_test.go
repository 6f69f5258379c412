package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMessenger struct {
	sent    []*SendRequest
	failFor map[uuid.UUID]bool
}

func (m *recordingMessenger) Send(ctx context.Context, req *SendRequest) error {
	m.sent = append(m.sent, req)
	if m.failFor[req.RecipientID] {
		return errors.New("delivery failed")
	}
	return nil
}

func TestDispatchSendsToEveryRecipient(t *testing.T) {
	messenger := &recordingMessenger{}
	dispatcher := NewDispatcher(messenger)

	recipients := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	dispatcher.Dispatch(context.Background(), uuid.New(), uuid.New(), recipients, &Outcome{
		ScheduleName: "Nightly summary",
		Status:       models.ExecutionStatusCompleted,
	})

	require.Len(t, messenger.sent, 3)
	for i, req := range messenger.sent {
		assert.Equal(t, recipients[i], req.RecipientID)
		assert.Contains(t, req.Body, "Nightly summary")
	}
}

func TestDispatchFailureDoesNotBlockOthers(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	messenger := &recordingMessenger{failFor: map[uuid.UUID]bool{first: true}}
	dispatcher := NewDispatcher(messenger)

	dispatcher.Dispatch(context.Background(), uuid.New(), uuid.New(), []uuid.UUID{first, second}, &Outcome{
		ScheduleName: "Nightly summary",
		Status:       models.ExecutionStatusCompleted,
	})

	assert.Len(t, messenger.sent, 2)
}

func TestFormatOutcome(t *testing.T) {
	completed := FormatOutcome(&Outcome{
		ScheduleName: "Daily pipeline review",
		Status:       models.ExecutionStatusCompleted,
	})
	assert.Equal(t, `Scheduled task "Daily pipeline review" completed successfully.`, completed)

	failed := FormatOutcome(&Outcome{
		ScheduleName: "Daily pipeline review",
		Status:       models.ExecutionStatusFailed,
		ErrorSummary: "API rate limit exceeded",
	})
	assert.Equal(t, `Scheduled task "Daily pipeline review" failed: API rate limit exceeded`, failed)
}
