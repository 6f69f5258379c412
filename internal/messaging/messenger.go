package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/notify"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/queue"
	pkgredis "github.com/orbitdesk-ai/orbitdesk/internal/pkg/redis"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Messenger persists agent messages and hands them to the realtime delivery
// worker. Persisting is the source of truth; queueing is best-effort on top.
type Messenger struct {
	db    *gorm.DB
	queue *queue.Client
}

func NewMessenger(db *gorm.DB, queueClient *queue.Client) *Messenger {
	return &Messenger{db: db, queue: queueClient}
}

func (m *Messenger) Send(ctx context.Context, req *notify.SendRequest) error {
	message := &models.AgentMessage{
		WorkspaceID: req.WorkspaceID,
		AgentID:     req.AgentID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}

	if err := m.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to persist agent message: %w", err)
	}

	// The message is already readable from the inbox; a queue fault only
	// delays the realtime push.
	_, err := m.queue.EnqueueMessageDelivery(ctx, queue.MessageDeliveryPayload{
		MessageID:   message.ID,
		WorkspaceID: req.WorkspaceID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	})
	if err != nil {
		log.Warn().Err(err).
			Str("message_id", message.ID.String()).
			Msg("Failed to enqueue message delivery")
	}

	return nil
}

// DeliveryWorker publishes queued messages to the workspace's realtime
// channel for websocket fan-out.
type DeliveryWorker struct {
	redis *pkgredis.Client
}

func NewDeliveryWorker(redis *pkgredis.Client) *DeliveryWorker {
	return &DeliveryWorker{redis: redis}
}

func (w *DeliveryWorker) HandleMessageDelivery(ctx context.Context, task *asynq.Task) error {
	var payload queue.MessageDeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal delivery payload: %w", err)
	}

	event, err := json.Marshal(map[string]interface{}{
		"type":         "agent_message",
		"message_id":   payload.MessageID,
		"recipient_id": payload.RecipientID,
		"body":         payload.Body,
	})
	if err != nil {
		return err
	}

	channel := "workspace:" + payload.WorkspaceID.String() + ":messages"
	if err := w.redis.PublishEvent(ctx, channel, event); err != nil {
		return fmt.Errorf("failed to publish message event: %w", err)
	}

	log.Debug().
		Str("message_id", payload.MessageID.String()).
		Str("channel", channel).
		Msg("Delivered agent message event")

	return nil
}
