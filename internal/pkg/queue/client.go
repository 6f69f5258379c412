package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/config"
)

const (
	TypeMessageDelivery = "message:delivery"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg *config.RedisConfig) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// MessageDeliveryPayload carries a persisted agent message to the realtime
// delivery worker.
type MessageDeliveryPayload struct {
	MessageID   uuid.UUID `json:"message_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Body        string    `json:"body"`
}

func (c *Client) EnqueueMessageDelivery(ctx context.Context, payload MessageDeliveryPayload) (*asynq.TaskInfo, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeMessageDelivery, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
	)

	return c.client.EnqueueContext(ctx, task)
}
