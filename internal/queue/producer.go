package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, msg ChangeMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg ChangeMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}
	taskType := msg.TaskType
	if taskType == "" {
		taskType = TaskTypeChangeCommitted
	}

	fields := map[string]any{
		"task_type":   string(taskType),
		"change_id":   msg.ChangeID,
		"tracking_id": msg.TrackingID,
		"occurred_at": formatOccurredAt(msg.OccurredAt),
		"generation":  msg.Generation,
		"attempt":     attempt,
	}

	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue change: %w", err)
	}

	p.logger.DebugContext(ctx, "enqueued incident change",
		"change_id", msg.ChangeID,
		"tracking_id", msg.TrackingID,
		"generation", msg.Generation,
		"task_type", taskType,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
