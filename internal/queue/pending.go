package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Orphan is a change message delivered to a consumer that never acknowledged it.
type Orphan struct {
	ID         string
	Owner      string
	Idle       time.Duration
	Deliveries int64
}

// Orphans lists up to limit messages of the group that have been pending for at least minIdle.
func (c *RedisConsumer) Orphans(ctx context.Context, minIdle time.Duration, limit int64) ([]Orphan, error) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.cfg.Stream,
		Group:  c.cfg.Group,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("listing pending changes (stream=%s): %w", c.cfg.Stream, err)
	}

	orphans := make([]Orphan, 0, len(pending))
	for _, p := range pending {
		orphans = append(orphans, Orphan{ID: p.ID, Owner: p.Consumer, Idle: p.Idle, Deliveries: p.RetryCount})
	}
	return orphans, nil
}

// Adopt transfers ownership of an orphan to claimant. It returns nil when another
// consumer adopted it first or its payload could not be read; unreadable payloads
// are acknowledged so they stop resurfacing.
func (c *RedisConsumer) Adopt(ctx context.Context, claimant string, orphan Orphan) (*Message, error) {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.cfg.Stream,
		Group:    c.cfg.Group,
		Consumer: claimant,
		MinIdle:  orphan.Idle,
		Messages: []string{orphan.ID},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("claiming change message %s: %w", orphan.ID, err)
	}
	if len(claimed) == 0 {
		return nil, nil
	}

	msg, err := ParseMessage(claimed[0])
	if err != nil {
		slog.ErrorContext(ctx, "dropping unreadable change message",
			"error", err,
			"raw_message_id", orphan.ID)
		_ = c.Ack(ctx, Message{ID: orphan.ID, Raw: claimed[0]})
		return nil, nil
	}
	return &msg, nil
}
