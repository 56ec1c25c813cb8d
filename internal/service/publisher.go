package service

import (
	"context"
	"log/slog"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
)

// ChangePublisher announces committed incident changes to the verifier.
// Publishing is best effort: a change that never reaches the stream stays
// unverified in the outbox and is picked up by the reconciler.
type ChangePublisher interface {
	Publish(ctx context.Context, change *model.IncidentChange)
}

type streamPublisher struct {
	producer queue.Producer
	changes  store.ChangeStore
}

func NewChangePublisher(producer queue.Producer, changes store.ChangeStore) ChangePublisher {
	if producer == nil {
		return NopPublisher()
	}
	return &streamPublisher{producer: producer, changes: changes}
}

func (p *streamPublisher) Publish(ctx context.Context, change *model.IncidentChange) {
	if change == nil {
		return
	}
	// The write is already committed; a caller that goes away must not stop the announcement.
	ctx = context.WithoutCancel(ctx)

	if err := p.producer.Enqueue(ctx, queue.NewChangeMessage(queue.TaskTypeChangeCommitted, change)); err != nil {
		slog.WarnContext(ctx, "publishing incident change failed, leaving it to the reconciler",
			"error", err,
			"change_id", change.ID,
			"tracking_id", change.TrackingID)
		return
	}
	if p.changes == nil {
		return
	}
	if err := p.changes.MarkPublished(ctx, change.ID); err != nil {
		slog.WarnContext(ctx, "marking incident change published failed",
			"error", err,
			"change_id", change.ID)
	}
}

type nopPublisher struct{}

// NopPublisher discards changes. Used when no change stream is configured.
func NopPublisher() ChangePublisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, *model.IncidentChange) {}
