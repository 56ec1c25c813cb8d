package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adr.app/ledger/common/logger"
	"adr.app/ledger/internal/queue"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is the pause after a failed stream read.
	ErrorBackoff time.Duration
}

// Worker consumes committed incident changes and verifies their index projections.
type Worker struct {
	consumer Consumer
	verifier ChangeVerifier
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, verifier ChangeVerifier, cfg Config) *Worker {
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		verifier:  verifier,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "ledger.worker"})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorBackoff):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"change_id", msg.ChangeID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"change_id", msg.ChangeID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// Exported so it can be reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID:  logger.Ptr(msg.ID),
		ChangeID:   logger.Ptr(msg.ChangeID),
		TrackingID: logger.Ptr(msg.TrackingID),
	})
	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.verify_change")
	defer span.End()
	ctx = span.Context()

	start := time.Now()
	outcome, err := w.verifier.Verify(ctx, msg)
	if err != nil {
		span.RecordError(err)
		// Not acked; the message is requeued or dead-lettered by the caller.
		return fmt.Errorf("verifying change: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will redeliver it; verifying twice is harmless.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}

	slog.InfoContext(ctx, "change processed",
		"task_type", msg.TaskType,
		"outcome", outcome,
		"attempt", msg.Attempt,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"change_id", msg.ChangeID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"change_id", msg.ChangeID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
