package worker

import (
	"context"
	"log/slog"
	"time"

	"adr.app/ledger/common/logger"
	"adr.app/ledger/internal/queue"
)

type ReclaimerConfig struct {
	// Claimant is the consumer name adopted change messages are moved to.
	Claimant    string
	MinIdle     time.Duration
	Interval    time.Duration
	BatchSize   int64
	MaxAttempts int
}

// Reclaimer re-verifies change messages whose worker died after reading them
// and before acknowledging them.
type Reclaimer struct {
	orphans   OrphanSource
	consumer  Consumer
	verify    queue.MessageProcessor
	cfg       ReclaimerConfig
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(orphans OrphanSource, consumer Consumer, verify queue.MessageProcessor, cfg ReclaimerConfig) *Reclaimer {
	return &Reclaimer{
		orphans:   orphans,
		consumer:  consumer,
		verify:    verify,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run sweeps on every interval tick until Stop is called or ctx ends.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "ledger.worker.reclaimer"})
	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "orphaned change recovery running",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"claimant", r.cfg.Claimant)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "orphaned change sweep failed", "error", err)
			}
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// SweepResult counts what one sweep did with the orphans it found.
type SweepResult struct {
	Found        int
	Verified     int
	DeadLettered int
	Failed       int
}

// Sweep adopts every orphan idle past MinIdle and verifies its change. An orphan
// whose deliveries reach MaxAttempts is dead-lettered when verification fails again.
func (r *Reclaimer) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	orphans, err := r.orphans.Orphans(ctx, r.cfg.MinIdle, r.cfg.BatchSize)
	if err != nil {
		return res, err
	}
	res.Found = len(orphans)

	for _, orphan := range orphans {
		msg, err := r.orphans.Adopt(ctx, r.cfg.Claimant, orphan)
		if err != nil {
			slog.ErrorContext(ctx, "could not adopt orphaned change", "error", err, "message_id", orphan.ID, "owner", orphan.Owner)
			res.Failed++
			continue
		}
		if msg == nil {
			continue
		}

		mctx := logger.WithLogFields(ctx, logger.LogFields{
			MessageID:  logger.Ptr(msg.ID),
			ChangeID:   logger.Ptr(msg.ChangeID),
			TrackingID: logger.Ptr(msg.TrackingID),
		})
		verr := r.verify(mctx, *msg)
		if verr == nil {
			res.Verified++
			continue
		}
		if int64(msg.Attempt)+orphan.Deliveries >= int64(r.cfg.MaxAttempts) {
			if dlqErr := r.consumer.SendDLQ(mctx, *msg, verr.Error()); dlqErr != nil {
				slog.ErrorContext(mctx, "orphaned change kept pending, dead-lettering failed", "error", dlqErr)
				res.Failed++
				continue
			}
			res.DeadLettered++
			continue
		}
		slog.WarnContext(mctx, "orphaned change still unverified",
			"error", verr,
			"deliveries", orphan.Deliveries,
			"idle", orphan.Idle)
		res.Failed++
	}

	if res.Found > 0 {
		slog.InfoContext(ctx, "orphaned change sweep finished",
			"found", res.Found,
			"verified", res.Verified,
			"dead_lettered", res.DeadLettered,
			"failed", res.Failed)
	}
	return res, nil
}

var _ OrphanSource = (*queue.RedisConsumer)(nil)
