package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"

	"adr.app/ledger/common/logger"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
)

// ErrLockHeld is returned by a Locker when another process holds the lock.
var ErrLockHeld = errors.New("lock held elsewhere")

// Locker grants a lock for at most ttl. release gives it back early.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type redisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redislock.Client) Locker {
	return &redisLocker{client: client}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}
	return lock.Release, nil
}

type ReconcilerConfig struct {
	Schedule    string
	StaleAfter  time.Duration
	BatchSize   int32
	MaxAttempts int32
	LockKey     string
	LockTTL     time.Duration
}

// Reconciler republishes committed changes that were never verified, e.g.
// because the server crashed before publishing or the stream lost them.
// Only one process sweeps at a time.
type Reconciler struct {
	changes  store.ChangeStore
	producer queue.Producer
	locker   Locker
	cfg      ReconcilerConfig
	now      func() time.Time
}

func NewReconciler(changes store.ChangeStore, producer queue.Producer, locker Locker, cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{
		changes:  changes,
		producer: producer,
		locker:   locker,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sweeps on the configured schedule until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "ledger.worker.reconciler"})

	cronLog := slogCronLogger{ctx: ctx}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(r.cfg.Schedule, func() {
		if _, err := r.Sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "reconcile sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling reconciler %q: %w", r.cfg.Schedule, err)
	}

	slog.InfoContext(ctx, "reconciler started",
		"schedule", r.cfg.Schedule,
		"stale_after", r.cfg.StaleAfter)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.InfoContext(ctx, "reconciler stopped")
	return nil
}

// Sweep republishes one batch of stale changes and returns how many were sent.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	release, err := r.locker.TryLock(ctx, r.cfg.LockKey, r.cfg.LockTTL)
	if errors.Is(err, ErrLockHeld) {
		slog.DebugContext(ctx, "another reconciler is sweeping, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			slog.WarnContext(ctx, "failed to release reconcile lock", "error", err)
		}
	}()

	staleBefore := r.now().Add(-r.cfg.StaleAfter)
	stale, err := r.changes.ListStale(ctx, staleBefore, r.cfg.MaxAttempts, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing stale changes: %w", err)
	}

	republished := 0
	for i := range stale {
		change := &stale[i]
		if err := r.producer.Enqueue(ctx, queue.NewChangeMessage(queue.TaskTypeChangeReconciled, change)); err != nil {
			// The stream is likely down; the next sweep retries the whole batch.
			return republished, fmt.Errorf("republishing change %d: %w", change.ID, err)
		}
		if err := r.changes.MarkRepublished(ctx, change.ID); err != nil {
			return republished, fmt.Errorf("marking change %d republished: %w", change.ID, err)
		}
		republished++
	}

	if republished > 0 {
		slog.InfoContext(ctx, "republished stale changes", "count", republished)
	}
	return republished, nil
}

type slogCronLogger struct {
	ctx context.Context
}

func (l slogCronLogger) Info(msg string, keysAndValues ...any) {
	slog.DebugContext(l.ctx, "cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.ErrorContext(l.ctx, "cron: "+msg, append(keysAndValues, "error", err)...)
}
