package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/worker"
)

var _ = Describe("Reconciler", func() {
	var (
		ctx        context.Context
		changes    *mockChangeStore
		producer   *mockProducer
		locker     *mockLocker
		reconciler *worker.Reconciler
		cfg        worker.ReconcilerConfig
	)

	staleChanges := func(ids ...int64) []model.IncidentChange {
		out := make([]model.IncidentChange, 0, len(ids))
		for _, id := range ids {
			out = append(out, model.IncidentChange{
				ID:         id,
				TrackingID: "ABEND_JOBX_abc123",
				OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Generation: id,
				Attempts:   2,
			})
		}
		return out
	}

	BeforeEach(func() {
		ctx = context.Background()
		changes = &mockChangeStore{}
		producer = &mockProducer{}
		locker = &mockLocker{}
		cfg = worker.ReconcilerConfig{
			Schedule:    "@every 1m",
			StaleAfter:  2 * time.Minute,
			BatchSize:   100,
			MaxAttempts: 10,
			LockKey:     "ledger:reconcile",
			LockTTL:     50 * time.Second,
		}
		reconciler = worker.NewReconciler(changes, producer, locker, cfg)
	})

	It("republishes stale unverified changes", func() {
		changes.listStaleFn = func(_ context.Context, staleBefore time.Time, maxAttempts, limit int32) ([]model.IncidentChange, error) {
			Expect(staleBefore).To(BeTemporally("~", time.Now().Add(-2*time.Minute), 5*time.Second))
			Expect(maxAttempts).To(Equal(int32(10)))
			Expect(limit).To(Equal(int32(100)))
			return staleChanges(1, 2), nil
		}

		n, err := reconciler.Sweep(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(producer.enqueued).To(HaveLen(2))
		Expect(producer.enqueued[0].TaskType).To(Equal(queue.TaskTypeChangeReconciled))
		Expect(changes.republished).To(Equal([]int64{1, 2}))
		Expect(locker.keys).To(Equal([]string{"ledger:reconcile"}))
		Expect(locker.released).To(Equal(1))
	})

	It("skips the sweep when another process holds the lock", func() {
		locker.err = worker.ErrLockHeld
		changes.listStaleFn = func(context.Context, time.Time, int32, int32) ([]model.IncidentChange, error) {
			Fail("listed changes without the lock")
			return nil, nil
		}

		n, err := reconciler.Sweep(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})

	It("surfaces lock backend errors", func() {
		locker.err = errors.New("redis down")
		_, err := reconciler.Sweep(ctx)
		Expect(err).To(MatchError(ContainSubstring("redis down")))
	})

	It("stops at the first publish failure without marking the change", func() {
		changes.listStaleFn = func(context.Context, time.Time, int32, int32) ([]model.IncidentChange, error) {
			return staleChanges(1, 2, 3), nil
		}
		producer.enqueueFn = func(_ context.Context, msg queue.ChangeMessage) error {
			if msg.ChangeID == 2 {
				return errors.New("stream unavailable")
			}
			return nil
		}

		n, err := reconciler.Sweep(ctx)
		Expect(err).To(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(changes.republished).To(Equal([]int64{1}))
		Expect(locker.released).To(Equal(1))
	})

	It("rejects an invalid schedule", func() {
		cfg.Schedule = "whenever"
		reconciler = worker.NewReconciler(changes, producer, locker, cfg)
		Expect(reconciler.Run(ctx)).To(MatchError(ContainSubstring("whenever")))
	})
})
