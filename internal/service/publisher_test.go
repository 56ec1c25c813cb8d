package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/service"
)

var _ = Describe("ChangePublisher", func() {
	var (
		ctx      context.Context
		producer *mockProducer
		changes  *mockChangeStore
		change   *model.IncidentChange
	)

	BeforeEach(func() {
		ctx = context.Background()
		producer = &mockProducer{}
		changes = &mockChangeStore{}
		change = &model.IncidentChange{
			ID:         42,
			TrackingID: "ABEND_JOBX_abc123",
			OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Generation: 1,
			Kind:       model.ChangeKindStatusChanged,
		}
	})

	It("enqueues the change and marks it published", func() {
		service.NewChangePublisher(producer, changes).Publish(ctx, change)

		Expect(producer.enqueued).To(HaveLen(1))
		msg := producer.enqueued[0]
		Expect(msg.TaskType).To(Equal(queue.TaskTypeChangeCommitted))
		Expect(msg.ChangeID).To(Equal(int64(42)))
		Expect(msg.Generation).To(Equal(int64(1)))
		Expect(changes.markPublishedCalls).To(Equal(1))
	})

	It("leaves the change unpublished when the stream is unavailable", func() {
		producer.enqueueFn = func(context.Context, queue.ChangeMessage) error {
			return errors.New("connection refused")
		}

		service.NewChangePublisher(producer, changes).Publish(ctx, change)
		Expect(changes.markPublishedCalls).To(BeZero())
	})

	It("still publishes when the caller's context is already cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		producer.enqueueFn = func(ctx context.Context, _ queue.ChangeMessage) error {
			return ctx.Err()
		}

		service.NewChangePublisher(producer, changes).Publish(cancelled, change)
		Expect(changes.markPublishedCalls).To(Equal(1))
	})

	It("falls back to a no-op without a producer", func() {
		Expect(func() {
			service.NewChangePublisher(nil, changes).Publish(ctx, change)
		}).NotTo(Panic())
	})
})
