package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
	"adr.app/ledger/internal/worker"
)

var _ = Describe("Verifier", func() {
	var (
		ctx      context.Context
		stores   *mockStoreProvider
		verifier *worker.Verifier
		incident *model.Incident
		change   *model.IncidentChange
		msg      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		occurredAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		incident = &model.Incident{
			TrackingID: "ABEND_JOBX_abc123",
			OccurredAt: occurredAt,
			JobName:    "JOBX",
			Status:     model.StatusExtractionInitiated,
			Severity:   model.SeverityHigh,
			Generation: 1,
		}
		change = &model.IncidentChange{ID: 42, TrackingID: incident.TrackingID, OccurredAt: occurredAt, Generation: 1}
		msg = queue.Message{ChangeID: 42, TrackingID: incident.TrackingID, OccurredAt: occurredAt, Generation: 1}

		stores = &mockStoreProvider{
			incidents: &mockIncidentStore{getForUpdateFn: func(_ context.Context, key model.IncidentKey) (*model.Incident, error) {
				Expect(key).To(Equal(incident.Key()))
				return incident, nil
			}},
			index: &mockIndexStore{rowsFn: func(context.Context, model.IncidentKey) ([]model.IndexEntry, error) {
				return model.Projections(incident), nil
			}},
			audit: &mockAuditStore{countFn: func(_ context.Context, key model.IncidentKey) (int64, error) {
				Expect(key).To(Equal(incident.Key()))
				return incident.Generation + 1, nil
			}},
			changes: &mockChangeStore{getFn: func(context.Context, int64) (*model.IncidentChange, error) {
				return change, nil
			}},
		}
		verifier = worker.NewVerifier(&mockTxRunner{stores: stores}, stores.changes)
	})

	It("marks a change verified when projections match", func() {
		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeVerified))
		Expect(stores.index.refreshed).To(BeEmpty())
		Expect(stores.changes.verified).To(ConsistOf(int64(42)))
	})

	It("reports an audit trail shorter than the write history", func() {
		stores.audit.countFn = func(context.Context, model.IncidentKey) (int64, error) {
			return 1, nil
		}

		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeAuditGap))
		Expect(stores.changes.verified).To(ConsistOf(int64(42)))
	})

	It("does not count notes against the write history", func() {
		stores.audit.countFn = func(context.Context, model.IncidentKey) (int64, error) {
			return 5, nil
		}

		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeVerified))
	})

	It("repairs projections left at an older generation", func() {
		stale := incident.Clone()
		stale.Generation = 0
		stale.Status = model.StatusRegistered
		stores.index.rowsFn = func(context.Context, model.IncidentKey) ([]model.IndexEntry, error) {
			return model.Projections(stale), nil
		}

		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeRepaired))
		Expect(stores.index.refreshed).To(ConsistOf(incident))
		Expect(stores.changes.verified).To(ConsistOf(int64(42)))
	})

	It("repairs missing projections", func() {
		stores.index.rowsFn = func(context.Context, model.IncidentKey) ([]model.IndexEntry, error) {
			return model.Projections(incident)[:2], nil
		}
		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeRepaired))
	})

	It("skips changes already verified", func() {
		now := time.Now()
		change.VerifiedAt = &now

		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeAlreadyVerified))
		Expect(stores.changes.verified).To(BeEmpty())
	})

	It("acknowledges changes it does not know", func() {
		stores.changes.getFn = func(context.Context, int64) (*model.IncidentChange, error) {
			return nil, store.ErrNotFound
		}
		outcome, err := verifier.Verify(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(worker.OutcomeUnknownChange))
	})

	It("records the error on the change when verification fails", func() {
		stores.incidents.getForUpdateFn = func(context.Context, model.IncidentKey) (*model.Incident, error) {
			return nil, model.ErrStoreUnavailable
		}
		_, err := verifier.Verify(ctx, msg)
		Expect(errors.Is(err, model.ErrStoreUnavailable)).To(BeTrue())
		Expect(stores.changes.recordedErrors).To(HaveKey(int64(42)))
		Expect(stores.changes.verified).To(BeEmpty())
	})
})

var _ = Describe("ProjectionsMatch", func() {
	It("ignores row order", func() {
		incident := &model.Incident{
			TrackingID: "ABEND_JOBX_abc123",
			OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			JobName:    "JOBX",
			Status:     model.StatusRegistered,
			Severity:   model.SeverityLow,
		}
		rows := model.Projections(incident)
		reversed := make([]model.IndexEntry, len(rows))
		for i, r := range rows {
			reversed[len(rows)-1-i] = r
		}
		Expect(worker.ProjectionsMatch(incident, reversed)).To(BeTrue())
		Expect(worker.ProjectionsMatch(incident, rows[1:])).To(BeFalse())
	})
})
