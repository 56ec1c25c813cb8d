package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/common/id"
	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/store"
)

func newIncident(trackingID string, occurredAt time.Time) *model.Incident {
	now := model.NormalizeTime(time.Now())
	return &model.Incident{
		TrackingID:      trackingID,
		OccurredAt:      model.NormalizeTime(occurredAt),
		JobName:         "JOBX",
		DomainArea:      "payments",
		AbendType:       "S0C7",
		Status:          model.StatusRegistered,
		Severity:        model.SeverityHigh,
		VisitedStatuses: []model.Status{model.StatusRegistered},
		Metrics:         model.PhaseMetrics{},
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       model.DefaultActor,
		UpdatedBy:       model.DefaultActor,
	}
}

var _ = Describe("Postgres stores", func() {
	var (
		ctx    context.Context
		stores *store.Stores
		t0     time.Time
	)

	BeforeEach(func() {
		requireDB()
		ctx = context.Background()
		truncateAll(ctx)
		stores = store.NewStores(testDB.Queries())
		t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	Describe("IncidentStore", func() {
		It("creates and reads back an incident", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			conf := 0.75
			inc.RemediationMetadata = &model.RemediationMetadata{ConfidenceScore: &conf, Recommendations: "restart step 3"}
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())

			got, err := stores.Incidents().Get(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(model.StatusRegistered))
			Expect(got.OccurredAt.Equal(inc.OccurredAt)).To(BeTrue())
			Expect(*got.RemediationMetadata.ConfidenceScore).To(Equal(0.75))
			Expect(got.EmailMetadata).To(BeNil())
		})

		It("rejects a duplicate key", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(stores.Incidents().Create(ctx, inc)).To(MatchError(model.ErrAlreadyExists))
		})

		It("reports missing incidents as not found", func() {
			_, err := stores.Incidents().Get(ctx, model.IncidentKey{TrackingID: "ABEND_JOBX_none", OccurredAt: t0})
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("returns the latest occurrence for a tracking id", func() {
			Expect(stores.Incidents().Create(ctx, newIncident("ABEND_JOBX_abc123", t0))).To(Succeed())
			Expect(stores.Incidents().Create(ctx, newIncident("ABEND_JOBX_abc123", t0.Add(time.Hour)))).To(Succeed())

			got, err := stores.Incidents().GetLatest(ctx, "ABEND_JOBX_abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.OccurredAt).To(Equal(t0.Add(time.Hour)))
		})

		It("swaps only on the expected generation", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())

			next := inc.Clone()
			next.Status = model.StatusExtractionInitiated
			next.Generation = 1
			Expect(stores.Incidents().CompareAndSwap(ctx, next, 0)).To(Succeed())
			Expect(stores.Incidents().CompareAndSwap(ctx, next, 0)).To(MatchError(model.ErrConflict))

			got, err := stores.Incidents().Get(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Generation).To(Equal(int64(1)))
			Expect(got.Status).To(Equal(model.StatusExtractionInitiated))
		})

		It("lets exactly one concurrent writer win", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				conflicts int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					next := inc.Clone()
					next.AbendReason = fmt.Sprintf("writer %d", i)
					next.Generation = 1
					err := store.NewStores(testDB.Queries()).Incidents().CompareAndSwap(ctx, next, 0)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, model.ErrConflict):
						conflicts++
					default:
						Fail(err.Error())
					}
				}(i)
			}
			wg.Wait()
			Expect(successes).To(Equal(1))
			Expect(conflicts).To(Equal(7))
		})
	})

	Describe("IndexStore", func() {
		It("replaces projections atomically on refresh", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(stores.Index().Refresh(ctx, inc)).To(Succeed())

			rows, err := stores.Index().Rows(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(len(model.Projections(inc))))

			inc.Status = model.StatusExtractionInitiated
			inc.DomainArea = ""
			inc.Generation = 1
			Expect(stores.Index().Refresh(ctx, inc)).To(Succeed())

			rows, err = stores.Index().Rows(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(len(model.Projections(inc))))
			for _, row := range rows {
				Expect(row.Generation).To(Equal(int64(1)))
				Expect(row.Dimension).NotTo(Equal(model.DimensionDomainArea))
				if row.Dimension == model.DimensionStatus {
					Expect(row.Value).To(Equal(string(model.StatusExtractionInitiated)))
				}
			}
		})

		It("pages in key order with filters and date bounds", func() {
			for i := 0; i < 5; i++ {
				inc := newIncident(fmt.Sprintf("ABEND_JOBX_%d", i), t0.Add(time.Duration(i)*24*time.Hour))
				if i%2 == 1 {
					inc.Severity = model.SeverityLow
				}
				Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
				Expect(stores.Index().Refresh(ctx, inc)).To(Succeed())
			}

			rows, err := stores.Index().List(ctx, store.IndexQuery{
				Dimension: model.DimensionStatus,
				Value:     string(model.StatusRegistered),
				Order:     pagination.OrderAsc,
				Severity:  model.SeverityHigh,
				Limit:     10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].TrackingID).To(Equal("ABEND_JOBX_0"))

			rows, err = stores.Index().List(ctx, store.IndexQuery{
				Dimension:       model.DimensionAll,
				Value:           model.AllValue(),
				Order:           pagination.OrderDesc,
				AfterKey:        model.OccurredAtKey(t0.Add(3 * 24 * time.Hour)),
				AfterTrackingID: "ABEND_JOBX_3",
				ThroughPrefix:   "2024-01-02",
				Limit:           10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].TrackingID).To(Equal("ABEND_JOBX_1"))

			rows, err = stores.Index().List(ctx, store.IndexQuery{
				Dimension:  model.DimensionAll,
				Value:      model.AllValue(),
				DatePrefix: "2024-01-03",
				Limit:      10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].TrackingID).To(Equal("ABEND_JOBX_2"))
		})

		It("treats search wildcards literally", func() {
			inc := newIncident("ABEND_PAY-ROLL_1", t0)
			inc.JobName = "PAY-ROLL"
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(stores.Index().Refresh(ctx, inc)).To(Succeed())

			rows, err := stores.Index().List(ctx, store.IndexQuery{Dimension: model.DimensionAll, Value: model.AllValue(), Search: "y-r", Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))

			rows, err = stores.Index().List(ctx, store.IndexQuery{Dimension: model.DimensionAll, Value: model.AllValue(), Search: "%", Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
		It("keeps keyset pages stable while incidents are inserted", func() {
			seed := func(trackingID string, at time.Time) {
				inc := newIncident(trackingID, at)
				Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
				Expect(stores.Index().Refresh(ctx, inc)).To(Succeed())
			}
			for i := 0; i < 6; i++ {
				seed(fmt.Sprintf("ABEND_JOBX_%d", i), t0.Add(time.Duration(i)*time.Hour))
			}
			query := store.IndexQuery{
				Dimension: model.DimensionStatus,
				Value:     string(model.StatusRegistered),
				Order:     pagination.OrderAsc,
				Limit:     3,
			}

			first, err := stores.Index().List(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveLen(3))
			last := first[len(first)-1]

			seed("ABEND_JOBX_early", t0.Add(-time.Hour))
			seed("ABEND_JOBX_tie", t0.Add(2*time.Hour))
			seed("ABEND_JOBX_late", t0.Add(48*time.Hour))

			query.AfterKey = last.OccurredAtKey
			query.AfterTrackingID = last.TrackingID
			query.Limit = 10
			second, err := stores.Index().List(ctx, query)
			Expect(err).NotTo(HaveOccurred())

			seen := map[string]int{}
			for _, row := range append(first, second...) {
				seen[row.TrackingID]++
			}
			for i := 0; i < 6; i++ {
				Expect(seen).To(HaveKeyWithValue(fmt.Sprintf("ABEND_JOBX_%d", i), 1))
			}
			Expect(seen).NotTo(HaveKey("ABEND_JOBX_early"))
			Expect(seen).To(HaveKeyWithValue("ABEND_JOBX_late", 1))
			Expect(seen).To(HaveKeyWithValue("ABEND_JOBX_tie", 1))
			for _, row := range second {
				Expect(row.OccurredAtKey >= last.OccurredAtKey).To(BeTrue())
			}
		})
	})

	Describe("AuditStore", func() {
		It("appends and lists in recorded order", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())

			for i, action := range []model.AuditAction{model.AuditActionCreated, model.AuditActionStatusChange, model.AuditActionNote} {
				Expect(stores.Audit().Append(ctx, &model.AuditEntry{
					AuditID:    id.New(),
					TrackingID: inc.TrackingID,
					OccurredAt: inc.OccurredAt,
					Action:     action,
					Status:     inc.Status,
					Actor:      model.DefaultActor,
					Timestamp:  t0.Add(time.Duration(i) * time.Second),
					After:      json.RawMessage(`{"status":"Registered"}`),
				})).To(Succeed())
			}

			entries, err := stores.Audit().List(ctx, store.AuditQuery{TrackingID: inc.TrackingID, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].Action).To(Equal(model.AuditActionCreated))
			Expect(entries[0].Level).To(Equal(model.AuditLevelInfo))

			after := entries[0].Timestamp
			entries, err = stores.Audit().List(ctx, store.AuditQuery{
				TrackingID:      inc.TrackingID,
				AfterRecordedAt: &after,
				AfterAuditID:    entries[0].AuditID,
				Action:          model.AuditActionNote,
				Limit:           10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Action).To(Equal(model.AuditActionNote))
		})

		It("refuses to mutate recorded entries", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(stores.Audit().Append(ctx, &model.AuditEntry{
				AuditID: id.New(), TrackingID: inc.TrackingID, OccurredAt: inc.OccurredAt,
				Action: model.AuditActionCreated, Status: inc.Status, Actor: "system", Timestamp: t0,
			})).To(Succeed())

			_, err := testDB.Pool().Exec(ctx, `UPDATE incident_audit SET actor = 'mallory'`)
			Expect(err).To(HaveOccurred())
			_, err = testDB.Pool().Exec(ctx, `DELETE FROM incident_audit`)
			Expect(err).To(HaveOccurred())
		})

		It("pages without duplicates while entries are appended concurrently", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			appendAt := func(s *store.Stores, at time.Time) int64 {
				auditID := id.New()
				Expect(s.Audit().Append(ctx, &model.AuditEntry{
					AuditID: auditID, TrackingID: inc.TrackingID, OccurredAt: inc.OccurredAt,
					Action: model.AuditActionFieldUpdate, Status: inc.Status, Actor: model.DefaultActor, Timestamp: at,
				})).To(Succeed())
				return auditID
			}
			var original []int64
			for i := 0; i < 4; i++ {
				original = append(original, appendAt(stores, t0.Add(time.Duration(i)*time.Second)))
			}

			first, err := stores.Audit().List(ctx, store.AuditQuery{TrackingID: inc.TrackingID, Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveLen(2))

			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					appendAt(store.NewStores(testDB.Queries()), t0.Add(time.Minute+time.Duration(i)*time.Second))
				}(i)
			}
			wg.Wait()

			after := first[1].Timestamp
			second, err := stores.Audit().List(ctx, store.AuditQuery{
				TrackingID:      inc.TrackingID,
				AfterRecordedAt: &after,
				AfterAuditID:    first[1].AuditID,
				Limit:           20,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(HaveLen(7))

			seen := map[int64]int{}
			for _, e := range append(first, second...) {
				seen[e.AuditID]++
			}
			Expect(seen).To(HaveLen(9))
			for _, auditID := range original {
				Expect(seen).To(HaveKeyWithValue(auditID, 1))
			}

			total, err := stores.Audit().Count(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(len(seen))))
		})

		It("keeps entries after the incident row is removed", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(stores.Audit().Append(ctx, &model.AuditEntry{
				AuditID: id.New(), TrackingID: inc.TrackingID, OccurredAt: inc.OccurredAt,
				Action: model.AuditActionCreated, Status: inc.Status, Actor: model.DefaultActor, Timestamp: t0,
			})).To(Succeed())

			_, err := testDB.Pool().Exec(ctx, `DELETE FROM incidents WHERE tracking_id = $1`, inc.TrackingID)
			Expect(err).NotTo(HaveOccurred())

			_, err = stores.Incidents().Get(ctx, inc.Key())
			Expect(err).To(MatchError(store.ErrNotFound))
			n, err := stores.Audit().Count(ctx, inc.Key())
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))
			entries, err := stores.Audit().List(ctx, store.AuditQuery{TrackingID: inc.TrackingID, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})

	Describe("SOPStore", func() {
		newSOP := func(sopID, name string, createdAt time.Time) *model.SOP {
			at := model.NormalizeTime(createdAt)
			return &model.SOP{
				SOPID:                 sopID,
				Name:                  name,
				JobName:               "JOBX",
				AbendType:             "S0C7",
				SourceDocumentURL:     "https://docs.example.com/" + sopID + ".pdf",
				ProcessedDocumentURLs: []string{},
				CreatedAt:             at,
				UpdatedAt:             at,
				CreatedBy:             model.DefaultActor,
				UpdatedBy:             model.DefaultActor,
			}
		}

		It("creates and reads back an sop", func() {
			sop := newSOP("SOP_a", "JOBX restart", t0)
			sop.ProcessedDocumentURLs = []string{"https://docs.example.com/SOP_a.md"}
			Expect(stores.SOPs().Create(ctx, sop)).To(Succeed())

			got, err := stores.SOPs().Get(ctx, "SOP_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(sop))

			err = stores.SOPs().Create(ctx, newSOP("SOP_a", "again", t0))
			Expect(errors.Is(err, model.ErrAlreadyExists)).To(BeTrue())
		})

		It("swaps only at the expected generation", func() {
			sop := newSOP("SOP_a", "JOBX restart", t0)
			Expect(stores.SOPs().Create(ctx, sop)).To(Succeed())

			next := sop.Clone()
			next.Name = "JOBX restart v2"
			Expect(stores.SOPs().CompareAndSwap(ctx, next, 0)).To(Succeed())

			err := stores.SOPs().CompareAndSwap(ctx, next, 0)
			Expect(errors.Is(err, model.ErrConflict)).To(BeTrue())

			err = stores.SOPs().CompareAndSwap(ctx, newSOP("SOP_missing", "x", t0), 0)
			Expect(errors.Is(err, model.ErrNotFound)).To(BeTrue())

			got, err := stores.SOPs().Get(ctx, "SOP_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("JOBX restart v2"))
			Expect(got.Generation).To(Equal(int64(1)))
		})

		It("lists newest first and resumes after a keyset", func() {
			for i := 0; i < 4; i++ {
				Expect(stores.SOPs().Create(ctx, newSOP(fmt.Sprintf("SOP_%d", i), "runbook", t0.Add(time.Duration(i)*time.Hour)))).To(Succeed())
			}
			// Same instant as SOP_2, ordered by id.
			Expect(stores.SOPs().Create(ctx, newSOP("SOP_2b", "runbook", t0.Add(2*time.Hour)))).To(Succeed())

			first, err := stores.SOPs().List(ctx, store.SOPQuery{Limit: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(first)).To(Equal([]string{"SOP_3", "SOP_2b", "SOP_2"}))

			last := first[len(first)-1]
			rest, err := stores.SOPs().List(ctx, store.SOPQuery{AfterCreatedAt: &last.CreatedAt, AfterSOPID: last.SOPID, Limit: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(rest)).To(Equal([]string{"SOP_1", "SOP_0"}))
		})

		It("filters by job and treats the search text literally", func() {
			Expect(stores.SOPs().Create(ctx, newSOP("SOP_a", "100% restart", t0))).To(Succeed())
			Expect(stores.SOPs().Create(ctx, newSOP("SOP_b", "1000 restart", t0.Add(time.Hour)))).To(Succeed())
			other := newSOP("SOP_c", "100% restart", t0.Add(2*time.Hour))
			other.JobName = "JOBY"
			Expect(stores.SOPs().Create(ctx, other)).To(Succeed())

			got, err := stores.SOPs().List(ctx, store.SOPQuery{JobName: "JOBX", Search: "100%", Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(got)).To(Equal([]string{"SOP_a"}))

			got, err = stores.SOPs().List(ctx, store.SOPQuery{Search: "RESTART", Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
		})
	})

	Describe("ChangeStore", func() {
		It("tracks publication and verification", func() {
			inc := newIncident("ABEND_JOBX_abc123", t0)
			Expect(stores.Incidents().Create(ctx, inc)).To(Succeed())

			change := &model.IncidentChange{
				ID: id.New(), TrackingID: inc.TrackingID, OccurredAt: inc.OccurredAt,
				Kind: model.ChangeKindCreated, CreatedAt: time.Now().Add(-time.Hour),
			}
			Expect(stores.Changes().Create(ctx, change)).To(Succeed())

			stale, err := stores.Changes().ListStale(ctx, time.Now().Add(-time.Minute), 3, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(HaveLen(1))

			Expect(stores.Changes().MarkRepublished(ctx, change.ID)).To(Succeed())
			stale, err = stores.Changes().ListStale(ctx, time.Now().Add(-time.Minute), 3, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(BeEmpty())

			Expect(stores.Changes().RecordError(ctx, change.ID, "projection drift")).To(Succeed())
			Expect(stores.Changes().MarkVerified(ctx, change.ID)).To(Succeed())
			got, err := stores.Changes().Get(ctx, change.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Attempts).To(Equal(1))
			Expect(got.VerifiedAt).NotTo(BeNil())
			Expect(got.LastError).To(BeNil())
		})
	})

	It("rolls back every write of a failed transaction", func() {
		inc := newIncident("ABEND_JOBX_abc123", t0)
		err := testDB.WithTx(ctx, func(q *sqlc.Queries) error {
			tx := store.NewStores(q)
			Expect(tx.Incidents().Create(ctx, inc)).To(Succeed())
			Expect(tx.Index().Refresh(ctx, inc)).To(Succeed())
			return model.ErrConflict
		})
		Expect(err).To(MatchError(model.ErrConflict))

		_, err = stores.Incidents().Get(ctx, inc.Key())
		Expect(err).To(MatchError(store.ErrNotFound))
		rows, err := stores.Index().Rows(ctx, inc.Key())
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})
})

func ids(sops []model.SOP) []string {
	out := make([]string, 0, len(sops))
	for _, s := range sops {
		out = append(out, s.SOPID)
	}
	return out
}
