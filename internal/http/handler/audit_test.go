package handler_test

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/http/handler"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/service"
)

var _ = Describe("AuditHandler", func() {
	const trackingID = "ABEND_PAYROLL01_3f2a9c1b"

	var (
		router  *gin.Engine
		queries *mockQueryService
		audit   *mockAuditService
	)

	BeforeEach(func() {
		router = gin.New()
		queries = &mockQueryService{}
		audit = &mockAuditService{}
		h := handler.NewAuditHandler(queries, audit)
		router.GET("/incidents/:trackingId/audit", h.List)
		router.POST("/incidents/:trackingId/audit", h.Note)
	})

	It("lists the trail with filters", func() {
		var got service.AuditListParams
		queries.auditFn = func(_ context.Context, p service.AuditListParams) (pagination.Page[model.AuditEntry], error) {
			got = p
			return pagination.Page[model.AuditEntry]{
				Data: []model.AuditEntry{{AuditID: 7, TrackingID: trackingID, Action: model.AuditActionStatusChange}},
			}, nil
		}

		w := doJSON(router, http.MethodGet, "/incidents/"+trackingID+"/audit?action=StatusChange&level=INFO&limit=5", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(got.TrackingID).To(Equal(trackingID))
		Expect(got.Action).To(Equal(model.AuditActionStatusChange))
		Expect(got.Level).To(Equal(model.AuditLevelInfo))
		Expect(got.Limit).To(Equal(5))
		data := decodeBody(w)["data"].([]any)
		Expect(data[0].(map[string]any)["auditId"]).To(Equal("7"))
	})

	It("rejects an unknown action", func() {
		w := doJSON(router, http.MethodGet, "/incidents/"+trackingID+"/audit?action=Deleted", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 when the incident has no trail", func() {
		queries.auditFn = func(context.Context, service.AuditListParams) (pagination.Page[model.AuditEntry], error) {
			return pagination.Page[model.AuditEntry]{}, model.ErrNotFound
		}
		w := doJSON(router, http.MethodGet, "/incidents/"+trackingID+"/audit", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("records a note with the caller as actor", func() {
		var got service.NoteParams
		audit.noteFn = func(_ context.Context, p service.NoteParams) (*model.AuditEntry, error) {
			got = p
			return &model.AuditEntry{AuditID: 9, TrackingID: p.TrackingID, Action: model.AuditActionNote, Detail: p.Detail}, nil
		}

		w := doJSON(router, http.MethodPost, "/incidents/"+trackingID+"/audit", map[string]any{
			"level":  "WARN",
			"detail": "paged the on-call operator",
		}, "X-Actor", "alice")

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(got.TrackingID).To(Equal(trackingID))
		Expect(got.Level).To(Equal(model.AuditLevelWarn))
		Expect(got.Actor).To(Equal("alice"))
		Expect(got.OccurredAt.IsZero()).To(BeTrue())
	})

	It("requires a detail for notes", func() {
		w := doJSON(router, http.MethodPost, "/incidents/"+trackingID+"/audit", map[string]any{"level": "INFO"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
