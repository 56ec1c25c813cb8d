package handler_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/http/handler"
	"adr.app/ledger/internal/http/middleware"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/service"
)

var _ = Describe("SOPHandler", func() {
	var (
		router *gin.Engine
		svc    *mockSOPService
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockSOPService{}
		h := handler.NewSOPHandler(svc)
		router.POST("/sops", h.Create)
		router.GET("/sops", h.List)
		router.GET("/sops/:sopId", h.Get)
		router.PATCH("/sops/:sopId", h.Update)
	})

	Describe("Create", func() {
		It("passes the body and actor to the service", func() {
			var got service.CreateSOPParams
			svc.createFn = func(_ context.Context, p service.CreateSOPParams) (*model.SOP, error) {
				got = p
				return &model.SOP{SOPID: "SOP_1", Name: p.Name, JobName: p.JobName}, nil
			}

			w := doJSON(router, http.MethodPost, "/sops", map[string]any{
				"sopName":               "Payroll restart",
				"jobName":               "PAYROLL01",
				"abendType":             "S0C7",
				"sourceDocumentUrl":     "https://docs.example.com/payroll.pdf",
				"processedDocumentUrls": []string{"https://docs.example.com/payroll.md"},
			}, middleware.ActorHeader, "kb-loader")

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got.Name).To(Equal("Payroll restart"))
			Expect(got.AbendType).To(Equal("S0C7"))
			Expect(got.ProcessedDocumentURLs).To(ConsistOf("https://docs.example.com/payroll.md"))
			Expect(got.Actor).To(Equal("kb-loader"))
			Expect(decodeBody(w)["sopId"]).To(Equal("SOP_1"))
		})

		It("rejects a source document that is not a url", func() {
			w := doJSON(router, http.MethodPost, "/sops", map[string]any{
				"sopName":           "Payroll restart",
				"jobName":           "PAYROLL01",
				"abendType":         "S0C7",
				"sourceDocumentUrl": "payroll.pdf",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("returns 404 for an unknown sop", func() {
			w := doJSON(router, http.MethodGet, "/sops/SOP_missing", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeBody(w)["error"]).To(Equal("not_found"))
		})
	})

	Describe("Update", func() {
		It("forwards only the fields present", func() {
			var (
				gotParams service.UpdateSOPParams
				gotUpdate service.SOPUpdate
			)
			svc.updateFn = func(_ context.Context, p service.UpdateSOPParams, u service.SOPUpdate) (*model.SOP, error) {
				gotParams, gotUpdate = p, u
				return &model.SOP{SOPID: p.SOPID, Generation: p.ExpectedGeneration + 1}, nil
			}

			w := doJSON(router, http.MethodPatch, "/sops/SOP_1", map[string]any{
				"expectedGeneration": 2,
				"sopName":            "Payroll restart v2",
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotParams.SOPID).To(Equal("SOP_1"))
			Expect(gotParams.ExpectedGeneration).To(Equal(int64(2)))
			Expect(*gotUpdate.Name).To(Equal("Payroll restart v2"))
			Expect(gotUpdate.JobName).To(BeNil())
			Expect(gotUpdate.ProcessedDocumentURLs).To(BeNil())
		})

		It("requires the expected generation", func() {
			w := doJSON(router, http.MethodPatch, "/sops/SOP_1", map[string]any{"sopName": "x"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps a stale generation to 409", func() {
			svc.updateFn = func(context.Context, service.UpdateSOPParams, service.SOPUpdate) (*model.SOP, error) {
				return nil, fmt.Errorf("%w: expected generation 0, found 1", model.ErrConflict)
			}
			w := doJSON(router, http.MethodPatch, "/sops/SOP_1", map[string]any{"expectedGeneration": 0, "sopName": "x"})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("List", func() {
		It("translates query parameters", func() {
			var got service.SOPListParams
			next := "c2"
			svc.listFn = func(_ context.Context, p service.SOPListParams) (pagination.Page[model.SOPSummary], error) {
				got = p
				return pagination.Page[model.SOPSummary]{
					Data:       []model.SOPSummary{{SOPID: "SOP_1"}},
					NextCursor: &next,
					HasMore:    true,
					Limit:      1,
				}, nil
			}

			w := doJSON(router, http.MethodGet, "/sops?jobName=PAYROLL01&abendType=S0C7&search=restart&cursor=c1&limit=1", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal(service.SOPListParams{
				JobName: "PAYROLL01", AbendType: "S0C7", Search: "restart", Cursor: "c1", Limit: 1,
			}))
			resp := decodeBody(w)
			Expect(resp["nextCursor"]).To(Equal("c2"))
			Expect(resp["hasMore"]).To(BeTrue())
		})

		It("maps a rejected cursor to 400", func() {
			svc.listFn = func(context.Context, service.SOPListParams) (pagination.Page[model.SOPSummary], error) {
				return pagination.Page[model.SOPSummary]{}, model.InvalidArgumentf("cursor does not match query")
			}
			w := doJSON(router, http.MethodGet, "/sops?cursor=bogus", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
