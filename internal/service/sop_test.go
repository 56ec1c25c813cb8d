package service_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/service"
)

var _ = Describe("SOPService", func() {
	var (
		ctx    context.Context
		ledger *memLedger
		svc    service.SOPService
	)

	create := func(name, jobName, abendType string) *model.SOP {
		sop, err := svc.Create(ctx, service.CreateSOPParams{
			Name:              name,
			JobName:           jobName,
			AbendType:         abendType,
			SourceDocumentURL: "https://docs.example.com/sops/" + jobName + ".pdf",
			Actor:             "kb-loader",
		})
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return sop
	}

	BeforeEach(func() {
		ctx = context.Background()
		ledger = newMemLedger()
		svc = service.NewSOPService(ledger, ledger.Stores().SOPs(), testQueryConfig)
	})

	Describe("Create", func() {
		It("mints an id and stamps the creator", func() {
			sop := create("Payroll restart", "PAYROLL01", "S0C7")
			Expect(sop.SOPID).To(HavePrefix("SOP_"))
			Expect(sop.Generation).To(BeZero())
			Expect(sop.CreatedBy).To(Equal("kb-loader"))
			Expect(sop.UpdatedBy).To(Equal("kb-loader"))
			Expect(sop.ProcessedDocumentURLs).To(BeEmpty())

			got, err := svc.Get(ctx, sop.SOPID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(sop))
		})

		DescribeTable("rejects malformed records",
			func(p service.CreateSOPParams) {
				_, err := svc.Create(ctx, p)
				Expect(errors.Is(err, model.ErrInvalidArgument)).To(BeTrue())
			},
			Entry("missing name", service.CreateSOPParams{JobName: "JOBX", AbendType: "S0C7", SourceDocumentURL: "https://x.example/a.pdf"}),
			Entry("missing abend type", service.CreateSOPParams{Name: "n", JobName: "JOBX", SourceDocumentURL: "https://x.example/a.pdf"}),
			Entry("source is not a url", service.CreateSOPParams{Name: "n", JobName: "JOBX", AbendType: "S0C7", SourceDocumentURL: "a.pdf"}),
			Entry("processed document is not a url", service.CreateSOPParams{
				Name: "n", JobName: "JOBX", AbendType: "S0C7", SourceDocumentURL: "https://x.example/a.pdf",
				ProcessedDocumentURLs: []string{"chunk-1"},
			}),
		)
	})

	Describe("Get", func() {
		It("reports an unknown id as not found", func() {
			_, err := svc.Get(ctx, "SOP_missing")
			Expect(errors.Is(err, model.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("bumps the generation and keeps untouched fields", func() {
			sop := create("Payroll restart", "PAYROLL01", "S0C7")
			name := "Payroll restart v2"
			processed := []string{"https://docs.example.com/sops/PAYROLL01.md"}

			updated, err := svc.Update(ctx, service.UpdateSOPParams{SOPID: sop.SOPID, ExpectedGeneration: 0, Actor: "editor"}, service.SOPUpdate{
				Name:                  &name,
				ProcessedDocumentURLs: &processed,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Generation).To(Equal(int64(1)))
			Expect(updated.Name).To(Equal(name))
			Expect(updated.ProcessedDocumentURLs).To(Equal(processed))
			Expect(updated.JobName).To(Equal("PAYROLL01"))
			Expect(updated.UpdatedBy).To(Equal("editor"))
			Expect(updated.CreatedBy).To(Equal("kb-loader"))

			stored, err := svc.Get(ctx, sop.SOPID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Generation).To(Equal(int64(1)))
			Expect(stored.Name).To(Equal(name))
		})

		It("refuses a stale generation", func() {
			sop := create("Payroll restart", "PAYROLL01", "S0C7")
			name := "first"
			_, err := svc.Update(ctx, service.UpdateSOPParams{SOPID: sop.SOPID, ExpectedGeneration: 0}, service.SOPUpdate{Name: &name})
			Expect(err).NotTo(HaveOccurred())

			name = "second"
			_, err = svc.Update(ctx, service.UpdateSOPParams{SOPID: sop.SOPID, ExpectedGeneration: 0}, service.SOPUpdate{Name: &name})
			Expect(errors.Is(err, model.ErrConflict)).To(BeTrue())

			stored, err := svc.Get(ctx, sop.SOPID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("first"))
		})

		It("returns the stored record unchanged for an empty update", func() {
			sop := create("Payroll restart", "PAYROLL01", "S0C7")
			got, err := svc.Update(ctx, service.UpdateSOPParams{SOPID: sop.SOPID, ExpectedGeneration: 0}, service.SOPUpdate{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Generation).To(BeZero())
		})

		It("rolls back an update that breaks validation", func() {
			sop := create("Payroll restart", "PAYROLL01", "S0C7")
			bad := "not a url"
			_, err := svc.Update(ctx, service.UpdateSOPParams{SOPID: sop.SOPID, ExpectedGeneration: 0}, service.SOPUpdate{SourceDocumentURL: &bad})
			Expect(errors.Is(err, model.ErrInvalidArgument)).To(BeTrue())

			stored, err := svc.Get(ctx, sop.SOPID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Generation).To(BeZero())
		})

		It("reports an unknown id as not found", func() {
			name := "x"
			_, err := svc.Update(ctx, service.UpdateSOPParams{SOPID: "SOP_missing"}, service.SOPUpdate{Name: &name})
			Expect(errors.Is(err, model.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("filters by job, abend type and name substring", func() {
			create("Payroll restart", "PAYROLL01", "S0C7")
			create("Payroll data fix", "PAYROLL01", "S0C4")
			create("Ledger close", "LEDGER02", "S0C7")

			page, err := svc.List(ctx, service.SOPListParams{JobName: "PAYROLL01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(2))

			page, err = svc.List(ctx, service.SOPListParams{AbendType: "S0C7", Search: "LEDGER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Name).To(Equal("Ledger close"))
			Expect(page.HasMore).To(BeFalse())
			Expect(page.NextCursor).To(BeNil())
		})

		It("walks every record once across pages", func() {
			for i := 0; i < 5; i++ {
				create(fmt.Sprintf("Runbook %d", i), "JOBX", "S0C7")
			}

			seen := map[string]bool{}
			cursor := ""
			for pages := 0; pages < 5; pages++ {
				page, err := svc.List(ctx, service.SOPListParams{Limit: 2, Cursor: cursor})
				Expect(err).NotTo(HaveOccurred())
				for _, s := range page.Data {
					Expect(seen).NotTo(HaveKey(s.SOPID))
					seen[s.SOPID] = true
				}
				if !page.HasMore {
					break
				}
				cursor = *page.NextCursor
			}
			Expect(seen).To(HaveLen(5))
		})

		It("rejects a cursor replayed with different filters", func() {
			for i := 0; i < 3; i++ {
				create(fmt.Sprintf("Runbook %d", i), "JOBX", "S0C7")
			}
			first, err := svc.List(ctx, service.SOPListParams{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.NextCursor).NotTo(BeNil())

			_, err = svc.List(ctx, service.SOPListParams{Limit: 1, JobName: "JOBX", Cursor: *first.NextCursor})
			Expect(errors.Is(err, model.ErrInvalidArgument)).To(BeTrue())
		})

		It("rejects a negative limit", func() {
			_, err := svc.List(ctx, service.SOPListParams{Limit: -1})
			Expect(errors.Is(err, model.ErrInvalidArgument)).To(BeTrue())
		})
	})
})
