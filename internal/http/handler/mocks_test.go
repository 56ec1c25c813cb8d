package handler_test

import (
	"context"
	"time"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/service"
)

type mockIncidentService struct {
	registerFn   func(ctx context.Context, p service.RegisterParams) (*model.Incident, error)
	getFn        func(ctx context.Context, key model.IncidentKey) (*model.Incident, error)
	getLatestFn  func(ctx context.Context, trackingID string) (*model.Incident, error)
	transitionFn func(ctx context.Context, p service.UpdateParams, to model.Status) (*model.Incident, error)
	phaseFn      func(ctx context.Context, p service.UpdateParams, phase model.Phase, d time.Duration) (*model.Incident, error)
	updateFn     func(ctx context.Context, p service.UpdateParams, u service.FieldUpdate) (*model.Incident, error)
	reviewFn     func(ctx context.Context, p service.UpdateParams, r service.RemediationReview) (*model.Incident, error)
}

func (m *mockIncidentService) Register(ctx context.Context, p service.RegisterParams) (*model.Incident, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, p)
	}
	return nil, nil
}

func (m *mockIncidentService) Get(ctx context.Context, key model.IncidentKey) (*model.Incident, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, model.ErrNotFound
}

func (m *mockIncidentService) GetLatest(ctx context.Context, trackingID string) (*model.Incident, error) {
	if m.getLatestFn != nil {
		return m.getLatestFn(ctx, trackingID)
	}
	return nil, model.ErrNotFound
}

func (m *mockIncidentService) CompareAndUpdate(_ context.Context, _ service.UpdateParams, _ service.Mutator) (*model.Incident, error) {
	return nil, nil
}

func (m *mockIncidentService) Transition(ctx context.Context, p service.UpdateParams, to model.Status) (*model.Incident, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, p, to)
	}
	return nil, nil
}

func (m *mockIncidentService) RecordPhaseDuration(ctx context.Context, p service.UpdateParams, phase model.Phase, d time.Duration) (*model.Incident, error) {
	if m.phaseFn != nil {
		return m.phaseFn(ctx, p, phase, d)
	}
	return nil, nil
}

func (m *mockIncidentService) UpdateFields(ctx context.Context, p service.UpdateParams, u service.FieldUpdate) (*model.Incident, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, p, u)
	}
	return nil, nil
}

func (m *mockIncidentService) ReviewRemediation(ctx context.Context, p service.UpdateParams, r service.RemediationReview) (*model.Incident, error) {
	if m.reviewFn != nil {
		return m.reviewFn(ctx, p, r)
	}
	return nil, nil
}

type mockQueryService struct {
	listFn      func(ctx context.Context, p service.ListParams) (pagination.Page[*model.Incident], error)
	auditFn     func(ctx context.Context, p service.AuditListParams) (pagination.Page[model.AuditEntry], error)
	filtersFn   func(ctx context.Context) (*model.FilterCatalog, error)
	dayStatsFn  func(ctx context.Context, day string) (*model.DayStats, error)
	jobTrendsFn func(ctx context.Context, jobName string, days int) (*model.JobTrends, error)
}

func (m *mockQueryService) List(ctx context.Context, p service.ListParams) (pagination.Page[*model.Incident], error) {
	if m.listFn != nil {
		return m.listFn(ctx, p)
	}
	return pagination.Page[*model.Incident]{Data: []*model.Incident{}}, nil
}

func (m *mockQueryService) AuditTrail(ctx context.Context, p service.AuditListParams) (pagination.Page[model.AuditEntry], error) {
	if m.auditFn != nil {
		return m.auditFn(ctx, p)
	}
	return pagination.Page[model.AuditEntry]{Data: []model.AuditEntry{}}, nil
}

func (m *mockQueryService) Filters(ctx context.Context) (*model.FilterCatalog, error) {
	if m.filtersFn != nil {
		return m.filtersFn(ctx)
	}
	return &model.FilterCatalog{}, nil
}

func (m *mockQueryService) DayStats(ctx context.Context, day string) (*model.DayStats, error) {
	if m.dayStatsFn != nil {
		return m.dayStatsFn(ctx, day)
	}
	return &model.DayStats{Day: day}, nil
}

func (m *mockQueryService) JobTrends(ctx context.Context, jobName string, days int) (*model.JobTrends, error) {
	if m.jobTrendsFn != nil {
		return m.jobTrendsFn(ctx, jobName, days)
	}
	return &model.JobTrends{JobName: jobName, Days: days}, nil
}

type mockAuditService struct {
	noteFn func(ctx context.Context, p service.NoteParams) (*model.AuditEntry, error)
}

func (m *mockAuditService) Note(ctx context.Context, p service.NoteParams) (*model.AuditEntry, error) {
	if m.noteFn != nil {
		return m.noteFn(ctx, p)
	}
	return &model.AuditEntry{}, nil
}

type mockSOPService struct {
	listFn   func(ctx context.Context, p service.SOPListParams) (pagination.Page[model.SOPSummary], error)
	getFn    func(ctx context.Context, sopID string) (*model.SOP, error)
	createFn func(ctx context.Context, p service.CreateSOPParams) (*model.SOP, error)
	updateFn func(ctx context.Context, p service.UpdateSOPParams, u service.SOPUpdate) (*model.SOP, error)
}

func (m *mockSOPService) List(ctx context.Context, p service.SOPListParams) (pagination.Page[model.SOPSummary], error) {
	if m.listFn != nil {
		return m.listFn(ctx, p)
	}
	return pagination.Page[model.SOPSummary]{Data: []model.SOPSummary{}}, nil
}

func (m *mockSOPService) Get(ctx context.Context, sopID string) (*model.SOP, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sopID)
	}
	return nil, model.ErrNotFound
}

func (m *mockSOPService) Create(ctx context.Context, p service.CreateSOPParams) (*model.SOP, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil, nil
}

func (m *mockSOPService) Update(ctx context.Context, p service.UpdateSOPParams, u service.SOPUpdate) (*model.SOP, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, p, u)
	}
	return nil, nil
}
