package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"adr.app/ledger/common/id"
	"adr.app/ledger/core/config"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/store"
)

const (
	dayLayout    = "2006-01-02"
	maxTrendDays = 365
)

// Any leading part of the index time layout, e.g. "2024", "2024-01-31T09".
var datePrefixPattern = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2}(T\d{2}(:\d{2}(:\d{2})?)?)?)?)?$`)

type ListParams struct {
	Status       model.Status
	Severity     model.Severity
	DomainArea   string
	JobName      string
	IncidentType string

	// Date restricts results to occurrences whose time key starts with it.
	Date    string
	From    string
	Through string
	Search  string

	Order  pagination.Order
	Cursor string
	Limit  int
}

type AuditListParams struct {
	TrackingID string
	Level      model.AuditLevel
	Action     model.AuditAction
	Cursor     string
	Limit      int
}

type QueryService interface {
	List(ctx context.Context, p ListParams) (pagination.Page[*model.Incident], error)
	AuditTrail(ctx context.Context, p AuditListParams) (pagination.Page[model.AuditEntry], error)
	Filters(ctx context.Context) (*model.FilterCatalog, error)
	DayStats(ctx context.Context, day string) (*model.DayStats, error)
	JobTrends(ctx context.Context, jobName string, days int) (*model.JobTrends, error)
}

type queryService struct {
	incidents store.IncidentStore
	index     store.IndexStore
	audit     store.AuditStore
	cfg       config.QueryConfig
	now       func() time.Time
}

func NewQueryService(incidents store.IncidentStore, index store.IndexStore, audit store.AuditStore, cfg config.QueryConfig) QueryService {
	return &queryService{
		incidents: incidents,
		index:     index,
		audit:     audit,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *queryService) List(ctx context.Context, p ListParams) (pagination.Page[*model.Incident], error) {
	var empty pagination.Page[*model.Incident]

	if err := validateListParams(p); err != nil {
		return empty, err
	}
	limit, err := pagination.Limit(p.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if err != nil {
		return empty, err
	}
	order := p.Order
	if order == "" {
		order = pagination.OrderAsc
	}

	q := planIndexQuery(p)
	q.Order = order
	q.Limit = limit + 1

	scope := pagination.Scope{
		Dimension: string(q.Dimension),
		Value:     q.Value,
		Order:     order,
		Fingerprint: pagination.Fingerprint(
			string(q.Status), string(q.Severity), q.DomainArea, q.JobName, q.AbendType,
			q.DatePrefix, q.FromKey, q.ThroughPrefix, q.Search,
		),
	}
	cursor, err := pagination.Decode(p.Cursor, scope)
	if err != nil {
		return empty, err
	}
	if cursor != nil {
		q.AfterKey = cursor.LastKey
		q.AfterTrackingID = cursor.LastID
	}

	rows, err := s.index.List(ctx, q)
	if err != nil {
		return empty, fmt.Errorf("listing incidents: %w", err)
	}

	page := pagination.Build(rows, limit, func(last model.IndexEntry) pagination.Cursor {
		return scope.After(last.OccurredAtKey, last.TrackingID)
	})
	return pagination.Map(page, func(e model.IndexEntry) *model.Incident {
		return e.Incident
	}), nil
}

// planIndexQuery picks the most selective filter as the partition to scan and
// turns the remaining filters into predicates.
func planIndexQuery(p ListParams) store.IndexQuery {
	q := store.IndexQuery{
		Dimension:     model.DimensionAll,
		Value:         model.AllValue(),
		DatePrefix:    p.Date,
		FromKey:       p.From,
		ThroughPrefix: p.Through,
		Search:        p.Search,
		Status:        p.Status,
		Severity:      p.Severity,
		DomainArea:    p.DomainArea,
		JobName:       p.JobName,
		AbendType:     p.IncidentType,
	}

	switch {
	case p.Status != "":
		q.Dimension, q.Value, q.Status = model.DimensionStatus, string(p.Status), ""
	case p.Severity != "":
		q.Dimension, q.Value, q.Severity = model.DimensionSeverity, string(p.Severity), ""
	case p.DomainArea != "":
		q.Dimension, q.Value, q.DomainArea = model.DimensionDomainArea, p.DomainArea, ""
	case p.JobName != "":
		q.Dimension, q.Value, q.JobName = model.DimensionJobName, p.JobName, ""
	case p.IncidentType != "":
		q.Dimension, q.Value, q.AbendType = model.DimensionIncidentType, p.IncidentType, ""
	}
	return q
}

func validateListParams(p ListParams) error {
	if p.Status != "" && !p.Status.Valid() {
		return model.InvalidArgumentf("unknown status %q", p.Status)
	}
	if p.Severity != "" && !p.Severity.Valid() {
		return model.InvalidArgumentf("unknown severity %q", p.Severity)
	}
	if p.Order != "" && p.Order != pagination.OrderAsc && p.Order != pagination.OrderDesc {
		return model.InvalidArgumentf("unknown sort order %q", p.Order)
	}
	for name, v := range map[string]string{"date": p.Date, "from": p.From, "through": p.Through} {
		if v != "" && !datePrefixPattern.MatchString(v) {
			return model.InvalidArgumentf("%s %q is not a date prefix", name, v)
		}
	}
	if p.Date != "" && (p.From != "" || p.Through != "") {
		return model.InvalidArgumentf("date cannot be combined with from/through")
	}
	return nil
}

func (s *queryService) AuditTrail(ctx context.Context, p AuditListParams) (pagination.Page[model.AuditEntry], error) {
	var empty pagination.Page[model.AuditEntry]

	if _, _, err := id.ParseTrackingID(p.TrackingID); err != nil {
		return empty, invalidIdentifier(err)
	}
	if p.Level != "" && !p.Level.Valid() {
		return empty, model.InvalidArgumentf("unknown audit level %q", p.Level)
	}
	if p.Action != "" && !p.Action.Valid() {
		return empty, model.InvalidArgumentf("unknown audit action %q", p.Action)
	}
	limit, err := pagination.Limit(p.Limit, s.cfg.DefaultAuditPageSize, s.cfg.MaxAuditPageSize)
	if err != nil {
		return empty, err
	}

	scope := pagination.Scope{
		Dimension:   "audit",
		Value:       p.TrackingID,
		Order:       pagination.OrderAsc,
		Fingerprint: pagination.Fingerprint(string(p.Level), string(p.Action)),
	}
	cursor, err := pagination.Decode(p.Cursor, scope)
	if err != nil {
		return empty, err
	}

	if cursor == nil {
		if _, err := s.incidents.GetLatest(ctx, p.TrackingID); err != nil {
			return empty, fmt.Errorf("reading incident: %w", err)
		}
	}

	q := store.AuditQuery{
		TrackingID: p.TrackingID,
		Level:      p.Level,
		Action:     p.Action,
		Limit:      limit + 1,
	}
	if cursor != nil {
		recordedAt, err := time.Parse(time.RFC3339Nano, cursor.LastKey)
		if err != nil {
			return empty, model.InvalidArgumentf("malformed cursor")
		}
		auditID, err := strconv.ParseInt(cursor.LastID, 10, 64)
		if err != nil {
			return empty, model.InvalidArgumentf("malformed cursor")
		}
		q.AfterRecordedAt = &recordedAt
		q.AfterAuditID = auditID
	}

	entries, err := s.audit.List(ctx, q)
	if err != nil {
		return empty, fmt.Errorf("listing audit entries: %w", err)
	}
	return pagination.Build(entries, limit, func(last model.AuditEntry) pagination.Cursor {
		return scope.After(last.Timestamp.UTC().Format(time.RFC3339Nano), strconv.FormatInt(last.AuditID, 10))
	}), nil
}

func (s *queryService) Filters(ctx context.Context) (*model.FilterCatalog, error) {
	domainAreas, err := s.index.DistinctValues(ctx, model.DimensionDomainArea)
	if err != nil {
		return nil, fmt.Errorf("listing domain areas: %w", err)
	}
	incidentTypes, err := s.index.DistinctValues(ctx, model.DimensionIncidentType)
	if err != nil {
		return nil, fmt.Errorf("listing incident types: %w", err)
	}
	return &model.FilterCatalog{
		Statuses:      append([]model.Status(nil), model.Statuses...),
		Severities:    append([]model.Severity(nil), model.Severities...),
		DomainAreas:   domainAreas,
		IncidentTypes: incidentTypes,
	}, nil
}

func (s *queryService) DayStats(ctx context.Context, day string) (*model.DayStats, error) {
	if day == "" {
		day = s.now().UTC().Format(dayLayout)
	}
	if _, err := time.Parse(dayLayout, day); err != nil {
		return nil, model.InvalidArgumentf("day %q is not YYYY-MM-DD", day)
	}

	counts, err := s.index.StatusCounts(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("counting incidents: %w", err)
	}

	stats := &model.DayStats{Day: day}
	for _, n := range counts {
		stats.Total += n
	}
	stats.Resolved = counts[model.StatusResolved]
	stats.ManualInterventionRequired = counts[model.StatusManualInterventionRequired]
	stats.Active = stats.Total - stats.Resolved
	return stats, nil
}

func (s *queryService) JobTrends(ctx context.Context, jobName string, days int) (*model.JobTrends, error) {
	if err := id.ValidateJobName(jobName); err != nil {
		return nil, invalidIdentifier(err)
	}
	if days == 0 {
		days = s.cfg.TrendDays
	}
	if days < 1 || days > maxTrendDays {
		return nil, model.InvalidArgumentf("days must be between 1 and %d, got %d", maxTrendDays, days)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	rows, err := s.index.DailyCounts(ctx, jobName, from.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("counting job history: %w", err)
	}
	byDay := make(map[string]model.DailyCount, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	trends := &model.JobTrends{
		JobName: jobName,
		Days:    days,
		Trends:  make([]model.DailyCount, 0, days),
	}
	for d := range days {
		day := from.AddDate(0, 0, d).Format(dayLayout)
		count, ok := byDay[day]
		if !ok {
			count = model.DailyCount{Day: day}
		}
		trends.Trends = append(trends.Trends, count)
		trends.TotalAbends += count.Abends
		trends.TotalResolved += count.Resolved
	}
	return trends, nil
}
