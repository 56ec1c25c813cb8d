package store

import (
	"context"
	"time"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = model.ErrNotFound

// IncidentStore is the primary record store, keyed by (tracking id, occurred at).
type IncidentStore interface {
	Create(ctx context.Context, incident *model.Incident) error
	Get(ctx context.Context, key model.IncidentKey) (*model.Incident, error)
	GetLatest(ctx context.Context, trackingID string) (*model.Incident, error)
	GetForUpdate(ctx context.Context, key model.IncidentKey) (*model.Incident, error)
	// CompareAndSwap writes incident only if the stored generation still equals
	// expectedGeneration. The stored generation becomes expectedGeneration+1.
	CompareAndSwap(ctx context.Context, incident *model.Incident, expectedGeneration int64) error
}

// IndexQuery selects rows of one (dimension, value) partition of the index.
// Empty strings mean "no constraint".
type IndexQuery struct {
	Dimension model.Dimension
	Value     string
	Order     pagination.Order

	DatePrefix    string
	FromKey       string
	ThroughPrefix string

	AfterKey        string
	AfterTrackingID string

	Status     model.Status
	Severity   model.Severity
	DomainArea string
	JobName    string
	AbendType  string
	Search     string

	Limit int
}

// IndexStore maintains the denormalized per-dimension projections of incidents.
type IndexStore interface {
	Refresh(ctx context.Context, incident *model.Incident) error
	Rows(ctx context.Context, key model.IncidentKey) ([]model.IndexEntry, error)
	List(ctx context.Context, q IndexQuery) ([]model.IndexEntry, error)
	StatusCounts(ctx context.Context, dayPrefix string) (map[model.Status]int64, error)
	DistinctValues(ctx context.Context, dimension model.Dimension) ([]string, error)
	DailyCounts(ctx context.Context, jobName, fromKey string) ([]model.DailyCount, error)
}

type AuditQuery struct {
	TrackingID      string
	AfterRecordedAt *time.Time
	AfterAuditID    int64
	Level           model.AuditLevel
	Action          model.AuditAction
	Limit           int
}

// AuditStore is append-only.
type AuditStore interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	List(ctx context.Context, q AuditQuery) ([]model.AuditEntry, error)
	Count(ctx context.Context, key model.IncidentKey) (int64, error)
}

// ChangeStore is the outbox of committed incident writes awaiting index verification.
type ChangeStore interface {
	Create(ctx context.Context, change *model.IncidentChange) error
	Get(ctx context.Context, id int64) (*model.IncidentChange, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkRepublished(ctx context.Context, id int64) error
	MarkVerified(ctx context.Context, id int64) error
	RecordError(ctx context.Context, id int64, msg string) error
	ListStale(ctx context.Context, staleBefore time.Time, maxAttempts, limit int32) ([]model.IncidentChange, error)
}

// SOPQuery selects SOPs newest first. Empty strings mean "no constraint".
type SOPQuery struct {
	JobName   string
	AbendType string
	Search    string

	AfterCreatedAt *time.Time
	AfterSOPID     string

	Limit int
}

type SOPStore interface {
	Create(ctx context.Context, sop *model.SOP) error
	Get(ctx context.Context, sopID string) (*model.SOP, error)
	// CompareAndSwap writes sop only if the stored generation still equals
	// expectedGeneration. The stored generation becomes expectedGeneration+1.
	CompareAndSwap(ctx context.Context, sop *model.SOP, expectedGeneration int64) error
	List(ctx context.Context, q SOPQuery) ([]model.SOP, error)
}
