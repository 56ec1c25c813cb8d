package model

import "time"

type ChangeKind string

const (
	ChangeKindCreated       ChangeKind = "created"
	ChangeKindStatusChanged ChangeKind = "status_changed"
	ChangeKindUpdated       ChangeKind = "updated"
)

// IncidentChange is an outbox row written in the same transaction as an incident write.
// The worker uses it to verify index projections after the fact.
type IncidentChange struct {
	ID              int64
	TrackingID      string
	OccurredAt      time.Time
	Generation      int64
	Kind            ChangeKind
	TraceID         *string
	Attempts        int
	LastError       *string
	CreatedAt       time.Time
	LastPublishedAt *time.Time
	VerifiedAt      *time.Time
}

func (c *IncidentChange) Key() IncidentKey {
	return IncidentKey{TrackingID: c.TrackingID, OccurredAt: c.OccurredAt}
}

type DayStats struct {
	Day                        string `json:"day"`
	Total                      int64  `json:"totalAbends"`
	Active                     int64  `json:"activeAbends"`
	ManualInterventionRequired int64  `json:"manualInterventionRequired"`
	Resolved                   int64  `json:"resolvedAbends"`
}

type DailyCount struct {
	Day      string `json:"date"`
	Abends   int64  `json:"abendCount"`
	Resolved int64  `json:"resolvedCount"`
}

type JobTrends struct {
	JobName       string       `json:"jobName"`
	Days          int          `json:"days"`
	Trends        []DailyCount `json:"trends"`
	TotalAbends   int64        `json:"totalAbends"`
	TotalResolved int64        `json:"totalResolved"`
}

type FilterCatalog struct {
	Statuses      []Status   `json:"statuses"`
	Severities    []Severity `json:"severities"`
	DomainAreas   []string   `json:"domainAreas"`
	IncidentTypes []string   `json:"incidentTypes"`
}
