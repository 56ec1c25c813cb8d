package model

import "time"

// Dimension is a queryable secondary-index attribute.
type Dimension string

const (
	DimensionStatus       Dimension = "status"
	DimensionSeverity     Dimension = "severity"
	DimensionJobName      Dimension = "job_name"
	DimensionDomainArea   Dimension = "domain_area"
	DimensionIncidentType Dimension = "incident_type"

	// DimensionAll holds one row per incident so unfiltered listings share
	// the same ordering and cursor rules as filtered ones.
	DimensionAll Dimension = "all"
)

const allDimensionValue = "*"

// IndexedDimensions lists every dimension that gets an index row, in query priority order.
var IndexedDimensions = []Dimension{
	DimensionStatus,
	DimensionSeverity,
	DimensionDomainArea,
	DimensionJobName,
	DimensionIncidentType,
	DimensionAll,
}

func (d Dimension) Valid() bool {
	for _, known := range IndexedDimensions {
		if d == known {
			return true
		}
	}
	return false
}

// IndexTimeLayout is fixed width so that string order equals time order.
const IndexTimeLayout = "2006-01-02T15:04:05.000000Z"

func OccurredAtKey(t time.Time) string {
	return t.UTC().Format(IndexTimeLayout)
}

// ValueOf returns the incident's value for a dimension. Empty means no index row.
func ValueOf(i *Incident, d Dimension) string {
	switch d {
	case DimensionStatus:
		return string(i.Status)
	case DimensionSeverity:
		return string(i.Severity)
	case DimensionJobName:
		return i.JobName
	case DimensionDomainArea:
		return i.DomainArea
	case DimensionIncidentType:
		return i.AbendType
	case DimensionAll:
		return allDimensionValue
	}
	return ""
}

// IndexEntry is one projected row of an incident in a secondary index.
type IndexEntry struct {
	Dimension     Dimension
	Value         string
	OccurredAtKey string
	TrackingID    string
	OccurredAt    time.Time
	Generation    int64
	Incident      *Incident
}

// Projections derives the index rows an incident should have.
func Projections(i *Incident) []IndexEntry {
	entries := make([]IndexEntry, 0, len(IndexedDimensions))
	for _, d := range IndexedDimensions {
		value := ValueOf(i, d)
		if value == "" {
			continue
		}
		entries = append(entries, IndexEntry{
			Dimension:     d,
			Value:         value,
			OccurredAtKey: OccurredAtKey(i.OccurredAt),
			TrackingID:    i.TrackingID,
			OccurredAt:    i.OccurredAt,
			Generation:    i.Generation,
			Incident:      i,
		})
	}
	return entries
}

// AllValue is the dimension value used by DimensionAll rows.
func AllValue() string {
	return allDimensionValue
}
