package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
)

type indexStore struct {
	queries *sqlc.Queries
}

func newIndexStore(queries *sqlc.Queries) IndexStore {
	return &indexStore{queries: queries}
}

// Refresh replaces every projection of the incident. Must run in the
// transaction that wrote the primary record.
func (s *indexStore) Refresh(ctx context.Context, incident *model.Incident) error {
	if _, err := s.queries.DeleteIndexRowsForIncident(ctx, sqlc.DeleteIndexRowsForIncidentParams{
		TrackingID: incident.TrackingID,
		OccurredAt: timestamptz(incident.OccurredAt),
	}); err != nil {
		return mapError(err)
	}

	projection, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("encoding index projection: %w", err)
	}

	for _, entry := range model.Projections(incident) {
		if err := s.queries.InsertIndexRow(ctx, sqlc.InsertIndexRowParams{
			Dimension:      string(entry.Dimension),
			DimensionValue: entry.Value,
			OccurredAtKey:  entry.OccurredAtKey,
			TrackingID:     entry.TrackingID,
			OccurredAt:     timestamptz(entry.OccurredAt),
			Generation:     entry.Generation,
			Incident:       projection,
		}); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (s *indexStore) Rows(ctx context.Context, key model.IncidentKey) ([]model.IndexEntry, error) {
	rows, err := s.queries.ListIndexRowsForIncident(ctx, sqlc.ListIndexRowsForIncidentParams{
		TrackingID: key.TrackingID,
		OccurredAt: timestamptz(key.OccurredAt),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toIndexEntries(rows)
}

func (s *indexStore) List(ctx context.Context, q IndexQuery) ([]model.IndexEntry, error) {
	var (
		rows []sqlc.IncidentIndex
		err  error
	)
	if q.Order == pagination.OrderDesc {
		rows, err = s.queries.ListIndexDesc(ctx, sqlc.ListIndexDescParams(listParams(q)))
	} else {
		rows, err = s.queries.ListIndexAsc(ctx, listParams(q))
	}
	if err != nil {
		return nil, mapError(err)
	}
	return toIndexEntries(rows)
}

func listParams(q IndexQuery) sqlc.ListIndexAscParams {
	params := sqlc.ListIndexAscParams{
		Dimension:      string(q.Dimension),
		DimensionValue: q.Value,
		DatePrefix:     optString(q.DatePrefix),
		FromKey:        optString(q.FromKey),
		ThroughPrefix:  optString(q.ThroughPrefix),
		Status:         optString(string(q.Status)),
		Severity:       optString(string(q.Severity)),
		DomainArea:     optString(q.DomainArea),
		JobName:        optString(q.JobName),
		AbendType:      optString(q.AbendType),
		Search:         optString(escapeLike(q.Search)),
		RowLimit:       int32(q.Limit),
	}
	if q.AfterKey != "" {
		params.AfterKey = &q.AfterKey
		params.AfterTrackingID = &q.AfterTrackingID
	}
	return params
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *indexStore) StatusCounts(ctx context.Context, dayPrefix string) (map[model.Status]int64, error) {
	rows, err := s.queries.CountStatusesForDay(ctx, dayPrefix)
	if err != nil {
		return nil, mapError(err)
	}
	counts := make(map[model.Status]int64, len(rows))
	for _, row := range rows {
		counts[model.Status(row.Status)] = row.Total
	}
	return counts, nil
}

func (s *indexStore) DistinctValues(ctx context.Context, dimension model.Dimension) ([]string, error) {
	values, err := s.queries.DistinctDimensionValues(ctx, string(dimension))
	if err != nil {
		return nil, mapError(err)
	}
	return values, nil
}

func (s *indexStore) DailyCounts(ctx context.Context, jobName, fromKey string) ([]model.DailyCount, error) {
	rows, err := s.queries.JobDailyCounts(ctx, sqlc.JobDailyCountsParams{
		JobName: jobName,
		FromKey: fromKey,
	})
	if err != nil {
		return nil, mapError(err)
	}
	counts := make([]model.DailyCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, model.DailyCount{Day: row.Day, Abends: row.Abends, Resolved: row.Resolved})
	}
	return counts, nil
}

func toIndexEntries(rows []sqlc.IncidentIndex) ([]model.IndexEntry, error) {
	entries := make([]model.IndexEntry, 0, len(rows))
	for _, row := range rows {
		var incident model.Incident
		if err := json.Unmarshal(row.Incident, &incident); err != nil {
			return nil, fmt.Errorf("decoding index projection of %s: %w", row.TrackingID, err)
		}
		entries = append(entries, model.IndexEntry{
			Dimension:     model.Dimension(row.Dimension),
			Value:         row.DimensionValue,
			OccurredAtKey: row.OccurredAtKey,
			TrackingID:    row.TrackingID,
			OccurredAt:    row.OccurredAt.Time.UTC(),
			Generation:    row.Generation,
			Incident:      &incident,
		})
	}
	return entries, nil
}
