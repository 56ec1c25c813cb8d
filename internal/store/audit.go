package store

import (
	"context"
	"encoding/json"

	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
)

type auditStore struct {
	queries *sqlc.Queries
}

func newAuditStore(queries *sqlc.Queries) AuditStore {
	return &auditStore{queries: queries}
}

func (s *auditStore) Append(ctx context.Context, entry *model.AuditEntry) error {
	level := entry.Level
	if level == "" {
		level = model.AuditLevelInfo
	}
	err := s.queries.InsertAuditEntry(ctx, sqlc.InsertAuditEntryParams{
		AuditID:    entry.AuditID,
		TrackingID: entry.TrackingID,
		OccurredAt: timestamptz(entry.OccurredAt),
		Action:     string(entry.Action),
		Level:      string(level),
		Status:     string(entry.Status),
		Actor:      entry.Actor,
		Before:     []byte(entry.Before),
		After:      []byte(entry.After),
		Detail:     optString(entry.Detail),
		Generation: entry.Generation,
		RecordedAt: timestamptz(entry.Timestamp),
	})
	return mapError(err)
}

func (s *auditStore) List(ctx context.Context, q AuditQuery) ([]model.AuditEntry, error) {
	params := sqlc.ListAuditEntriesParams{
		TrackingID: q.TrackingID,
		Level:      optString(string(q.Level)),
		Action:     optString(string(q.Action)),
		RowLimit:   int32(q.Limit),
	}
	if q.AfterRecordedAt != nil {
		params.AfterRecordedAt = timestamptz(*q.AfterRecordedAt)
		params.AfterAuditID = &q.AfterAuditID
	}

	rows, err := s.queries.ListAuditEntries(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	entries := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toAuditModel(row))
	}
	return entries, nil
}

func (s *auditStore) Count(ctx context.Context, key model.IncidentKey) (int64, error) {
	n, err := s.queries.CountAuditEntriesForIncident(ctx, sqlc.CountAuditEntriesForIncidentParams{
		TrackingID: key.TrackingID,
		OccurredAt: timestamptz(key.OccurredAt),
	})
	return n, mapError(err)
}

func toAuditModel(row sqlc.IncidentAudit) model.AuditEntry {
	return model.AuditEntry{
		AuditID:    row.AuditID,
		TrackingID: row.TrackingID,
		OccurredAt: row.OccurredAt.Time.UTC(),
		Action:     model.AuditAction(row.Action),
		Level:      model.AuditLevel(row.Level),
		Status:     model.Status(row.Status),
		Actor:      row.Actor,
		Timestamp:  row.RecordedAt.Time.UTC(),
		Before:     json.RawMessage(row.Before),
		After:      json.RawMessage(row.After),
		Detail:     deref(row.Detail),
		Generation: row.Generation,
	}
}
