package store

import (
	"context"
	"time"

	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
)

type changeStore struct {
	queries *sqlc.Queries
}

func newChangeStore(queries *sqlc.Queries) ChangeStore {
	return &changeStore{queries: queries}
}

func (s *changeStore) Create(ctx context.Context, change *model.IncidentChange) error {
	return mapError(s.queries.InsertIncidentChange(ctx, sqlc.InsertIncidentChangeParams{
		ID:         change.ID,
		TrackingID: change.TrackingID,
		OccurredAt: timestamptz(change.OccurredAt),
		Generation: change.Generation,
		Kind:       string(change.Kind),
		TraceID:    change.TraceID,
		CreatedAt:  timestamptz(change.CreatedAt),
	}))
}

func (s *changeStore) Get(ctx context.Context, id int64) (*model.IncidentChange, error) {
	row, err := s.queries.GetIncidentChange(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	change := toChangeModel(row)
	return &change, nil
}

func (s *changeStore) MarkPublished(ctx context.Context, id int64) error {
	return mapError(s.queries.MarkIncidentChangePublished(ctx, id))
}

func (s *changeStore) MarkRepublished(ctx context.Context, id int64) error {
	return mapError(s.queries.MarkIncidentChangeRepublished(ctx, id))
}

func (s *changeStore) MarkVerified(ctx context.Context, id int64) error {
	return mapError(s.queries.MarkIncidentChangeVerified(ctx, id))
}

func (s *changeStore) RecordError(ctx context.Context, id int64, msg string) error {
	return mapError(s.queries.RecordIncidentChangeError(ctx, sqlc.RecordIncidentChangeErrorParams{
		ID:        id,
		LastError: &msg,
	}))
}

func (s *changeStore) ListStale(ctx context.Context, staleBefore time.Time, maxAttempts, limit int32) ([]model.IncidentChange, error) {
	rows, err := s.queries.ListStaleIncidentChanges(ctx, sqlc.ListStaleIncidentChangesParams{
		StaleBefore: timestamptz(staleBefore),
		MaxAttempts: maxAttempts,
		RowLimit:    limit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	changes := make([]model.IncidentChange, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, toChangeModel(row))
	}
	return changes, nil
}

func toChangeModel(row sqlc.IncidentChange) model.IncidentChange {
	return model.IncidentChange{
		ID:              row.ID,
		TrackingID:      row.TrackingID,
		OccurredAt:      row.OccurredAt.Time.UTC(),
		Generation:      row.Generation,
		Kind:            model.ChangeKind(row.Kind),
		TraceID:         row.TraceID,
		Attempts:        int(row.Attempts),
		LastError:       row.LastError,
		CreatedAt:       row.CreatedAt.Time.UTC(),
		LastPublishedAt: optTime(row.LastPublishedAt),
		VerifiedAt:      optTime(row.VerifiedAt),
	}
}
