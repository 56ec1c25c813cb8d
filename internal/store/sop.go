package store

import (
	"context"
	"fmt"

	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
)

type sopStore struct {
	queries *sqlc.Queries
}

func newSOPStore(queries *sqlc.Queries) SOPStore {
	return &sopStore{queries: queries}
}

func (s *sopStore) Create(ctx context.Context, sop *model.SOP) error {
	err := s.queries.CreateSOP(ctx, sqlc.CreateSOPParams{
		SopID:                 sop.SOPID,
		SopName:               sop.Name,
		JobName:               sop.JobName,
		AbendType:             sop.AbendType,
		SourceDocumentUrl:     sop.SourceDocumentURL,
		ProcessedDocumentUrls: nonNil(sop.ProcessedDocumentURLs),
		CreatedAt:             timestamptz(sop.CreatedAt),
		UpdatedAt:             timestamptz(sop.UpdatedAt),
		CreatedBy:             sop.CreatedBy,
		UpdatedBy:             sop.UpdatedBy,
		Generation:            sop.Generation,
	})
	return mapError(err)
}

func (s *sopStore) Get(ctx context.Context, sopID string) (*model.SOP, error) {
	row, err := s.queries.GetSOP(ctx, sopID)
	if err != nil {
		return nil, mapError(err)
	}
	sop := toSOPModel(row)
	return &sop, nil
}

func (s *sopStore) CompareAndSwap(ctx context.Context, sop *model.SOP, expectedGeneration int64) error {
	n, err := s.queries.UpdateSOPIfGeneration(ctx, sqlc.UpdateSOPIfGenerationParams{
		SopName:               sop.Name,
		JobName:               sop.JobName,
		AbendType:             sop.AbendType,
		SourceDocumentUrl:     sop.SourceDocumentURL,
		ProcessedDocumentUrls: nonNil(sop.ProcessedDocumentURLs),
		UpdatedAt:             timestamptz(sop.UpdatedAt),
		UpdatedBy:             sop.UpdatedBy,
		ExpectedGeneration:    expectedGeneration,
		SopID:                 sop.SOPID,
	})
	if err != nil {
		return mapError(err)
	}
	if n == 1 {
		return nil
	}

	exists, err := s.queries.SOPExists(ctx, sop.SOPID)
	if err != nil {
		return mapError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return fmt.Errorf("%w: expected generation %d", model.ErrConflict, expectedGeneration)
}

func (s *sopStore) List(ctx context.Context, q SOPQuery) ([]model.SOP, error) {
	params := sqlc.ListSOPsParams{
		JobName:   optString(q.JobName),
		AbendType: optString(q.AbendType),
		Search:    optString(escapeLike(q.Search)),
		RowLimit:  int32(q.Limit),
	}
	if q.AfterCreatedAt != nil {
		params.AfterCreatedAt = timestamptz(*q.AfterCreatedAt)
		params.AfterSopID = &q.AfterSOPID
	}

	rows, err := s.queries.ListSOPs(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	sops := make([]model.SOP, 0, len(rows))
	for _, row := range rows {
		sops = append(sops, toSOPModel(row))
	}
	return sops, nil
}

func toSOPModel(row sqlc.Sop) model.SOP {
	return model.SOP{
		SOPID:                 row.SopID,
		Name:                  row.SopName,
		JobName:               row.JobName,
		AbendType:             row.AbendType,
		SourceDocumentURL:     row.SourceDocumentUrl,
		ProcessedDocumentURLs: nonNil(row.ProcessedDocumentUrls),
		CreatedAt:             row.CreatedAt.Time.UTC(),
		UpdatedAt:             row.UpdatedAt.Time.UTC(),
		CreatedBy:             row.CreatedBy,
		UpdatedBy:             row.UpdatedBy,
		Generation:            row.Generation,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
