package store

import (
	"context"
	"encoding/json"
	"fmt"

	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/model"
)

type incidentStore struct {
	queries *sqlc.Queries
}

func newIncidentStore(queries *sqlc.Queries) IncidentStore {
	return &incidentStore{queries: queries}
}

func (s *incidentStore) Create(ctx context.Context, incident *model.Incident) error {
	cols, err := toIncidentColumns(incident)
	if err != nil {
		return err
	}
	err = s.queries.CreateIncident(ctx, sqlc.CreateIncidentParams{
		TrackingID:            incident.TrackingID,
		OccurredAt:            timestamptz(incident.OccurredAt),
		JobID:                 optString(incident.JobID),
		JobName:               incident.JobName,
		OrderID:               optString(incident.OrderID),
		IncidentNumber:        optString(incident.IncidentNumber),
		DomainArea:            optString(incident.DomainArea),
		AbendType:             optString(incident.AbendType),
		AbendStep:             optString(incident.AbendStep),
		AbendReturnCode:       optString(incident.AbendReturnCode),
		AbendReason:           optString(incident.AbendReason),
		Status:                string(incident.Status),
		Severity:              string(incident.Severity),
		VisitedStatuses:       cols.visited,
		PhaseMetrics:          cols.metrics,
		EmailMetadata:         cols.email,
		KnowledgeBaseMetadata: cols.knowledgeBase,
		RemediationMetadata:   cols.remediation,
		LogExtractionRunID:    optString(incident.LogExtractionRunID),
		LogExtractionRetries:  int32(incident.LogExtractionRetries),
		CreatedAt:             timestamptz(incident.CreatedAt),
		UpdatedAt:             timestamptz(incident.UpdatedAt),
		CreatedBy:             incident.CreatedBy,
		UpdatedBy:             incident.UpdatedBy,
		Generation:            incident.Generation,
	})
	return mapError(err)
}

func (s *incidentStore) Get(ctx context.Context, key model.IncidentKey) (*model.Incident, error) {
	row, err := s.queries.GetIncident(ctx, sqlc.GetIncidentParams{
		TrackingID: key.TrackingID,
		OccurredAt: timestamptz(key.OccurredAt),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toIncidentModel(row)
}

func (s *incidentStore) GetLatest(ctx context.Context, trackingID string) (*model.Incident, error) {
	row, err := s.queries.GetLatestIncident(ctx, trackingID)
	if err != nil {
		return nil, mapError(err)
	}
	return toIncidentModel(row)
}

func (s *incidentStore) GetForUpdate(ctx context.Context, key model.IncidentKey) (*model.Incident, error) {
	row, err := s.queries.GetIncidentForUpdate(ctx, sqlc.GetIncidentForUpdateParams{
		TrackingID: key.TrackingID,
		OccurredAt: timestamptz(key.OccurredAt),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toIncidentModel(row)
}

func (s *incidentStore) CompareAndSwap(ctx context.Context, incident *model.Incident, expectedGeneration int64) error {
	cols, err := toIncidentColumns(incident)
	if err != nil {
		return err
	}
	n, err := s.queries.UpdateIncidentIfGeneration(ctx, sqlc.UpdateIncidentIfGenerationParams{
		JobID:                 optString(incident.JobID),
		OrderID:               optString(incident.OrderID),
		IncidentNumber:        optString(incident.IncidentNumber),
		DomainArea:            optString(incident.DomainArea),
		AbendType:             optString(incident.AbendType),
		AbendStep:             optString(incident.AbendStep),
		AbendReturnCode:       optString(incident.AbendReturnCode),
		AbendReason:           optString(incident.AbendReason),
		Status:                string(incident.Status),
		Severity:              string(incident.Severity),
		VisitedStatuses:       cols.visited,
		PhaseMetrics:          cols.metrics,
		EmailMetadata:         cols.email,
		KnowledgeBaseMetadata: cols.knowledgeBase,
		RemediationMetadata:   cols.remediation,
		LogExtractionRunID:    optString(incident.LogExtractionRunID),
		LogExtractionRetries:  int32(incident.LogExtractionRetries),
		UpdatedAt:             timestamptz(incident.UpdatedAt),
		UpdatedBy:             incident.UpdatedBy,
		ExpectedGeneration:    expectedGeneration,
		TrackingID:            incident.TrackingID,
		OccurredAt:            timestamptz(incident.OccurredAt),
	})
	if err != nil {
		return mapError(err)
	}
	if n == 1 {
		return nil
	}

	exists, err := s.queries.IncidentExists(ctx, sqlc.IncidentExistsParams{
		TrackingID: incident.TrackingID,
		OccurredAt: timestamptz(incident.OccurredAt),
	})
	if err != nil {
		return mapError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return fmt.Errorf("%w: expected generation %d", model.ErrConflict, expectedGeneration)
}

type incidentColumns struct {
	visited       []string
	metrics       []byte
	email         []byte
	knowledgeBase []byte
	remediation   []byte
}

func toIncidentColumns(incident *model.Incident) (incidentColumns, error) {
	var cols incidentColumns
	var err error

	cols.visited = make([]string, len(incident.VisitedStatuses))
	for i, s := range incident.VisitedStatuses {
		cols.visited[i] = string(s)
	}

	metrics := incident.Metrics
	if metrics == nil {
		metrics = model.PhaseMetrics{}
	}
	if cols.metrics, err = json.Marshal(metrics); err != nil {
		return cols, fmt.Errorf("encoding phase metrics: %w", err)
	}
	if cols.email, err = marshalBlob(incident.EmailMetadata); err != nil {
		return cols, fmt.Errorf("encoding email metadata: %w", err)
	}
	if cols.knowledgeBase, err = marshalBlob(incident.KnowledgeBaseMetadata); err != nil {
		return cols, fmt.Errorf("encoding knowledge base metadata: %w", err)
	}
	if cols.remediation, err = marshalBlob(incident.RemediationMetadata); err != nil {
		return cols, fmt.Errorf("encoding remediation metadata: %w", err)
	}
	return cols, nil
}

func marshalBlob[T any](blob *T) ([]byte, error) {
	if blob == nil {
		return nil, nil
	}
	return json.Marshal(blob)
}

func unmarshalBlob[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func toIncidentModel(row sqlc.Incident) (*model.Incident, error) {
	incident := &model.Incident{
		TrackingID:           row.TrackingID,
		OccurredAt:           row.OccurredAt.Time.UTC(),
		JobID:                deref(row.JobID),
		JobName:              row.JobName,
		OrderID:              deref(row.OrderID),
		IncidentNumber:       deref(row.IncidentNumber),
		DomainArea:           deref(row.DomainArea),
		AbendType:            deref(row.AbendType),
		AbendStep:            deref(row.AbendStep),
		AbendReturnCode:      deref(row.AbendReturnCode),
		AbendReason:          deref(row.AbendReason),
		Status:               model.Status(row.Status),
		Severity:             model.Severity(row.Severity),
		LogExtractionRunID:   deref(row.LogExtractionRunID),
		LogExtractionRetries: int(row.LogExtractionRetries),
		CreatedAt:            row.CreatedAt.Time.UTC(),
		UpdatedAt:            row.UpdatedAt.Time.UTC(),
		CreatedBy:            row.CreatedBy,
		UpdatedBy:            row.UpdatedBy,
		Generation:           row.Generation,
	}

	incident.VisitedStatuses = make([]model.Status, len(row.VisitedStatuses))
	for i, s := range row.VisitedStatuses {
		incident.VisitedStatuses[i] = model.Status(s)
	}

	var err error
	if len(row.PhaseMetrics) > 0 {
		if err = json.Unmarshal(row.PhaseMetrics, &incident.Metrics); err != nil {
			return nil, fmt.Errorf("decoding phase metrics of %s: %w", row.TrackingID, err)
		}
	}
	if incident.EmailMetadata, err = unmarshalBlob[model.EmailMetadata](row.EmailMetadata); err != nil {
		return nil, fmt.Errorf("decoding email metadata of %s: %w", row.TrackingID, err)
	}
	if incident.KnowledgeBaseMetadata, err = unmarshalBlob[model.KnowledgeBaseMetadata](row.KnowledgeBaseMetadata); err != nil {
		return nil, fmt.Errorf("decoding knowledge base metadata of %s: %w", row.TrackingID, err)
	}
	if incident.RemediationMetadata, err = unmarshalBlob[model.RemediationMetadata](row.RemediationMetadata); err != nil {
		return nil, fmt.Errorf("decoding remediation metadata of %s: %w", row.TrackingID, err)
	}
	return incident, nil
}
