package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adr.app/ledger/common/id"
	"adr.app/ledger/common/logger"
	"adr.app/ledger/internal/model"
)

// NoteParams adds a free-form entry to an incident's audit trail.
// A zero OccurredAt selects the latest occurrence of TrackingID.
type NoteParams struct {
	TrackingID string
	OccurredAt time.Time
	Level      model.AuditLevel
	Actor      string
	Detail     string
}

type AuditService interface {
	Note(ctx context.Context, p NoteParams) (*model.AuditEntry, error)
}

type auditService struct {
	txRunner TxRunner
	now      func() time.Time
}

func NewAuditService(txRunner TxRunner) AuditService {
	return &auditService{txRunner: txRunner, now: time.Now}
}

func (s *auditService) Note(ctx context.Context, p NoteParams) (*model.AuditEntry, error) {
	if p.Detail == "" {
		return nil, model.InvalidArgumentf("detail is required")
	}
	if p.Level == "" {
		p.Level = model.AuditLevelInfo
	}
	if !p.Level.Valid() {
		return nil, model.InvalidArgumentf("unknown audit level %q", p.Level)
	}
	if _, _, err := id.ParseTrackingID(p.TrackingID); err != nil {
		return nil, invalidIdentifier(err)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{TrackingID: logger.Ptr(p.TrackingID)})

	var entry *model.AuditEntry
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		var (
			incident *model.Incident
			err      error
		)
		if p.OccurredAt.IsZero() {
			incident, err = stores.Incidents().GetLatest(ctx, p.TrackingID)
		} else {
			incident, err = stores.Incidents().Get(ctx, model.IncidentKey{
				TrackingID: p.TrackingID,
				OccurredAt: model.NormalizeTime(p.OccurredAt),
			})
		}
		if err != nil {
			return fmt.Errorf("reading incident: %w", err)
		}

		entry = &model.AuditEntry{
			AuditID:    id.New(),
			TrackingID: incident.TrackingID,
			OccurredAt: incident.OccurredAt,
			Action:     model.AuditActionNote,
			Level:      p.Level,
			Status:     incident.Status,
			Actor:      actorOrDefault(p.Actor),
			Timestamp:  model.NormalizeTime(s.now()),
			Detail:     p.Detail,
		}
		if err := stores.Audit().Append(ctx, entry); err != nil {
			return fmt.Errorf("appending audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "audit note recorded", "audit_id", entry.AuditID, "level", entry.Level)
	return entry, nil
}
