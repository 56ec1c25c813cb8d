package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"adr.app/ledger/common/id"
	"adr.app/ledger/common/logger"
	"adr.app/ledger/internal/lifecycle"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/store"
)

// RegisterParams describes a newly observed ABEND. TrackingID is optional;
// when empty one is minted from JobName.
type RegisterParams struct {
	TrackingID string
	OccurredAt time.Time

	JobID           string
	JobName         string
	OrderID         string
	IncidentNumber  string
	DomainArea      string
	AbendType       string
	AbendStep       string
	AbendReturnCode string
	AbendReason     string
	Severity        model.Severity

	EmailMetadata         *model.EmailMetadata
	KnowledgeBaseMetadata *model.KnowledgeBaseMetadata
	RemediationMetadata   *model.RemediationMetadata

	LogExtractionRunID string

	Actor   string
	TraceID string
}

// UpdateParams identifies the record a write applies to and the generation
// the caller last observed.
type UpdateParams struct {
	Key                model.IncidentKey
	ExpectedGeneration int64
	Actor              string
	TraceID            string
	Detail             string
}

// Mutator edits a private copy of the incident.
type Mutator func(incident *model.Incident) error

// FieldUpdate carries a partial update. Nil fields are left untouched;
// metadata blobs replace the stored blob wholesale.
type FieldUpdate struct {
	JobID           *string
	OrderID         *string
	IncidentNumber  *string
	DomainArea      *string
	AbendType       *string
	AbendStep       *string
	AbendReturnCode *string
	AbendReason     *string

	Status   *model.Status
	Severity *model.Severity

	EmailMetadata         *model.EmailMetadata
	KnowledgeBaseMetadata *model.KnowledgeBaseMetadata
	RemediationMetadata   *model.RemediationMetadata

	LogExtractionRunID   *string
	LogExtractionRetries *int
}

func (u FieldUpdate) Apply(i *model.Incident) {
	setIf(&i.JobID, u.JobID)
	setIf(&i.OrderID, u.OrderID)
	setIf(&i.IncidentNumber, u.IncidentNumber)
	setIf(&i.DomainArea, u.DomainArea)
	setIf(&i.AbendType, u.AbendType)
	setIf(&i.AbendStep, u.AbendStep)
	setIf(&i.AbendReturnCode, u.AbendReturnCode)
	setIf(&i.AbendReason, u.AbendReason)
	setIf(&i.Status, u.Status)
	setIf(&i.Severity, u.Severity)
	setIf(&i.LogExtractionRunID, u.LogExtractionRunID)
	setIf(&i.LogExtractionRetries, u.LogExtractionRetries)
	if u.EmailMetadata != nil {
		i.EmailMetadata = u.EmailMetadata
	}
	if u.KnowledgeBaseMetadata != nil {
		i.KnowledgeBaseMetadata = u.KnowledgeBaseMetadata
	}
	if u.RemediationMetadata != nil {
		i.RemediationMetadata = u.RemediationMetadata
	}
}

// RemediationReview is an approval decision on the suggested remediation.
type RemediationReview struct {
	Decision model.ApprovalStatus
	Comments string
	Reviewer string
}

type IncidentService interface {
	Register(ctx context.Context, p RegisterParams) (*model.Incident, error)
	Get(ctx context.Context, key model.IncidentKey) (*model.Incident, error)
	GetLatest(ctx context.Context, trackingID string) (*model.Incident, error)

	// CompareAndUpdate applies mutate to the incident at p.Key if its generation
	// is still p.ExpectedGeneration. Exactly one audit entry is written with it.
	CompareAndUpdate(ctx context.Context, p UpdateParams, mutate Mutator) (*model.Incident, error)

	Transition(ctx context.Context, p UpdateParams, to model.Status) (*model.Incident, error)
	RecordPhaseDuration(ctx context.Context, p UpdateParams, phase model.Phase, d time.Duration) (*model.Incident, error)
	UpdateFields(ctx context.Context, p UpdateParams, u FieldUpdate) (*model.Incident, error)
	ReviewRemediation(ctx context.Context, p UpdateParams, r RemediationReview) (*model.Incident, error)
}

type incidentService struct {
	txRunner  TxRunner
	incidents store.IncidentStore
	publisher ChangePublisher
	now       func() time.Time
}

func NewIncidentService(txRunner TxRunner, incidents store.IncidentStore, publisher ChangePublisher) IncidentService {
	if publisher == nil {
		publisher = NopPublisher()
	}
	return &incidentService{
		txRunner:  txRunner,
		incidents: incidents,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *incidentService) Register(ctx context.Context, p RegisterParams) (*model.Incident, error) {
	if p.OccurredAt.IsZero() {
		return nil, model.InvalidArgumentf("occurredAt is required")
	}
	trackingID, err := resolveTrackingID(p.TrackingID, p.JobName)
	if err != nil {
		return nil, err
	}
	severity := p.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}

	now := model.NormalizeTime(s.now())
	actor := actorOrDefault(p.Actor)
	incident := &model.Incident{
		TrackingID:            trackingID,
		OccurredAt:            model.NormalizeTime(p.OccurredAt),
		JobID:                 p.JobID,
		JobName:               p.JobName,
		OrderID:               p.OrderID,
		IncidentNumber:        p.IncidentNumber,
		DomainArea:            p.DomainArea,
		AbendType:             p.AbendType,
		AbendStep:             p.AbendStep,
		AbendReturnCode:       p.AbendReturnCode,
		AbendReason:           p.AbendReason,
		Status:                lifecycle.Initial,
		Severity:              severity,
		VisitedStatuses:       []model.Status{lifecycle.Initial},
		EmailMetadata:         p.EmailMetadata,
		KnowledgeBaseMetadata: p.KnowledgeBaseMetadata,
		RemediationMetadata:   p.RemediationMetadata,
		LogExtractionRunID:    p.LogExtractionRunID,
		CreatedAt:             now,
		UpdatedAt:             now,
		CreatedBy:             actor,
		UpdatedBy:             actor,
	}
	if err := model.ValidateIncident(incident); err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TrackingID: logger.Ptr(trackingID),
		Actor:      logger.Ptr(actor),
	})

	after, err := snapshot(incident)
	if err != nil {
		return nil, err
	}
	change := newChange(incident, model.ChangeKindCreated, traceIDOrContext(ctx, p.TraceID), now)

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := checkSOPReference(ctx, stores, nil, incident); err != nil {
			return err
		}
		if err := stores.Incidents().Create(ctx, incident); err != nil {
			return fmt.Errorf("creating incident: %w", err)
		}
		if err := stores.Audit().Append(ctx, &model.AuditEntry{
			AuditID:    id.New(),
			TrackingID: incident.TrackingID,
			OccurredAt: incident.OccurredAt,
			Action:     model.AuditActionCreated,
			Level:      model.AuditLevelInfo,
			Status:     incident.Status,
			Actor:      actor,
			Timestamp:  now,
			After:      after,
			Generation: incident.Generation,
		}); err != nil {
			return fmt.Errorf("appending audit entry: %w", err)
		}
		if err := stores.Index().Refresh(ctx, incident); err != nil {
			return fmt.Errorf("refreshing index: %w", err)
		}
		if err := stores.Changes().Create(ctx, change); err != nil {
			return fmt.Errorf("recording change: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrAlreadyExists) {
			slog.ErrorContext(ctx, "failed to register incident", "error", err)
		}
		return nil, err
	}

	s.publisher.Publish(ctx, change)
	slog.InfoContext(ctx, "incident registered",
		"job_name", incident.JobName,
		"occurred_at", incident.OccurredAt)
	return incident, nil
}

func (s *incidentService) Get(ctx context.Context, key model.IncidentKey) (*model.Incident, error) {
	key.OccurredAt = model.NormalizeTime(key.OccurredAt)
	incident, err := s.incidents.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading incident: %w", err)
	}
	return incident, nil
}

func (s *incidentService) GetLatest(ctx context.Context, trackingID string) (*model.Incident, error) {
	if _, _, err := id.ParseTrackingID(trackingID); err != nil {
		return nil, invalidIdentifier(err)
	}
	incident, err := s.incidents.GetLatest(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("reading incident: %w", err)
	}
	return incident, nil
}

func (s *incidentService) CompareAndUpdate(ctx context.Context, p UpdateParams, mutate Mutator) (*model.Incident, error) {
	return s.update(ctx, p, "", mutate)
}

func (s *incidentService) Transition(ctx context.Context, p UpdateParams, to model.Status) (*model.Incident, error) {
	if !to.Valid() {
		return nil, model.InvalidArgumentf("unknown status %q", to)
	}
	return s.update(ctx, p, "", func(i *model.Incident) error {
		i.Status = to
		return nil
	})
}

func (s *incidentService) RecordPhaseDuration(ctx context.Context, p UpdateParams, phase model.Phase, d time.Duration) (*model.Incident, error) {
	if !phase.Valid() {
		return nil, model.InvalidArgumentf("unknown phase %q", phase)
	}
	if d < 0 {
		return nil, model.InvalidArgumentf("phase %s has negative duration", phase)
	}
	// Stored at millisecond precision; a repeat of the same reading must compare equal.
	d = d.Truncate(time.Millisecond)
	return s.update(ctx, p, "", func(i *model.Incident) error {
		if i.Metrics == nil {
			i.Metrics = make(model.PhaseMetrics, 1)
		}
		i.Metrics[phase] = d
		return nil
	})
}

func (s *incidentService) UpdateFields(ctx context.Context, p UpdateParams, u FieldUpdate) (*model.Incident, error) {
	if u.Status != nil && !u.Status.Valid() {
		return nil, model.InvalidArgumentf("unknown status %q", *u.Status)
	}
	if u.Severity != nil && !u.Severity.Valid() {
		return nil, model.InvalidArgumentf("unknown severity %q", *u.Severity)
	}
	return s.update(ctx, p, "", func(i *model.Incident) error {
		u.Apply(i)
		return nil
	})
}

func (s *incidentService) ReviewRemediation(ctx context.Context, p UpdateParams, r RemediationReview) (*model.Incident, error) {
	if !r.Decision.Valid() {
		return nil, model.InvalidArgumentf("unknown approval decision %q", r.Decision)
	}
	reviewer := r.Reviewer
	if reviewer == "" {
		reviewer = actorOrDefault(p.Actor)
	}
	if p.Detail == "" {
		p.Detail = fmt.Sprintf("remediation %s by %s", r.Decision, reviewer)
	}
	reviewedAt := model.NormalizeTime(s.now())

	return s.update(ctx, p, model.AuditActionRemediationReview, func(i *model.Incident) error {
		review := model.RemediationMetadata{}
		if i.RemediationMetadata != nil {
			review = *i.RemediationMetadata
		}
		review.ApprovalStatus = r.Decision
		review.ApprovalComments = r.Comments
		review.ApprovedAt = &reviewedAt
		review.ApprovedBy = reviewer
		i.RemediationMetadata = &review
		return nil
	})
}

// update is the single write path for existing incidents. action overrides
// the audit action chosen from the status change.
func (s *incidentService) update(ctx context.Context, p UpdateParams, action model.AuditAction, mutate Mutator) (*model.Incident, error) {
	if mutate == nil {
		return nil, model.InvalidArgumentf("mutator is required")
	}
	key := model.IncidentKey{TrackingID: p.Key.TrackingID, OccurredAt: model.NormalizeTime(p.Key.OccurredAt)}
	actor := actorOrDefault(p.Actor)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TrackingID: logger.Ptr(key.TrackingID),
		Actor:      logger.Ptr(actor),
	})
	traceID := traceIDOrContext(ctx, p.TraceID)

	var (
		before  *model.Incident
		updated *model.Incident
		change  *model.IncidentChange
	)
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		current, err := stores.Incidents().Get(ctx, key)
		if err != nil {
			return fmt.Errorf("reading incident: %w", err)
		}
		if current.Generation != p.ExpectedGeneration {
			return fmt.Errorf("%w: expected generation %d, found %d", model.ErrConflict, p.ExpectedGeneration, current.Generation)
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		if err := checkImmutable(current, next); err != nil {
			return err
		}
		if err := lifecycle.Validate(current.Status, next.Status); err != nil {
			return err
		}
		if !next.HasVisited(next.Status) {
			next.VisitedStatuses = append(next.VisitedStatuses, next.Status)
		}
		if err := lifecycle.ValidateMetrics(current, next); err != nil {
			return err
		}
		if err := model.ValidateIncident(next); err != nil {
			return err
		}
		if err := checkSOPReference(ctx, stores, current, next); err != nil {
			return err
		}

		now := model.NormalizeTime(s.now())
		next.UpdatedAt = now
		next.UpdatedBy = actor
		if err := stores.Incidents().CompareAndSwap(ctx, next, p.ExpectedGeneration); err != nil {
			return fmt.Errorf("writing incident: %w", err)
		}
		next.Generation = p.ExpectedGeneration + 1

		entryAction, kind := classify(current, next, action)
		diffBefore, diffAfter, err := changedFields(current, next)
		if err != nil {
			return err
		}
		if err := stores.Audit().Append(ctx, &model.AuditEntry{
			AuditID:    id.New(),
			TrackingID: next.TrackingID,
			OccurredAt: next.OccurredAt,
			Action:     entryAction,
			Level:      model.AuditLevelInfo,
			Status:     next.Status,
			Actor:      actor,
			Timestamp:  now,
			Before:     diffBefore,
			After:      diffAfter,
			Detail:     p.Detail,
			Generation: next.Generation,
		}); err != nil {
			return fmt.Errorf("appending audit entry: %w", err)
		}
		if err := stores.Index().Refresh(ctx, next); err != nil {
			return fmt.Errorf("refreshing index: %w", err)
		}

		change = newChange(next, kind, traceID, now)
		if err := stores.Changes().Create(ctx, change); err != nil {
			return fmt.Errorf("recording change: %w", err)
		}

		before, updated = current, next
		return nil
	})
	if err != nil {
		logUpdateFailure(ctx, err)
		return nil, err
	}

	s.publisher.Publish(ctx, change)
	if before.Status != updated.Status {
		slog.InfoContext(ctx, "incident status changed",
			"from", before.Status,
			"to", updated.Status,
			"generation", updated.Generation)
	} else {
		slog.DebugContext(ctx, "incident updated", "generation", updated.Generation)
	}
	return updated, nil
}

func classify(before, after *model.Incident, override model.AuditAction) (model.AuditAction, model.ChangeKind) {
	kind := model.ChangeKindUpdated
	action := model.AuditActionFieldUpdate
	if before.Status != after.Status {
		kind = model.ChangeKindStatusChanged
		action = model.AuditActionStatusChange
	}
	if override != "" {
		action = override
	}
	return action, kind
}

func checkImmutable(before, after *model.Incident) error {
	switch {
	case after.TrackingID != before.TrackingID:
		return model.InvalidArgumentf("trackingId is immutable")
	case !after.OccurredAt.Equal(before.OccurredAt):
		return model.InvalidArgumentf("occurredAt is immutable")
	case after.JobName != before.JobName:
		return model.InvalidArgumentf("jobName is immutable")
	case !after.CreatedAt.Equal(before.CreatedAt), after.CreatedBy != before.CreatedBy:
		return model.InvalidArgumentf("creation stamps are immutable")
	case after.Generation != before.Generation:
		return model.InvalidArgumentf("generation is managed by the store")
	case !slices.Equal(after.VisitedStatuses, before.VisitedStatuses):
		return model.InvalidArgumentf("visitedStatuses is managed by the store")
	}
	return nil
}

func resolveTrackingID(trackingID, jobName string) (string, error) {
	if trackingID == "" {
		generated, err := id.NewTrackingID(jobName)
		if err != nil {
			return "", invalidIdentifier(err)
		}
		return generated, nil
	}
	embedded, _, err := id.ParseTrackingID(trackingID)
	if err != nil {
		return "", invalidIdentifier(err)
	}
	if embedded != jobName {
		return "", model.InvalidArgumentf("tracking id %q does not embed job name %q", trackingID, jobName)
	}
	return trackingID, nil
}

// checkSOPReference requires a newly set relevantSopId to name a registered SOP.
// A reference carried over unchanged is not re-checked.
func checkSOPReference(ctx context.Context, stores StoreProvider, prev, next *model.Incident) error {
	ref := relevantSOPID(next)
	if ref == "" || ref == relevantSOPID(prev) {
		return nil
	}
	if _, err := stores.SOPs().Get(ctx, ref); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.InvalidArgumentf("knowledgeBaseMetadata.relevantSopId %q is not a registered sop", ref)
		}
		return fmt.Errorf("reading sop: %w", err)
	}
	return nil
}

func relevantSOPID(i *model.Incident) string {
	if i == nil || i.KnowledgeBaseMetadata == nil {
		return ""
	}
	return i.KnowledgeBaseMetadata.RelevantSOPID
}

// invalidIdentifier classifies a tracking id or job name parse failure as a caller error.
func invalidIdentifier(err error) error {
	return fmt.Errorf("%w: %w", model.ErrInvalidArgument, err)
}

func newChange(i *model.Incident, kind model.ChangeKind, traceID *string, now time.Time) *model.IncidentChange {
	return &model.IncidentChange{
		ID:         id.New(),
		TrackingID: i.TrackingID,
		OccurredAt: i.OccurredAt,
		Generation: i.Generation,
		Kind:       kind,
		TraceID:    traceID,
		CreatedAt:  now,
	}
}

func logUpdateFailure(ctx context.Context, err error) {
	switch {
	case errors.Is(err, model.ErrStoreUnavailable):
		slog.ErrorContext(ctx, "failed to update incident", "error", err)
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalidTransition):
		slog.InfoContext(ctx, "incident update rejected", "error", err)
	default:
		slog.DebugContext(ctx, "incident update rejected", "error", err)
	}
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return model.DefaultActor
	}
	return actor
}

func traceIDOrContext(ctx context.Context, traceID string) *string {
	if traceID == "" {
		traceID = logger.TraceID(ctx)
	}
	if traceID == "" {
		return nil
	}
	return &traceID
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
