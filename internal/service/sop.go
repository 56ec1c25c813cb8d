package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"adr.app/ledger/common/id"
	"adr.app/ledger/common/logger"
	"adr.app/ledger/core/config"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/store"
)

type SOPListParams struct {
	JobName   string
	AbendType string
	// Search matches a case-insensitive substring of the SOP name.
	Search string
	Cursor string
	Limit  int
}

type CreateSOPParams struct {
	Name                  string
	JobName               string
	AbendType             string
	SourceDocumentURL     string
	ProcessedDocumentURLs []string
	Actor                 string
}

type UpdateSOPParams struct {
	SOPID              string
	ExpectedGeneration int64
	Actor              string
}

// SOPUpdate carries the fields to change. Nil fields are left as they are.
type SOPUpdate struct {
	Name                  *string
	JobName               *string
	AbendType             *string
	SourceDocumentURL     *string
	ProcessedDocumentURLs *[]string
}

func (u SOPUpdate) empty() bool {
	return u.Name == nil && u.JobName == nil && u.AbendType == nil &&
		u.SourceDocumentURL == nil && u.ProcessedDocumentURLs == nil
}

func (u SOPUpdate) apply(s *model.SOP) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.JobName != nil {
		s.JobName = *u.JobName
	}
	if u.AbendType != nil {
		s.AbendType = *u.AbendType
	}
	if u.SourceDocumentURL != nil {
		s.SourceDocumentURL = *u.SourceDocumentURL
	}
	if u.ProcessedDocumentURLs != nil {
		s.ProcessedDocumentURLs = slices.Clone(*u.ProcessedDocumentURLs)
	}
}

type SOPService interface {
	List(ctx context.Context, p SOPListParams) (pagination.Page[model.SOPSummary], error)
	Get(ctx context.Context, sopID string) (*model.SOP, error)
	Create(ctx context.Context, p CreateSOPParams) (*model.SOP, error)
	Update(ctx context.Context, p UpdateSOPParams, u SOPUpdate) (*model.SOP, error)
}

type sopService struct {
	txRunner TxRunner
	sops     store.SOPStore
	cfg      config.QueryConfig
	now      func() time.Time
}

func NewSOPService(txRunner TxRunner, sops store.SOPStore, cfg config.QueryConfig) SOPService {
	return &sopService{txRunner: txRunner, sops: sops, cfg: cfg, now: time.Now}
}

func (s *sopService) List(ctx context.Context, p SOPListParams) (pagination.Page[model.SOPSummary], error) {
	var empty pagination.Page[model.SOPSummary]

	limit, err := pagination.Limit(p.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if err != nil {
		return empty, err
	}
	scope := pagination.Scope{
		Dimension:   "sop",
		Order:       pagination.OrderDesc,
		Fingerprint: pagination.Fingerprint(p.JobName, p.AbendType, p.Search),
	}
	cursor, err := pagination.Decode(p.Cursor, scope)
	if err != nil {
		return empty, err
	}

	q := store.SOPQuery{
		JobName:   p.JobName,
		AbendType: p.AbendType,
		Search:    p.Search,
		Limit:     limit + 1,
	}
	if cursor != nil {
		createdAt, err := time.Parse(model.IndexTimeLayout, cursor.LastKey)
		if err != nil {
			return empty, model.InvalidArgumentf("malformed cursor")
		}
		q.AfterCreatedAt = &createdAt
		q.AfterSOPID = cursor.LastID
	}

	sops, err := s.sops.List(ctx, q)
	if err != nil {
		return empty, fmt.Errorf("listing sops: %w", err)
	}
	page := pagination.Build(sops, limit, func(last model.SOP) pagination.Cursor {
		return scope.After(model.OccurredAtKey(last.CreatedAt), last.SOPID)
	})
	return pagination.Map(page, func(sop model.SOP) model.SOPSummary {
		return sop.Summary()
	}), nil
}

func (s *sopService) Get(ctx context.Context, sopID string) (*model.SOP, error) {
	if sopID == "" {
		return nil, model.InvalidArgumentf("sop id is required")
	}
	sop, err := s.sops.Get(ctx, sopID)
	if err != nil {
		return nil, fmt.Errorf("reading sop: %w", err)
	}
	return sop, nil
}

func (s *sopService) Create(ctx context.Context, p CreateSOPParams) (*model.SOP, error) {
	now := model.NormalizeTime(s.now())
	actor := actorOrDefault(p.Actor)
	sop := &model.SOP{
		SOPID:                 id.NewSOPID(),
		Name:                  p.Name,
		JobName:               p.JobName,
		AbendType:             p.AbendType,
		SourceDocumentURL:     p.SourceDocumentURL,
		ProcessedDocumentURLs: slices.Clone(p.ProcessedDocumentURLs),
		CreatedAt:             now,
		UpdatedAt:             now,
		CreatedBy:             actor,
		UpdatedBy:             actor,
	}
	if sop.ProcessedDocumentURLs == nil {
		sop.ProcessedDocumentURLs = []string{}
	}
	if err := model.ValidateSOP(sop); err != nil {
		return nil, err
	}

	if err := s.sops.Create(ctx, sop); err != nil {
		return nil, fmt.Errorf("creating sop: %w", err)
	}
	slog.InfoContext(ctx, "sop registered",
		"sop_id", sop.SOPID,
		"job_name", sop.JobName,
		"abend_type", sop.AbendType)
	return sop, nil
}

// Update applies u when the stored generation still equals p.ExpectedGeneration.
// An empty update returns the stored SOP without writing.
func (s *sopService) Update(ctx context.Context, p UpdateSOPParams, u SOPUpdate) (*model.SOP, error) {
	if p.SOPID == "" {
		return nil, model.InvalidArgumentf("sop id is required")
	}
	actor := actorOrDefault(p.Actor)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Actor: logger.Ptr(actor)})

	var updated *model.SOP
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		current, err := stores.SOPs().Get(ctx, p.SOPID)
		if err != nil {
			return fmt.Errorf("reading sop: %w", err)
		}
		if current.Generation != p.ExpectedGeneration {
			return fmt.Errorf("%w: expected generation %d, found %d", model.ErrConflict, p.ExpectedGeneration, current.Generation)
		}
		if u.empty() {
			updated = current
			return nil
		}

		next := current.Clone()
		u.apply(next)
		if err := model.ValidateSOP(next); err != nil {
			return err
		}
		next.UpdatedAt = model.NormalizeTime(s.now())
		next.UpdatedBy = actor
		if err := stores.SOPs().CompareAndSwap(ctx, next, p.ExpectedGeneration); err != nil {
			return fmt.Errorf("writing sop: %w", err)
		}
		next.Generation = p.ExpectedGeneration + 1
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "sop updated", "sop_id", updated.SOPID, "generation", updated.Generation)
	return updated, nil
}
