package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/dto"
	"adr.app/ledger/internal/http/middleware"
	"adr.app/ledger/internal/lifecycle"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/service"
)

type IncidentHandler struct {
	incidents service.IncidentService
}

func NewIncidentHandler(incidents service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

func (h *IncidentHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	incident, err := h.incidents.Register(ctx, service.RegisterParams{
		TrackingID:            req.TrackingID,
		OccurredAt:            req.OccurredAt,
		JobID:                 req.JobID,
		JobName:               req.JobName,
		OrderID:               req.OrderID,
		IncidentNumber:        req.IncidentNumber,
		DomainArea:            req.DomainArea,
		AbendType:             req.AbendType,
		AbendStep:             req.AbendStep,
		AbendReturnCode:       req.AbendReturnCode,
		AbendReason:           req.AbendReason,
		Severity:              model.Severity(req.Severity),
		EmailMetadata:         req.EmailMetadata,
		KnowledgeBaseMetadata: req.KnowledgeBaseMetadata,
		RemediationMetadata:   req.RemediationMetadata,
		LogExtractionRunID:    req.LogExtractionRunID,
		Actor:                 c.GetHeader(middleware.ActorHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, incident)
}

func (h *IncidentHandler) Get(c *gin.Context) {
	incident, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, incident)
}

// Transitions lists the statuses the addressed occurrence may move to next.
func (h *IncidentHandler) Transitions(c *gin.Context) {
	incident, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.AllowedTransitions{
		TrackingID: incident.TrackingID,
		OccurredAt: incident.OccurredAt,
		Status:     incident.Status,
		Generation: incident.Generation,
		Next:       lifecycle.Next(incident.Status),
		Terminal:   lifecycle.IsTerminal(incident.Status),
	})
}

// lookup resolves the occurrence named by the path and the optional
// occurredAt query parameter, writing the error response itself on failure.
func (h *IncidentHandler) lookup(c *gin.Context) (*model.Incident, bool) {
	ctx := c.Request.Context()
	trackingID := c.Param("trackingId")

	var q dto.GetIncidentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return nil, false
	}

	var (
		incident *model.Incident
		err      error
	)
	if q.OccurredAt == "" {
		incident, err = h.incidents.GetLatest(ctx, trackingID)
	} else {
		var occurredAt time.Time
		occurredAt, err = parseOccurredAt(q.OccurredAt)
		if err == nil {
			incident, err = h.incidents.Get(ctx, model.IncidentKey{TrackingID: trackingID, OccurredAt: occurredAt})
		}
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return incident, true
}

func (h *IncidentHandler) Update(c *gin.Context) {
	var req dto.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	update := service.FieldUpdate{
		JobID:                 req.JobID,
		OrderID:               req.OrderID,
		IncidentNumber:        req.IncidentNumber,
		DomainArea:            req.DomainArea,
		AbendType:             req.AbendType,
		AbendStep:             req.AbendStep,
		AbendReturnCode:       req.AbendReturnCode,
		AbendReason:           req.AbendReason,
		EmailMetadata:         req.EmailMetadata,
		KnowledgeBaseMetadata: req.KnowledgeBaseMetadata,
		RemediationMetadata:   req.RemediationMetadata,
		LogExtractionRunID:    req.LogExtractionRunID,
		LogExtractionRetries:  req.LogExtractionRetries,
	}
	if req.Severity != nil {
		severity := model.Severity(*req.Severity)
		update.Severity = &severity
	}

	h.write(c, req.WriteRequest, func(ctx context.Context, p service.UpdateParams) (*model.Incident, error) {
		return h.incidents.UpdateFields(ctx, p, update)
	})
}

func (h *IncidentHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	h.write(c, req.WriteRequest, func(ctx context.Context, p service.UpdateParams) (*model.Incident, error) {
		return h.incidents.Transition(ctx, p, to)
	})
}

func (h *IncidentHandler) RecordPhaseDuration(c *gin.Context) {
	var req dto.PhaseDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	d := time.Duration(*req.DurationMS) * time.Millisecond

	h.write(c, req.WriteRequest, func(ctx context.Context, p service.UpdateParams) (*model.Incident, error) {
		return h.incidents.RecordPhaseDuration(ctx, p, model.Phase(req.Phase), d)
	})
}

func (h *IncidentHandler) Review(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	review := service.RemediationReview{
		Decision: model.ApprovalStatus(req.Decision),
		Comments: req.Comments,
		Reviewer: req.Reviewer,
	}

	h.write(c, req.WriteRequest, func(ctx context.Context, p service.UpdateParams) (*model.Incident, error) {
		return h.incidents.ReviewRemediation(ctx, p, review)
	})
}

type writeFunc func(ctx context.Context, p service.UpdateParams) (*model.Incident, error)

// write resolves the addressed occurrence and runs fn against it.
func (h *IncidentHandler) write(c *gin.Context, req dto.WriteRequest, fn writeFunc) {
	ctx := c.Request.Context()

	key, err := h.resolveKey(ctx, c.Param("trackingId"), req.OccurredAt)
	if err != nil {
		writeError(c, err)
		return
	}

	incident, err := fn(ctx, service.UpdateParams{
		Key:                key,
		ExpectedGeneration: *req.ExpectedGeneration,
		Actor:              c.GetHeader(middleware.ActorHeader),
		Detail:             req.Detail,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, incident)
}

func (h *IncidentHandler) resolveKey(ctx context.Context, trackingID string, occurredAt *time.Time) (model.IncidentKey, error) {
	if occurredAt != nil {
		return model.IncidentKey{TrackingID: trackingID, OccurredAt: *occurredAt}, nil
	}
	latest, err := h.incidents.GetLatest(ctx, trackingID)
	if err != nil {
		return model.IncidentKey{}, err
	}
	return latest.Key(), nil
}

func parseOccurredAt(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, model.InvalidArgumentf("occurredAt must be RFC 3339, got %q", raw)
	}
	return t, nil
}
