package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/dto"
	"adr.app/ledger/internal/http/middleware"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/service"
)

type AuditHandler struct {
	queries service.QueryService
	audit   service.AuditService
}

func NewAuditHandler(queries service.QueryService, audit service.AuditService) *AuditHandler {
	return &AuditHandler{queries: queries, audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	var q dto.ListAuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	params := service.AuditListParams{
		TrackingID: c.Param("trackingId"),
		Level:      model.AuditLevel(q.Level),
		Action:     model.AuditAction(q.Action),
		Cursor:     q.Cursor,
		Limit:      q.Limit,
	}
	if params.Level != "" && !params.Level.Valid() {
		writeError(c, model.InvalidArgumentf("unknown audit level %q", q.Level))
		return
	}
	if params.Action != "" && !params.Action.Valid() {
		writeError(c, model.InvalidArgumentf("unknown audit action %q", q.Action))
		return
	}

	page, err := h.queries.AuditTrail(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AuditHandler) Note(c *gin.Context) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	params := service.NoteParams{
		TrackingID: c.Param("trackingId"),
		Level:      model.AuditLevel(req.Level),
		Actor:      c.GetHeader(middleware.ActorHeader),
		Detail:     req.Detail,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	entry, err := h.audit.Note(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

