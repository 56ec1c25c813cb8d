package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/dto"
	"adr.app/ledger/internal/http/middleware"
	"adr.app/ledger/internal/service"
)

type SOPHandler struct {
	sops service.SOPService
}

func NewSOPHandler(sops service.SOPService) *SOPHandler {
	return &SOPHandler{sops: sops}
}

func (h *SOPHandler) List(c *gin.Context) {
	var q dto.ListSOPsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.sops.List(c.Request.Context(), service.SOPListParams{
		JobName:   q.JobName,
		AbendType: q.AbendType,
		Search:    q.Search,
		Cursor:    q.Cursor,
		Limit:     q.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SOPHandler) Get(c *gin.Context) {
	sop, err := h.sops.Get(c.Request.Context(), c.Param("sopId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sop)
}

func (h *SOPHandler) Create(c *gin.Context) {
	var req dto.CreateSOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	sop, err := h.sops.Create(c.Request.Context(), service.CreateSOPParams{
		Name:                  req.Name,
		JobName:               req.JobName,
		AbendType:             req.AbendType,
		SourceDocumentURL:     req.SourceDocumentURL,
		ProcessedDocumentURLs: req.ProcessedDocumentURLs,
		Actor:                 c.GetHeader(middleware.ActorHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sop)
}

func (h *SOPHandler) Update(c *gin.Context) {
	var req dto.UpdateSOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	sop, err := h.sops.Update(c.Request.Context(), service.UpdateSOPParams{
		SOPID:              c.Param("sopId"),
		ExpectedGeneration: *req.ExpectedGeneration,
		Actor:              c.GetHeader(middleware.ActorHeader),
	}, service.SOPUpdate{
		Name:                  req.Name,
		JobName:               req.JobName,
		AbendType:             req.AbendType,
		SourceDocumentURL:     req.SourceDocumentURL,
		ProcessedDocumentURLs: req.ProcessedDocumentURLs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sop)
}
