package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/dto"
	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/pagination"
	"adr.app/ledger/internal/service"
)

type QueryHandler struct {
	queries service.QueryService
}

func NewQueryHandler(queries service.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

func (h *QueryHandler) List(c *gin.Context) {
	var q dto.ListIncidentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	params := service.ListParams{
		DomainArea:   q.DomainArea,
		JobName:      q.JobName,
		IncidentType: q.IncidentType,
		Date:         q.Date,
		From:         q.From,
		Through:      q.Through,
		Search:       q.Search,
		Cursor:       q.Cursor,
		Limit:        q.Limit,
	}
	var err error
	if q.Status != "" {
		if params.Status, err = model.ParseStatus(q.Status); err != nil {
			writeError(c, err)
			return
		}
	}
	if q.Severity != "" {
		if params.Severity, err = model.ParseSeverity(q.Severity); err != nil {
			writeError(c, err)
			return
		}
	}
	if params.Order, err = pagination.ParseOrder(q.Order); err != nil {
		writeError(c, err)
		return
	}

	page, err := h.queries.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *QueryHandler) Filters(c *gin.Context) {
	catalog, err := h.queries.Filters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h *QueryHandler) Stats(c *gin.Context) {
	var q dto.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	stats, err := h.queries.DayStats(c.Request.Context(), q.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *QueryHandler) Trends(c *gin.Context) {
	var q dto.TrendsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	trends, err := h.queries.JobTrends(c.Request.Context(), c.Param("jobName"), q.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}
