package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/handler"
	"adr.app/ledger/internal/http/middleware"
	"adr.app/ledger/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if cfg.TraceHeaderName != "" {
		v1.Use(middleware.TraceHeader(cfg.TraceHeaderName))
	}
	{
		incidentHandler := handler.NewIncidentHandler(services.Incidents())
		queryHandler := handler.NewQueryHandler(services.Queries())
		auditHandler := handler.NewAuditHandler(services.Queries(), services.Audit())
		IncidentRouter(v1.Group("/incidents"), incidentHandler, queryHandler, auditHandler)

		JobRouter(v1.Group("/jobs"), queryHandler)
		SchemaRouter(v1.Group("/schemas"), handler.NewSchemaHandler())
		SOPRouter(v1.Group("/sops"), handler.NewSOPHandler(services.SOPs()))
	}
}
