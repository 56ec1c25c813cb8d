package router

import (
	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/handler"
)

func IncidentRouter(router *gin.RouterGroup, incidents *handler.IncidentHandler, queries *handler.QueryHandler, audit *handler.AuditHandler) {
	router.POST("", incidents.Register)
	router.GET("", queries.List)
	router.GET("/filters", queries.Filters)
	router.GET("/stats", queries.Stats)

	router.GET("/:trackingId", incidents.Get)
	router.PATCH("/:trackingId", incidents.Update)
	router.GET("/:trackingId/transitions", incidents.Transitions)
	router.POST("/:trackingId/transitions", incidents.Transition)
	router.POST("/:trackingId/metrics", incidents.RecordPhaseDuration)
	router.POST("/:trackingId/review", incidents.Review)

	router.GET("/:trackingId/audit", audit.List)
	router.POST("/:trackingId/audit", audit.Note)
}
