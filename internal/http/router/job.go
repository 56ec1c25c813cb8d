package router

import (
	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/handler"
)

func JobRouter(router *gin.RouterGroup, queries *handler.QueryHandler) {
	router.GET("/:jobName/trends", queries.Trends)
}
