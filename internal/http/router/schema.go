package router

import (
	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/handler"
)

func SchemaRouter(router *gin.RouterGroup, schemas *handler.SchemaHandler) {
	router.GET("", schemas.List)
	router.GET("/:kind", schemas.Get)
	router.POST("/:kind/validate", schemas.Validate)
}
