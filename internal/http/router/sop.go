package router

import (
	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/http/handler"
)

func SOPRouter(router *gin.RouterGroup, sops *handler.SOPHandler) {
	router.POST("", sops.Create)
	router.GET("", sops.List)
	router.GET("/:sopId", sops.Get)
	router.PATCH("/:sopId", sops.Update)
}
