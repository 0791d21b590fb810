package progress

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
)

// RegisterRoutes sets up watch progress endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.POST("/videos/:id/progress", middleware.Authenticate(), handler.ReportVideoPosition)
	router.GET("/materials/:id/progress", middleware.Authenticate(), handler.GetMaterialProgress)
	router.POST("/materials/:id/complete", middleware.Authenticate(), handler.CompleteMaterial)
}
