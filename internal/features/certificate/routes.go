package certificate

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
)

// RegisterRoutes sets up certificate endpoints under /certificates.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	certificates := router.Group("/certificates")
	{
		certificates.GET("/verify", handler.Verify)
		certificates.GET("/mine", middleware.Authenticate(), handler.Mine)
	}
}
