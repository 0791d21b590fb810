package material

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// RegisterRoutes sets up material endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/sections/:id/materials", handler.ListBySection)

	mentorOnly := middleware.RequireRoles(types.UserTypeMentor)
	router.POST("/materials", append(mentorOnly, handler.Create)...)
}
