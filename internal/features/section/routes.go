package section

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// RegisterRoutes sets up section endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/courses/:id/sections", handler.ListByCourse)

	mentorOnly := middleware.RequireRoles(types.UserTypeMentor)
	router.POST("/sections", append(mentorOnly, handler.Create)...)
}
