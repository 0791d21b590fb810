package course

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// RegisterRoutes sets up course endpoints under /courses.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	courses := router.Group("/courses")
	{
		courses.GET("", handler.List)
		courses.GET("/:id", handler.Get)

		mentorOnly := middleware.RequireRoles(types.UserTypeMentor)
		courses.GET("/mine", append(mentorOnly, handler.Mine)...)
		courses.POST("", append(mentorOnly, handler.Create)...)
		courses.PATCH("/:id", append(mentorOnly, handler.Update)...)
		courses.DELETE("/:id", append(mentorOnly, handler.Delete)...)
	}
}
