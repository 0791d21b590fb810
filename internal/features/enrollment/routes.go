package enrollment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up enrollment endpoints under /enrollments.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	enrollments := router.Group("/enrollments")
	{
		enrollments.POST("", append(authed, handler.Enroll)...)
		enrollments.GET("/mine", append(authed, handler.Mine)...)
	}
}
