package video

import (
	"github.com/gin-gonic/gin"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// RegisterRoutes sets up video endpoints under /videos.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	videos := router.Group("/videos")
	{
		// Anonymous callers reach the stream so free previews play
		// without credentials.
		videos.GET("/:id/stream", middleware.OptionalAuthenticate(), handler.Stream)

		videos.GET("/:id/status", middleware.Authenticate(), handler.Status)

		mentorOnly := middleware.RequireRoles(types.UserTypeMentor)
		videos.POST("/upload", append(mentorOnly, handler.Upload)...)

		videos.GET("/upload-progress", middleware.Authenticate(), handler.ListUploadProgress)
		videos.GET("/upload-progress/:uploadId", middleware.Authenticate(), handler.GetUploadProgress)
		videos.POST("/upload-progress", middleware.Authenticate(), handler.ReportUploadProgress)
		videos.DELETE("/upload-progress/:uploadId", middleware.Authenticate(), handler.ClearUploadProgress)

		adminOnly := middleware.RequireRoles(types.UserTypeAdmin)
		videos.PATCH("/:id/status", append(adminOnly, handler.UpdateStatus)...)
	}
}
