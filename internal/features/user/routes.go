package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up user endpoints under /users.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", append(authed, handler.Me)...)
	}
}
