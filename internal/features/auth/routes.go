package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
	}
}
