package middleware

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/utils/jwt"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// User represents the authenticated user in middleware context
type User struct {
	ID        uuid.UUID      `gorm:"column:id;primaryKey"`
	Email     string         `gorm:"column:email"`
	FullName  string         `gorm:"column:full_name"`
	UserType  types.UserType `gorm:"column:user_type"`
	Active    bool           `gorm:"column:is_active"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Global instance to be initialized once at startup
var global *AuthMiddleware

// AuthMiddleware holds dependencies for authentication middleware
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
	logger    *slog.Logger
}

// Initialize sets up the global middleware instance (call once at startup)
func Initialize(db *gorm.DB, jwtSecret string, logger *slog.Logger) {
	global = &AuthMiddleware{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Authenticate validates JWT tokens and loads user data into context.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := global.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// OptionalAuthenticate loads the user when a bearer token is present but lets
// anonymous requests through. Used by the stream endpoint so free preview
// materials stay reachable without credentials.
func OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwt.VerifyToken(token, global.jwtSecret)
		if err != nil || claims.UserID == uuid.Nil {
			// A bad token on an optional route degrades to anonymous access.
			c.Next()
			return
		}

		var usr User
		if err := global.db.WithContext(c.Request.Context()).First(&usr, "id = ?", claims.UserID).Error; err != nil {
			c.Next()
			return
		}

		// Deactivated accounts degrade to anonymous too, so they keep
		// whatever the public can see and nothing more.
		if !usr.Active {
			c.Next()
			return
		}

		c.Set("user", &usr)
		c.Set("userId", usr.ID)
		c.Next()
	}
}

// RequireRoles authenticates and authorizes by role. Admin always has access.
func RequireRoles(roles ...types.UserType) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		Authenticate(),
		authorizeRoles(roles...),
	}
}

func authorizeRoles(roles ...types.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := GetUserFromContext(c)
		if !ok {
			response.ErrorWithLog(global.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}

		if usr.UserType == types.UserTypeAdmin {
			c.Next()
			return
		}

		for _, role := range roles {
			if usr.UserType == role {
				c.Next()
				return
			}
		}

		response.ErrorWithLog(global.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
		c.Abort()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*User); ok && usr != nil {
		return usr, true
	}

	return nil, false
}

func (m *AuthMiddleware) ensureAuthenticated(c *gin.Context) (*User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, m.jwtSecret)
	if err != nil {
		switch err {
		case jwt.ErrExpiredToken:
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Token expired", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token", err)
		}
		c.Abort()
		return nil, false
	}

	if claims.UserID == uuid.Nil {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token payload", nil)
		c.Abort()
		return nil, false
	}

	var usr User
	if err := m.db.WithContext(c.Request.Context()).First(&usr, "id = ?", claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.ErrorWithLog(m.logger, c, http.StatusNotFound, "User not found", err)
		} else {
			response.ErrorWithLog(m.logger, c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		c.Abort()
		return nil, false
	}

	if !usr.Active {
		response.ErrorWithLog(m.logger, c, http.StatusForbidden, "User account is deactivated", nil)
		c.Abort()
		return nil, false
	}

	usrCopy := usr
	c.Set("user", &usrCopy)
	c.Set("userId", usr.ID)
	return &usrCopy, true
}
