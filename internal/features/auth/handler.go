package auth

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/user"
	"github.com/edumart/edumart-server-go/internal/utils/jwt"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{db: db, cfg: cfg, logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	UserType string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type authPayload struct {
	User   user.User     `json:"user"`
	Tokens jwt.TokenPair `json:"tokens"`
}

// Register creates a new student or mentor account and issues tokens.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userType := types.UserTypeStudent
	switch req.UserType {
	case "", string(types.UserTypeStudent):
	case string(types.UserTypeMentor):
		userType = types.UserTypeMentor
	default:
		// Admin accounts are provisioned out of band, never via register.
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "userType must be student or mentor", nil)
		return
	}

	usr, err := user.Create(h.db.WithContext(c.Request.Context()), user.CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		UserType: userType,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			response.ErrorWithLog(h.logger, c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, user.ErrEmailRequired),
			errors.Is(err, user.ErrNameRequired),
			errors.Is(err, user.ErrPasswordTooShort):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to create user", err)
		}
		return
	}

	tokens, err := h.issueTokens(&usr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to issue tokens", err)
		return
	}

	response.Created(c, authPayload{User: usr, Tokens: tokens}, "Account created successfully")
}

// Login verifies credentials and issues a fresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	usr, err := user.GetByEmail(h.db.WithContext(c.Request.Context()), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to look up user", err)
		return
	}

	if !usr.Active {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "User account is deactivated", nil)
		return
	}

	if !usr.CheckPassword(req.Password) {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	tokens, err := h.issueTokens(&usr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to issue tokens", err)
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: usr, Tokens: tokens}, "Logged in successfully", nil)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	claims, err := jwt.VerifyToken(req.RefreshToken, h.cfg.JWTRefreshSecret)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	var usr user.User
	if err := h.db.WithContext(c.Request.Context()).First(&usr, "id = ?", claims.UserID).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != req.RefreshToken {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Refresh token has been revoked", nil)
		return
	}

	tokens, err := h.issueTokens(&usr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to issue tokens", err)
		return
	}

	response.Success(c, http.StatusOK, tokens, "Token refreshed", nil)
}

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

func (h *Handler) issueTokens(usr *user.User) (jwt.TokenPair, error) {
	access, err := jwt.GenerateAccessToken(usr.ID, h.cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		return jwt.TokenPair{}, err
	}

	refresh, err := jwt.GenerateRefreshToken(usr.ID, h.cfg.JWTRefreshSecret, refreshTokenTTL)
	if err != nil {
		return jwt.TokenPair{}, err
	}

	// Store the refresh token so it can be revoked server side.
	if err := h.db.Model(usr).Update("refresh_token", refresh).Error; err != nil {
		return jwt.TokenPair{}, err
	}

	return jwt.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
