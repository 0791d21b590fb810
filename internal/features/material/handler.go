package material

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/section"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes material HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a material handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type createRequest struct {
	SectionID string  `json:"sectionId" binding:"required,uuid"`
	Title     string  `json:"title" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	VideoID   *string `json:"videoId"`
	Content   string  `json:"content"`
	IsFree    bool    `json:"isFree"`
	Position  int     `json:"position"`
}

// ListBySection returns the materials of a section in display order.
func (h *Handler) ListBySection(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid section ID", err)
		return
	}

	materials, err := ListBySection(h.db.WithContext(c.Request.Context()), sectionID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list materials", err)
		return
	}

	response.Success(c, http.StatusOK, materials, "", nil)
}

// Create adds a material to a section of a course the caller owns.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	sec, err := section.Get(db, uuid.MustParse(req.SectionID))
	if err != nil {
		if errors.Is(err, section.ErrSectionNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Section not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load section", err)
		return
	}

	crs, err := course.Get(db, sec.CourseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	if usr.UserType != types.UserTypeAdmin && crs.MentorID != usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
		return
	}

	input := CreateInput{
		SectionID: sec.ID,
		CourseID:  sec.CourseID,
		Title:     req.Title,
		Type:      types.MaterialType(req.Type),
		Content:   req.Content,
		IsFree:    req.IsFree,
		Position:  req.Position,
	}
	if req.VideoID != nil {
		videoID, err := uuid.Parse(*req.VideoID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid video ID", err)
			return
		}
		input.VideoID = &videoID
	}

	mat, err := Create(db, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrInvalidType):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to create material", err)
		}
		return
	}

	response.Created(c, mat, "Material created successfully")
}
