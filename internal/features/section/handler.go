package section

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes section HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a section handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type createRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position"`
}

// ListByCourse returns all sections of a course in display order.
func (h *Handler) ListByCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid course ID", err)
		return
	}

	sections, err := ListByCourse(h.db.WithContext(c.Request.Context()), courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list sections", err)
		return
	}

	response.Success(c, http.StatusOK, sections, "", nil)
}

// Create adds a section to a course the caller owns.
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

	courseID := uuid.MustParse(req.CourseID)
	db := h.db.WithContext(c.Request.Context())

	crs, err := course.Get(db, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	if usr.UserType != types.UserTypeAdmin && crs.MentorID != usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
		return
	}

	sec, err := Create(db, courseID, req.Title, req.Position)
	if err != nil {
		if errors.Is(err, ErrTitleRequired) {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to create section", err)
		return
	}

	response.Created(c, sec, "Section created successfully")
}
