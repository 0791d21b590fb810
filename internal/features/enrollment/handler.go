package enrollment

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
)

// Handler processes enrollment HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type enrollRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
}

// Enroll registers the authenticated user in a published course.
func (h *Handler) Enroll(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	crs, err := course.Get(db, uuid.MustParse(req.CourseID))
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	if !crs.Published {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found", nil)
		return
	}

	if crs.MentorID == usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, ErrOwnCourse.Error(), nil)
		return
	}

	enr, err := Enroll(db, usr.ID, crs.ID, crs.Price)
	if err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			response.ErrorWithLog(h.logger, c, http.StatusConflict, err.Error(), nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to enroll", err)
		return
	}

	response.Created(c, enr, "Enrolled successfully")
}

// Mine returns the authenticated user's enrollments.
func (h *Handler) Mine(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	enrollments, err := ListByUser(h.db.WithContext(c.Request.Context()), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, enrollments, "", nil)
}
