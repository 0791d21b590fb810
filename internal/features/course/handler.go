package course

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes course HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type createRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Tags        []string `json:"tags"`
}

type updateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Tags        []string `json:"tags"`
	Published   *bool    `json:"isPublished"`
}

// List returns published courses with pagination.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	courses, meta, err := List(h.db.WithContext(c.Request.Context()), params, c.Query("tag"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", meta)
}

// Get returns a single course by ID.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid course ID", err)
		return
	}

	crs, err := Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

// Mine returns all courses owned by the authenticated mentor, drafts included.
func (h *Handler) Mine(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	courses, err := ListByMentor(h.db.WithContext(c.Request.Context()), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", nil)
}

// Create adds a new course owned by the authenticated mentor.
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

	crs, err := Create(h.db.WithContext(c.Request.Context()), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		MentorID:    usr.ID,
		Price:       types.NewMoney(req.Price),
		Tags:        req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNegativePrice):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to create course", err)
		}
		return
	}

	response.Created(c, crs, "Course created successfully")
}

// Update modifies a course owned by the caller. Admins may update any course.
func (h *Handler) Update(c *gin.Context) {
	crs, ok := h.loadOwnedCourse(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Published:   req.Published,
	}
	if req.Price != nil {
		price := types.NewMoney(*req.Price)
		input.Price = &price
	}

	updated, err := Update(h.db.WithContext(c.Request.Context()), crs.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNegativePrice):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to update course", err)
		}
		return
	}

	response.Success(c, http.StatusOK, updated, "Course updated successfully", nil)
}

// Delete removes a course owned by the caller. Admins may delete any course.
func (h *Handler) Delete(c *gin.Context) {
	crs, ok := h.loadOwnedCourse(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), crs.ID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to delete course", err)
		return
	}

	response.Success(c, http.StatusOK, nil, "Course deleted successfully", nil)
}

func (h *Handler) loadOwnedCourse(c *gin.Context) (Course, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return Course{}, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid course ID", err)
		return Course{}, false
	}

	crs, err := Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found", nil)
			return Course{}, false
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return Course{}, false
	}

	if usr.UserType != types.UserTypeAdmin && crs.MentorID != usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
		return Course{}, false
	}

	return crs, true
}
