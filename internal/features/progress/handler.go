package progress

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/internal/features/video"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
)

// Handler processes watch progress HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a progress handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type reportPositionRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// ReportVideoPosition records the playhead position for a video the caller
// is enrolled to watch, updating course progress along the way. Players may
// send the duration they observed; it takes precedence over the stored one,
// which is zero for uploads that never declared a duration.
func (h *Handler) ReportVideoPosition(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid video ID", err)
		return
	}

	var req reportPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	vid, err := video.Get(db, videoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	mat, err := material.GetByVideo(db, vid.ID)
	if err != nil {
		if errors.Is(err, material.ErrMaterialNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Material not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load material", err)
		return
	}

	enr, ok := h.requireEnrollment(c, db, usr.ID, mat.CourseID)
	if !ok {
		return
	}

	duration := vid.Duration
	if req.Duration > 0 {
		duration = req.Duration
	}

	rec, err := ReportPosition(db, enr.ID, mat.ID, req.Position, duration)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to record progress", err)
		return
	}

	response.Success(c, http.StatusOK, rec, "", nil)
}

// GetMaterialProgress returns the caller's watch record for a material along
// with their enrollment state for the owning course.
func (h *Handler) GetMaterialProgress(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	mat, ok := h.loadMaterial(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	enr, err := enrollment.GetByUserAndCourse(db, usr.ID, mat.CourseID)
	if err != nil {
		if errors.Is(err, enrollment.ErrEnrollmentNotFound) {
			response.Success(c, http.StatusOK, gin.H{
				"progress":   nil,
				"isEnrolled": false,
			}, "", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load enrollment", err)
		return
	}

	rec, err := Get(db, enr.ID, mat.ID)
	if err != nil {
		if errors.Is(err, ErrProgressNotFound) {
			response.Success(c, http.StatusOK, gin.H{
				"progress":   nil,
				"isEnrolled": true,
			}, "", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load progress", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"progress":   rec,
		"isEnrolled": true,
	}, "", nil)
}

// CompleteMaterial marks a non-video material as finished.
func (h *Handler) CompleteMaterial(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	mat, ok := h.loadMaterial(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	enr, ok := h.requireEnrollment(c, db, usr.ID, mat.CourseID)
	if !ok {
		return
	}

	rec, err := MarkComplete(db, enr.ID, mat.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to record completion", err)
		return
	}

	response.Success(c, http.StatusOK, rec, "Material marked as complete", nil)
}

func (h *Handler) loadMaterial(c *gin.Context) (material.Material, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid material ID", err)
		return material.Material{}, false
	}

	mat, err := material.Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		if errors.Is(err, material.ErrMaterialNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Material not found", nil)
			return material.Material{}, false
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load material", err)
		return material.Material{}, false
	}

	return mat, true
}

func (h *Handler) requireEnrollment(c *gin.Context, db *gorm.DB, userID, courseID uuid.UUID) (enrollment.Enrollment, bool) {
	enr, err := enrollment.GetByUserAndCourse(db, userID, courseID)
	if err != nil {
		if errors.Is(err, enrollment.ErrEnrollmentNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Enrollment not found", nil)
			return enrollment.Enrollment{}, false
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load enrollment", err)
		return enrollment.Enrollment{}, false
	}

	return enr, true
}
