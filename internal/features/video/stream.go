package video

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/internal/services/accesspolicy"
	"github.com/edumart/edumart-server-go/pkg/apperrors"
	"github.com/edumart/edumart-server-go/pkg/filestore"
	"github.com/edumart/edumart-server-go/pkg/httprange"
	"github.com/edumart/edumart-server-go/pkg/metrics"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

const defaultStreamContentType = "video/mp4"

// Stream serves a video file honoring single-range Range requests. The
// route accepts anonymous callers so free preview materials play without
// credentials; everything else goes through the access policy.
func (h *Handler) Stream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid video ID", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	vid, err := Get(db, id)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	if vid.Status != types.VideoStatusCompleted {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found", nil)
		return
	}

	viewer := accesspolicy.Viewer{}
	if usr, ok := middleware.GetUserFromContext(c); ok {
		viewer = accesspolicy.Viewer{ID: usr.ID, UserType: usr.UserType}
	}

	allowed, err := h.authorizeStream(db, viewer, vid)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to check video access", err)
		return
	}
	if !allowed {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You do not have access to this video", nil)
		return
	}

	// An unknown quality silently falls back to the original upload so old
	// player URLs keep working after renditions are re-encoded.
	storagePath := vid.QualityPath(c.Query("quality"))

	contentType := vid.MimeType
	if contentType == "" {
		contentType = defaultStreamContentType
	}

	size, err := h.store.Size(storagePath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video file not found", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to read video file", err)
		return
	}

	byteRange, err := httprange.Parse(c.GetHeader("Range"), size)
	if err != nil {
		c.Header("Content-Range", httprange.ContentRangeUnsatisfied(size))
		_ = c.Error(apperrors.New("Requested range not satisfiable",
			http.StatusRequestedRangeNotSatisfiable, apperrors.ErrInvalidRange, err))
		c.Abort()
		return
	}

	c.Header("Accept-Ranges", "bytes")

	if byteRange == nil {
		data, err := h.store.ReadAll(storagePath)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to read video file", err)
			return
		}

		metrics.RecordVideoBytesServed("full", int64(len(data)))
		c.Data(http.StatusOK, contentType, data)
		return
	}

	data, err := h.store.ReadRange(storagePath, byteRange.Start, byteRange.End)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to read video file", err)
		return
	}

	c.Header("Content-Range", byteRange.ContentRange(size))
	metrics.RecordVideoBytesServed("range", int64(len(data)))
	c.Data(http.StatusPartialContent, contentType, data)
}

// authorizeStream applies the material access policy. Videos not yet linked
// to any material are only visible to their uploader and admins.
func (h *Handler) authorizeStream(db *gorm.DB, viewer accesspolicy.Viewer, vid Video) (bool, error) {
	mat, err := material.GetByVideo(db, vid.ID)
	if err != nil {
		if errors.Is(err, material.ErrMaterialNotFound) {
			if viewer.Anonymous() {
				return false, nil
			}
			return viewer.UserType == types.UserTypeAdmin || viewer.ID == vid.UploaderID, nil
		}
		return false, err
	}

	return accesspolicy.CanView(db, viewer, mat)
}
