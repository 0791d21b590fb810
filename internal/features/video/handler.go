package video

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/internal/services/uploadprogress"
	"github.com/edumart/edumart-server-go/pkg/filestore"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Handler processes video HTTP requests.
type Handler struct {
	db             *gorm.DB
	logger         *slog.Logger
	store          *filestore.Store
	registry       uploadprogress.Registry
	maxUploadBytes int64
}

// NewHandler constructs a video handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, store *filestore.Store, registry uploadprogress.Registry, maxUploadMB int64) *Handler {
	return &Handler{
		db:             db,
		logger:         logger,
		store:          store,
		registry:       registry,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// Upload stores a lecture video from a multipart form. The single-copy save
// means the video is playable immediately, so it lands in completed state
// with one rendition.
func (h *Handler) Upload(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "video file is required", err)
		return
	}

	if fileHeader.Size == 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, ErrEmptyUpload.Error(), nil)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.ErrorWithLog(h.logger, c, http.StatusRequestEntityTooLarge, ErrUploadTooLarge.Error(), nil)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = fileHeader.Filename
	}

	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)
	if duration < 0 {
		duration = 0
	}

	uploadID := uuid.New().String()
	ctx := c.Request.Context()

	_ = h.registry.Set(ctx, usr.ID, uploadprogress.Entry{
		UploadID: uploadID,
		Filename: fileHeader.Filename,
		Progress: 0,
		Status:   uploadprogress.StatusUploading,
	})

	src, err := fileHeader.Open()
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to read upload", err)
		return
	}
	defer src.Close()

	storedName := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	rel, written, err := h.store.Save("videos", storedName, src)
	if err != nil {
		_ = h.registry.Set(ctx, usr.ID, uploadprogress.Entry{
			UploadID: uploadID,
			Filename: fileHeader.Filename,
			Progress: 0,
			Status:   uploadprogress.StatusFailed,
		})
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to store video", err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = defaultStreamContentType
	}

	vid := Video{
		UploaderID:   usr.ID,
		Title:        title,
		OriginalName: fileHeader.Filename,
		StoragePath:  rel,
		MimeType:     mimeType,
		Size:         written,
		Duration:     duration,
		Status:       types.VideoStatusCompleted,
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vid).Error; err != nil {
			return err
		}
		quality := VideoQuality{
			VideoID:     vid.ID,
			Quality:     "720p",
			Resolution:  "1280x720",
			Bitrate:     "2500k",
			StoragePath: rel,
			Size:        written,
		}
		return tx.Create(&quality).Error
	})
	if err != nil {
		_ = h.store.Remove(rel)
		_ = h.registry.Set(ctx, usr.ID, uploadprogress.Entry{
			UploadID: uploadID,
			Filename: fileHeader.Filename,
			Progress: 0,
			Status:   uploadprogress.StatusFailed,
		})
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to save video record", err)
		return
	}

	_ = h.registry.Set(ctx, usr.ID, uploadprogress.Entry{
		UploadID: uploadID,
		Filename: fileHeader.Filename,
		Progress: 100,
		Status:   uploadprogress.StatusCompleted,
	})

	vid, err = Get(h.db.WithContext(ctx), vid.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	response.Created(c, gin.H{"video": vid, "uploadId": uploadID}, "Video uploaded successfully")
}

// Status reports the processing state of a video along with the implied
// progress percentage.
func (h *Handler) Status(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid video ID", err)
		return
	}

	vid, err := Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	if usr.UserType != types.UserTypeAdmin && vid.UploaderID != usr.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied: Insufficient permissions.", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"videoId":   vid.ID,
		"status":    vid.Status,
		"progress":  ProgressForStatus(vid.Status),
		"duration":  vid.Duration,
		"error":     vid.ErrorMessage,
		"createdAt": vid.CreatedAt,
		"updatedAt": vid.UpdatedAt,
	}, "", nil)
}

type updateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Error  *string `json:"error"`
}

// UpdateStatus lets an admin force a video into a new processing state.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid video ID", err)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	vid, err := UpdateStatus(h.db.WithContext(c.Request.Context()), id, types.VideoStatus(req.Status), req.Error)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, ErrVideoNotFound):
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found", nil)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to update video status", err)
		}
		return
	}

	response.Success(c, http.StatusOK, vid, "Video status updated", nil)
}

type reportUploadProgressRequest struct {
	UploadID string `json:"uploadId" binding:"required"`
	Filename string `json:"filename"`
	Progress int    `json:"progress"`
	Status   string `json:"status" binding:"required"`
}

// ReportUploadProgress records a client-side upload progress snapshot.
func (h *Handler) ReportUploadProgress(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req reportUploadProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch req.Status {
	case uploadprogress.StatusUploading, uploadprogress.StatusProcessing,
		uploadprogress.StatusCompleted, uploadprogress.StatusFailed:
	default:
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid upload status", nil)
		return
	}

	progress := req.Progress
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	entry := uploadprogress.Entry{
		UploadID: req.UploadID,
		Filename: req.Filename,
		Progress: progress,
		Status:   req.Status,
	}
	if err := h.registry.Set(c.Request.Context(), usr.ID, entry); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to record upload progress", err)
		return
	}

	response.Success(c, http.StatusOK, entry, "", nil)
}

// ListUploadProgress returns all tracked uploads for the caller.
func (h *Handler) ListUploadProgress(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	entries, err := h.registry.ListForUser(c.Request.Context(), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list upload progress", err)
		return
	}

	response.Success(c, http.StatusOK, entries, "", nil)
}

// GetUploadProgress returns the snapshot for one upload.
func (h *Handler) GetUploadProgress(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	entry, found, err := h.registry.Get(c.Request.Context(), usr.ID, c.Param("uploadId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load upload progress", err)
		return
	}
	if !found {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Upload not found", nil)
		return
	}

	response.Success(c, http.StatusOK, entry, "", nil)
}

// ClearUploadProgress drops the snapshot for one upload.
func (h *Handler) ClearUploadProgress(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if err := h.registry.Clear(c.Request.Context(), usr.ID, c.Param("uploadId")); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to clear upload progress", err)
		return
	}

	response.Success(c, http.StatusOK, nil, "Upload progress cleared", nil)
}
