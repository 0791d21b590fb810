package video

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

// Video is an uploaded lecture video and its processing state.
type Video struct {
	types.BaseModel

	UploaderID    uuid.UUID         `gorm:"type:uuid;not null;column:uploader_id;index" json:"uploaderId"`
	Title         string            `gorm:"type:varchar(200);not null" json:"title"`
	OriginalName  string            `gorm:"type:varchar(255);not null;column:original_name" json:"originalName"`
	StoragePath   string            `gorm:"type:varchar(500);not null;column:storage_path" json:"-"`
	MimeType      string            `gorm:"type:varchar(100);not null;default:'video/mp4';column:mime_type" json:"mimeType"`
	ThumbnailPath *string           `gorm:"type:varchar(500);column:thumbnail_path" json:"-"`
	Size          int64             `gorm:"type:bigint;not null;default:0" json:"size"`
	Duration      float64           `gorm:"type:decimal(10,2);not null;default:0" json:"duration"`
	Status        types.VideoStatus `gorm:"type:varchar(20);not null;default:'uploading';index" json:"status"`
	ErrorMessage  *string           `gorm:"type:text;column:error_message" json:"error,omitempty"`
	Qualities     []VideoQuality    `gorm:"foreignKey:VideoID" json:"qualities,omitempty"`
}

// TableName overrides the default table name.
func (Video) TableName() string { return "videos" }

// QualityPath returns the storage path of the requested rendition, falling
// back to the original file when the rendition does not exist.
func (v Video) QualityPath(quality string) string {
	if quality != "" {
		for _, rendition := range v.Qualities {
			if rendition.Quality == quality {
				return rendition.StoragePath
			}
		}
	}
	return v.StoragePath
}

// VideoQuality is one rendition of a video.
type VideoQuality struct {
	types.BaseModel

	VideoID     uuid.UUID `gorm:"type:uuid;not null;column:video_id;index" json:"videoId"`
	Quality     string    `gorm:"type:varchar(10);not null" json:"quality"`
	Resolution  string    `gorm:"type:varchar(20)" json:"resolution"`
	Bitrate     string    `gorm:"type:varchar(20)" json:"bitrate"`
	StoragePath string    `gorm:"type:varchar(500);not null;column:storage_path" json:"-"`
	Size        int64     `gorm:"type:bigint;not null;default:0" json:"size"`
}

// TableName overrides the default table name.
func (VideoQuality) TableName() string { return "video_qualities" }

// Processing progress implied by each status, reported by the status
// endpoint so clients can render a bar without a separate tracker.
var statusProgress = map[types.VideoStatus]int{
	types.VideoStatusUploading:  25,
	types.VideoStatusProcessing: 50,
	types.VideoStatusCompleted:  100,
	types.VideoStatusFailed:     0,
}

// ProgressForStatus maps a processing status to a percentage.
func ProgressForStatus(status types.VideoStatus) int {
	return statusProgress[status]
}

// Get retrieves a video by ID with its qualities preloaded.
func Get(db *gorm.DB, id uuid.UUID) (Video, error) {
	var vid Video
	err := db.Preload("Qualities").First(&vid, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return vid, ErrVideoNotFound
		}
		return vid, err
	}
	return vid, nil
}

// UpdateStatus transitions a video to a new processing status. The error
// message only survives on failed videos; any other transition clears it.
func UpdateStatus(db *gorm.DB, id uuid.UUID, status types.VideoStatus, errorMessage *string) (Video, error) {
	switch status {
	case types.VideoStatusUploading, types.VideoStatusProcessing,
		types.VideoStatusCompleted, types.VideoStatusFailed:
	default:
		return Video{}, ErrInvalidStatus
	}

	updates := map[string]interface{}{"status": status, "error_message": nil}
	if status == types.VideoStatusFailed && errorMessage != nil {
		updates["error_message"] = errorMessage
	}

	result := db.Model(&Video{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return Video{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Video{}, ErrVideoNotFound
	}

	return Get(db, id)
}
