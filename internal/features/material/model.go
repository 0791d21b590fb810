package material

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

var (
	ErrMaterialNotFound = errors.New("material not found")
	ErrTitleRequired    = errors.New("material title is required")
	ErrInvalidType      = errors.New("invalid material type")
)

// Material is a single learning item inside a section. CourseID is
// denormalized so access checks avoid a join through sections.
type Material struct {
	types.BaseModel

	SectionID uuid.UUID          `gorm:"type:uuid;not null;column:section_id;index" json:"sectionId"`
	CourseID  uuid.UUID          `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title     string             `gorm:"type:varchar(200);not null" json:"title"`
	Type      types.MaterialType `gorm:"type:varchar(20);not null" json:"type"`
	VideoID   *uuid.UUID         `gorm:"type:uuid;column:video_id" json:"videoId,omitempty"`
	Content   string             `gorm:"type:text" json:"content,omitempty"`
	IsFree    bool               `gorm:"type:boolean;not null;default:false;column:is_free" json:"isFree"`
	Position  int                `gorm:"type:integer;not null;default:0" json:"position"`
}

// TableName overrides the default table name.
func (Material) TableName() string { return "materials" }

// CreateInput carries data for creating a material.
type CreateInput struct {
	SectionID uuid.UUID
	CourseID  uuid.UUID
	Title     string
	Type      types.MaterialType
	VideoID   *uuid.UUID
	Content   string
	IsFree    bool
	Position  int
}

// Create inserts a new material.
func Create(db *gorm.DB, input CreateInput) (Material, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Material{}, ErrTitleRequired
	}

	switch input.Type {
	case types.MaterialTypeVideo, types.MaterialTypeDocument, types.MaterialTypeLink:
	default:
		return Material{}, ErrInvalidType
	}

	mat := Material{
		SectionID: input.SectionID,
		CourseID:  input.CourseID,
		Title:     title,
		Type:      input.Type,
		VideoID:   input.VideoID,
		Content:   input.Content,
		IsFree:    input.IsFree,
		Position:  input.Position,
	}

	if err := db.Create(&mat).Error; err != nil {
		return Material{}, err
	}

	return mat, nil
}

// Get retrieves a material by ID.
func Get(db *gorm.DB, id uuid.UUID) (Material, error) {
	var mat Material
	err := db.First(&mat, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return mat, ErrMaterialNotFound
		}
		return mat, err
	}
	return mat, nil
}

// GetByVideo retrieves the material that references a given video.
func GetByVideo(db *gorm.DB, videoID uuid.UUID) (Material, error) {
	var mat Material
	err := db.First(&mat, "video_id = ?", videoID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return mat, ErrMaterialNotFound
		}
		return mat, err
	}
	return mat, nil
}

// ListBySection returns a section's materials in display order.
func ListBySection(db *gorm.DB, sectionID uuid.UUID) ([]Material, error) {
	var materials []Material
	err := db.Where("section_id = ?", sectionID).Order("position ASC, created_at ASC").Find(&materials).Error
	return materials, err
}

// CountByCourse returns the total number of materials in a course.
func CountByCourse(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Material{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
