package section

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrTitleRequired   = errors.New("section title is required")
)

// Section groups materials inside a course, ordered by Position.
type Section struct {
	types.BaseModel

	CourseID uuid.UUID `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title    string    `gorm:"type:varchar(200);not null" json:"title"`
	Position int       `gorm:"type:integer;not null;default:0" json:"position"`
}

// TableName overrides the default table name.
func (Section) TableName() string { return "sections" }

// Create inserts a new section for a course.
func Create(db *gorm.DB, courseID uuid.UUID, title string, position int) (Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Section{}, ErrTitleRequired
	}

	sec := Section{CourseID: courseID, Title: title, Position: position}
	if err := db.Create(&sec).Error; err != nil {
		return Section{}, err
	}

	return sec, nil
}

// Get retrieves a section by ID.
func Get(db *gorm.DB, id uuid.UUID) (Section, error) {
	var sec Section
	err := db.First(&sec, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return sec, ErrSectionNotFound
		}
		return sec, err
	}
	return sec, nil
}

// ListByCourse returns a course's sections in display order.
func ListByCourse(db *gorm.DB, courseID uuid.UUID) ([]Section, error) {
	var sections []Section
	err := db.Where("course_id = ?", courseID).Order("position ASC, created_at ASC").Find(&sections).Error
	return sections, err
}

// Delete removes a section by ID.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Section{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	return nil
}
