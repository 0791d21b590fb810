package course

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Course is a published learning product owned by a mentor.
type Course struct {
	types.BaseModel

	Title       string      `gorm:"type:varchar(200);not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	MentorID    uuid.UUID   `gorm:"type:uuid;not null;column:mentor_id;index" json:"mentorId"`
	Price       types.Money `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Tags        []string    `gorm:"serializer:json;type:text" json:"tags"`
	Published   bool        `gorm:"type:boolean;not null;default:false;column:is_published;index" json:"isPublished"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// CreateInput carries data for creating a course.
type CreateInput struct {
	Title       string
	Description string
	MentorID    uuid.UUID
	Price       types.Money
	Tags        []string
}

// UpdateInput carries partial updates for a course. Nil fields are untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *types.Money
	Tags        []string
	Published   *bool
}

// Create inserts a new course.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Course{}, ErrTitleRequired
	}

	if input.Price.LessThan(types.NewMoney(0)) {
		return Course{}, ErrNegativePrice
	}

	crs := Course{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		MentorID:    input.MentorID,
		Price:       input.Price,
		Tags:        input.Tags,
	}

	if err := db.Create(&crs).Error; err != nil {
		return Course{}, err
	}

	return crs, nil
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	err := db.First(&crs, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// List returns published courses plus pagination metadata. An optional tag
// filter narrows the result set.
func List(db *gorm.DB, params pagination.Params, tag string) ([]Course, pagination.Metadata, error) {
	query := db.Model(&Course{}).Where("is_published = ?", true)
	if tag != "" {
		// Tags are stored as a JSON array, so match the quoted element.
		query = query.Where("tags LIKE ?", `%"`+tag+`"%`)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Metadata{}, err
	}

	var courses []Course
	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Skip).
		Find(&courses).Error
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	return courses, pagination.MetadataFrom(total, params), nil
}

// ListByMentor returns all courses owned by a mentor, drafts included.
func ListByMentor(db *gorm.DB, mentorID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.Where("mentor_id = ?", mentorID).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// Update applies a partial update to an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	crs, err := Get(db, id)
	if err != nil {
		return Course{}, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return Course{}, ErrTitleRequired
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.LessThan(types.NewMoney(0)) {
			return Course{}, ErrNegativePrice
		}
		updates["price"] = *input.Price
	}
	if input.Tags != nil {
		updates["tags"] = input.Tags
	}
	if input.Published != nil {
		updates["is_published"] = *input.Published
	}

	if len(updates) == 0 {
		return crs, nil
	}

	if err := db.Model(&crs).Updates(updates).Error; err != nil {
		return Course{}, err
	}

	return Get(db, id)
}

// Delete removes a course by ID.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
