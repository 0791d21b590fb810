package enrollment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled in this course")
	ErrOwnCourse          = errors.New("mentors cannot enroll in their own course")
)

// Mentor keeps 70% of the sale, the platform takes the rest.
const mentorRevenueShare = 0.70

// Enrollment links a student to a course and tracks overall progress.
type Enrollment struct {
	types.BaseModel

	UserID         uuid.UUID              `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollments_user_course" json:"userId"`
	CourseID       uuid.UUID              `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_enrollments_user_course" json:"courseId"`
	Status         types.EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Progress       float64                `gorm:"type:decimal(5,2);not null;default:0" json:"progress"`
	AmountPaid     types.Money            `gorm:"type:decimal(10,2);not null;default:0;column:amount_paid" json:"amountPaid"`
	MentorShare    types.Money            `gorm:"type:decimal(10,2);not null;default:0;column:mentor_share" json:"mentorShare"`
	PlatformShare  types.Money            `gorm:"type:decimal(10,2);not null;default:0;column:platform_share" json:"platformShare"`
	LastAccessedAt *time.Time             `gorm:"column:last_accessed_at" json:"lastAccessedAt,omitempty"`
	CompletedAt    *time.Time             `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// Enroll creates an enrollment, splitting the paid amount between the
// mentor and the platform.
func Enroll(db *gorm.DB, userID, courseID uuid.UUID, amountPaid types.Money) (Enrollment, error) {
	var existing Enrollment
	err := db.First(&existing, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	}
	if err != gorm.ErrRecordNotFound {
		return Enrollment{}, err
	}

	mentorShare := amountPaid.Mul(mentorRevenueShare)
	enr := Enrollment{
		UserID:        userID,
		CourseID:      courseID,
		Status:        types.EnrollmentStatusActive,
		AmountPaid:    amountPaid,
		MentorShare:   mentorShare,
		PlatformShare: amountPaid.Sub(mentorShare),
	}

	if err := db.Create(&enr).Error; err != nil {
		return Enrollment{}, err
	}

	return enr, nil
}

// Get retrieves an enrollment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Enrollment, error) {
	var enr Enrollment
	err := db.First(&enr, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return enr, ErrEnrollmentNotFound
		}
		return enr, err
	}
	return enr, nil
}

// GetByUserAndCourse retrieves the enrollment linking a user to a course.
func GetByUserAndCourse(db *gorm.DB, userID, courseID uuid.UUID) (Enrollment, error) {
	var enr Enrollment
	err := db.First(&enr, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return enr, ErrEnrollmentNotFound
		}
		return enr, err
	}
	return enr, nil
}

// IsEnrolled reports whether a user holds a non-cancelled enrollment in a course.
func IsEnrolled(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status <> ?", userID, courseID, types.EnrollmentStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns all of a user's enrollments, most recent first.
func ListByUser(db *gorm.DB, userID uuid.UUID) ([]Enrollment, error) {
	var enrollments []Enrollment
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&enrollments).Error
	return enrollments, err
}
