package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/certificate"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/pkg/types"
)

var ErrProgressNotFound = errors.New("progress record not found")

// A material counts as completed once the playhead passes 90% of the
// video's duration.
const completionThreshold = 0.9

// Progress tracks one student's consumption of one material.
type Progress struct {
	types.BaseModel

	EnrollmentID    uuid.UUID  `gorm:"type:uuid;not null;column:enrollment_id;uniqueIndex:idx_progress_enrollment_material" json:"enrollmentId"`
	MaterialID      uuid.UUID  `gorm:"type:uuid;not null;column:material_id;uniqueIndex:idx_progress_enrollment_material" json:"materialId"`
	WatchedDuration float64    `gorm:"type:decimal(10,2);not null;default:0;column:watched_duration" json:"watchedDuration"`
	LastPosition    float64    `gorm:"type:decimal(10,2);not null;default:0;column:last_position" json:"lastPosition"`
	IsCompleted     bool       `gorm:"type:boolean;not null;default:false;column:is_completed" json:"isCompleted"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// TableName overrides the default table name.
func (Progress) TableName() string { return "progress" }

// ReportPosition upserts the watch record for a material and recomputes the
// enrollment's course progress, all in one transaction.
//
// The watched duration mirrors the reported position rather than
// accumulating, so seeking backwards lowers it. Completion is sticky: once a
// material is completed, later reports never revert it, and the completion
// timestamp is only written on the transition.
func ReportPosition(db *gorm.DB, enrollmentID, materialID uuid.UUID, position, duration float64) (Progress, error) {
	if position < 0 {
		position = 0
	}

	var rec Progress
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&rec, "enrollment_id = ? AND material_id = ?", enrollmentID, materialID).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == gorm.ErrRecordNotFound {
			rec = Progress{EnrollmentID: enrollmentID, MaterialID: materialID}
		}

		rec.WatchedDuration = position
		rec.LastPosition = position

		if !rec.IsCompleted && duration > 0 && position >= completionThreshold*duration {
			rec.IsCompleted = true
			now := time.Now().UTC()
			rec.CompletedAt = &now
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		_, err = Recompute(tx, enrollmentID)
		return err
	})
	if err != nil {
		return Progress{}, err
	}

	return rec, nil
}

// MarkComplete force-completes a material regardless of watch position,
// used for documents and links that have no playhead.
func MarkComplete(db *gorm.DB, enrollmentID, materialID uuid.UUID) (Progress, error) {
	var rec Progress
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&rec, "enrollment_id = ? AND material_id = ?", enrollmentID, materialID).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == gorm.ErrRecordNotFound {
			rec = Progress{EnrollmentID: enrollmentID, MaterialID: materialID}
		}

		if !rec.IsCompleted {
			rec.IsCompleted = true
			now := time.Now().UTC()
			rec.CompletedAt = &now
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		_, err = Recompute(tx, enrollmentID)
		return err
	})
	if err != nil {
		return Progress{}, err
	}

	return rec, nil
}

// Get retrieves the watch record for one material under an enrollment.
func Get(db *gorm.DB, enrollmentID, materialID uuid.UUID) (Progress, error) {
	var rec Progress
	err := db.First(&rec, "enrollment_id = ? AND material_id = ?", enrollmentID, materialID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return rec, ErrProgressNotFound
		}
		return rec, err
	}
	return rec, nil
}

// Recompute rederives an enrollment's course progress from its per-material
// records and stamps the enrollment's last access time. An empty course
// counts as zero percent. Hitting one hundred percent completes the
// enrollment and issues a certificate.
func Recompute(db *gorm.DB, enrollmentID uuid.UUID) (float64, error) {
	enr, err := enrollment.Get(db, enrollmentID)
	if err != nil {
		return 0, err
	}

	total, err := material.CountByCourse(db, enr.CourseID)
	if err != nil {
		return 0, err
	}

	var completed int64
	err = db.Model(&Progress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	pct := 0.0
	if total > 0 {
		pct = 100 * float64(completed) / float64(total)
	}

	updates := map[string]interface{}{
		"progress":         pct,
		"last_accessed_at": time.Now().UTC(),
	}
	if pct >= 100 && enr.Status == types.EnrollmentStatusActive {
		updates["status"] = types.EnrollmentStatusCompleted
		if enr.CompletedAt == nil {
			now := time.Now().UTC()
			updates["completed_at"] = now
		}
	}

	if err := db.Model(&enrollment.Enrollment{}).Where("id = ?", enrollmentID).Updates(updates).Error; err != nil {
		return 0, err
	}

	if pct >= 100 {
		if _, err := certificate.IssueForEnrollment(db, enrollmentID); err != nil {
			return 0, err
		}
	}

	return pct, nil
}
