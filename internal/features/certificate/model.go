package certificate

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

var ErrCertificateNotFound = errors.New("certificate not found")

// Certificate proves a student finished every material in a course.
type Certificate struct {
	types.BaseModel

	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;column:enrollment_id;uniqueIndex" json:"enrollmentId"`
	Number       string    `gorm:"type:varchar(40);not null;uniqueIndex" json:"number"`
	IssuedAt     time.Time `gorm:"not null;column:issued_at" json:"issuedAt"`
}

// TableName overrides the default table name.
func (Certificate) TableName() string { return "certificates" }

func newNumber() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "EDU-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// IssueForEnrollment creates a certificate for a completed enrollment. A
// second call for the same enrollment returns the existing certificate.
func IssueForEnrollment(db *gorm.DB, enrollmentID uuid.UUID) (Certificate, error) {
	var existing Certificate
	err := db.First(&existing, "enrollment_id = ?", enrollmentID).Error
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return Certificate{}, err
	}

	number, err := newNumber()
	if err != nil {
		return Certificate{}, fmt.Errorf("generate certificate number: %w", err)
	}

	cert := Certificate{
		EnrollmentID: enrollmentID,
		Number:       number,
		IssuedAt:     time.Now().UTC(),
	}

	if err := db.Create(&cert).Error; err != nil {
		return Certificate{}, err
	}

	return cert, nil
}

// GetByNumber retrieves a certificate by its public number.
func GetByNumber(db *gorm.DB, number string) (Certificate, error) {
	var cert Certificate
	err := db.First(&cert, "number = ?", strings.ToUpper(strings.TrimSpace(number))).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return cert, ErrCertificateNotFound
		}
		return cert, err
	}
	return cert, nil
}

// ListByEnrollments returns certificates belonging to any of the given enrollments.
func ListByEnrollments(db *gorm.DB, enrollmentIDs []uuid.UUID) ([]Certificate, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}

	var certs []Certificate
	err := db.Where("enrollment_id IN ?", enrollmentIDs).Order("issued_at DESC").Find(&certs).Error
	return certs, err
}
