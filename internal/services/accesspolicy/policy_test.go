package accesspolicy

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&course.Course{}, &material.Material{}, &enrollment.Enrollment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

type fixture struct {
	db           *gorm.DB
	mentorID     uuid.UUID
	studentID    uuid.UUID
	strangerID   uuid.UUID
	adminID      uuid.UUID
	freeMaterial material.Material
	paidMaterial material.Material
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := openTestDB(t)

	f := fixture{
		db:         db,
		mentorID:   uuid.New(),
		studentID:  uuid.New(),
		strangerID: uuid.New(),
		adminID:    uuid.New(),
	}

	crs := course.Course{
		Title:     "Go from scratch",
		MentorID:  f.mentorID,
		Published: true,
	}
	if err := db.Create(&crs).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	sectionID := uuid.New()

	f.freeMaterial = material.Material{
		SectionID: sectionID,
		CourseID:  crs.ID,
		Title:     "Intro",
		Type:      types.MaterialTypeVideo,
		IsFree:    true,
	}
	if err := db.Create(&f.freeMaterial).Error; err != nil {
		t.Fatalf("create free material: %v", err)
	}

	f.paidMaterial = material.Material{
		SectionID: sectionID,
		CourseID:  crs.ID,
		Title:     "Deep dive",
		Type:      types.MaterialTypeVideo,
	}
	if err := db.Create(&f.paidMaterial).Error; err != nil {
		t.Fatalf("create paid material: %v", err)
	}

	enr := enrollment.Enrollment{
		UserID:   f.studentID,
		CourseID: crs.ID,
		Status:   types.EnrollmentStatusActive,
	}
	if err := db.Create(&enr).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	return f
}

func TestAdminSeesEverything(t *testing.T) {
	f := newFixture(t)

	viewer := Viewer{ID: f.adminID, UserType: types.UserTypeAdmin}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if !allowed {
		t.Fatal("expected admin to view paid material")
	}
}

func TestOwningMentorSeesOwnCourse(t *testing.T) {
	f := newFixture(t)

	viewer := Viewer{ID: f.mentorID, UserType: types.UserTypeMentor}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if !allowed {
		t.Fatal("expected owning mentor to view their material")
	}
}

func TestOtherMentorDeniedPaidMaterial(t *testing.T) {
	f := newFixture(t)

	viewer := Viewer{ID: uuid.New(), UserType: types.UserTypeMentor}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if allowed {
		t.Fatal("expected unrelated mentor to be denied")
	}
}

func TestFreeMaterialOpenToAnonymous(t *testing.T) {
	f := newFixture(t)

	allowed, err := CanView(f.db, Viewer{}, f.freeMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if !allowed {
		t.Fatal("expected anonymous viewer to see free material")
	}
}

func TestAnonymousDeniedPaidMaterial(t *testing.T) {
	f := newFixture(t)

	allowed, err := CanView(f.db, Viewer{}, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if allowed {
		t.Fatal("expected anonymous viewer to be denied paid material")
	}
}

func TestEnrolledStudentSeesPaidMaterial(t *testing.T) {
	f := newFixture(t)

	viewer := Viewer{ID: f.studentID, UserType: types.UserTypeStudent}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if !allowed {
		t.Fatal("expected enrolled student to view paid material")
	}
}

func TestUnenrolledStudentDenied(t *testing.T) {
	f := newFixture(t)

	viewer := Viewer{ID: f.strangerID, UserType: types.UserTypeStudent}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if allowed {
		t.Fatal("expected unenrolled student to be denied")
	}
}

func TestCancelledEnrollmentDenied(t *testing.T) {
	f := newFixture(t)

	if err := f.db.Model(&enrollment.Enrollment{}).
		Where("user_id = ?", f.studentID).
		Update("status", types.EnrollmentStatusCancelled).Error; err != nil {
		t.Fatalf("cancel enrollment: %v", err)
	}

	viewer := Viewer{ID: f.studentID, UserType: types.UserTypeStudent}

	allowed, err := CanView(f.db, viewer, f.paidMaterial)
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if allowed {
		t.Fatal("expected cancelled enrollment to lose access")
	}
}
