package progress

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edumart/edumart-server-go/internal/features/certificate"
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

	err = db.AutoMigrate(
		&material.Material{},
		&enrollment.Enrollment{},
		&Progress{},
		&certificate.Certificate{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

type fixture struct {
	db        *gorm.DB
	courseID  uuid.UUID
	enr       enrollment.Enrollment
	materials []material.Material
}

// newFixture enrolls one student in a course with the given number of
// video materials.
func newFixture(t *testing.T, materialCount int) fixture {
	t.Helper()

	db := openTestDB(t)
	courseID := uuid.New()
	sectionID := uuid.New()

	f := fixture{db: db, courseID: courseID}

	for i := 0; i < materialCount; i++ {
		mat := material.Material{
			SectionID: sectionID,
			CourseID:  courseID,
			Title:     "Lesson",
			Type:      types.MaterialTypeVideo,
			Position:  i,
		}
		if err := db.Create(&mat).Error; err != nil {
			t.Fatalf("create material: %v", err)
		}
		f.materials = append(f.materials, mat)
	}

	f.enr = enrollment.Enrollment{
		UserID:   uuid.New(),
		CourseID: courseID,
		Status:   types.EnrollmentStatusActive,
	}
	if err := db.Create(&f.enr).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	return f
}

func (f fixture) reloadEnrollment(t *testing.T) enrollment.Enrollment {
	t.Helper()

	enr, err := enrollment.Get(f.db, f.enr.ID)
	if err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	return enr
}

func TestReportPositionBelowThreshold(t *testing.T) {
	f := newFixture(t, 2)

	rec, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 50, 100)
	if err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if rec.IsCompleted {
		t.Fatal("expected material to stay incomplete at 50%")
	}
	if rec.CompletedAt != nil {
		t.Fatal("expected no completion timestamp")
	}
	if rec.WatchedDuration != 50 || rec.LastPosition != 50 {
		t.Fatalf("unexpected positions: watched=%v last=%v", rec.WatchedDuration, rec.LastPosition)
	}

	if got := f.reloadEnrollment(t).Progress; got != 0 {
		t.Fatalf("expected course progress 0, got %v", got)
	}
}

func TestReportPositionAtThresholdCompletes(t *testing.T) {
	f := newFixture(t, 2)

	rec, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 90, 100)
	if err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if !rec.IsCompleted {
		t.Fatal("expected material to complete at 90% of duration")
	}
	if rec.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	if got := f.reloadEnrollment(t).Progress; got != 50 {
		t.Fatalf("expected course progress 50, got %v", got)
	}
}

func TestRewindLowersWatchedDurationButKeepsCompletion(t *testing.T) {
	f := newFixture(t, 1)

	if _, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 95, 100); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	first, err := Get(f.db, f.enr.ID, f.materials[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	rec, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 10, 100)
	if err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if rec.WatchedDuration != 10 || rec.LastPosition != 10 {
		t.Fatalf("expected positions to follow the rewind, got watched=%v last=%v", rec.WatchedDuration, rec.LastPosition)
	}
	if !rec.IsCompleted {
		t.Fatal("expected completion to be sticky across a rewind")
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatal("expected completion timestamp to be preserved")
	}
}

func TestNegativePositionClampsToZero(t *testing.T) {
	f := newFixture(t, 1)

	rec, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, -30, 100)
	if err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if rec.WatchedDuration != 0 || rec.LastPosition != 0 {
		t.Fatalf("expected clamped positions, got watched=%v last=%v", rec.WatchedDuration, rec.LastPosition)
	}
}

func TestZeroDurationNeverCompletes(t *testing.T) {
	f := newFixture(t, 1)

	rec, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 500, 0)
	if err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if rec.IsCompleted {
		t.Fatal("expected unknown-duration video to never auto-complete")
	}
}

func TestCompletingAllMaterialsFinishesEnrollment(t *testing.T) {
	f := newFixture(t, 2)

	for _, mat := range f.materials {
		if _, err := ReportPosition(f.db, f.enr.ID, mat.ID, 100, 100); err != nil {
			t.Fatalf("ReportPosition: %v", err)
		}
	}

	enr := f.reloadEnrollment(t)
	if enr.Progress != 100 {
		t.Fatalf("expected course progress 100, got %v", enr.Progress)
	}
	if enr.Status != types.EnrollmentStatusCompleted {
		t.Fatalf("expected completed enrollment, got %s", enr.Status)
	}
	if enr.CompletedAt == nil {
		t.Fatal("expected enrollment completion timestamp")
	}

	var certs []certificate.Certificate
	if err := f.db.Where("enrollment_id = ?", f.enr.ID).Find(&certs).Error; err != nil {
		t.Fatalf("load certificates: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("expected exactly one certificate, got %d", len(certs))
	}
}

func TestRecomputeIsIdempotentForCertificates(t *testing.T) {
	f := newFixture(t, 1)

	if _, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 100, 100); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}
	if _, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 100, 100); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	var count int64
	if err := f.db.Model(&certificate.Certificate{}).Where("enrollment_id = ?", f.enr.ID).Count(&count).Error; err != nil {
		t.Fatalf("count certificates: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one certificate after repeated completion, got %d", count)
	}
}

func TestRecomputeEmptyCourseIsZero(t *testing.T) {
	f := newFixture(t, 0)

	pct, err := Recompute(f.db, f.enr.ID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if pct != 0 {
		t.Fatalf("expected 0%% for a course without materials, got %v", pct)
	}

	if got := f.reloadEnrollment(t).Status; got != types.EnrollmentStatusActive {
		t.Fatalf("expected enrollment to stay active, got %s", got)
	}
}

func TestReportPositionStampsLastAccess(t *testing.T) {
	f := newFixture(t, 2)

	if f.enr.LastAccessedAt != nil {
		t.Fatal("expected fresh enrollment to have no last access time")
	}

	if _, err := ReportPosition(f.db, f.enr.ID, f.materials[0].ID, 10, 100); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	if f.reloadEnrollment(t).LastAccessedAt == nil {
		t.Fatal("expected last access time after reporting a position")
	}
}

func TestMarkCompleteStampsLastAccess(t *testing.T) {
	f := newFixture(t, 2)

	if _, err := MarkComplete(f.db, f.enr.ID, f.materials[0].ID); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	if f.reloadEnrollment(t).LastAccessedAt == nil {
		t.Fatal("expected last access time after completing a material")
	}
}

func TestMarkCompleteForDocumentMaterial(t *testing.T) {
	f := newFixture(t, 1)

	rec, err := MarkComplete(f.db, f.enr.ID, f.materials[0].ID)
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	if !rec.IsCompleted || rec.CompletedAt == nil {
		t.Fatal("expected material to be completed")
	}

	if got := f.reloadEnrollment(t).Progress; got != 100 {
		t.Fatalf("expected course progress 100, got %v", got)
	}
}
