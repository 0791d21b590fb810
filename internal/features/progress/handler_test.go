package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edumart/edumart-server-go/internal/features/certificate"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/internal/features/video"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/types"
)

type handlerFixture struct {
	db      *gorm.DB
	handler *Handler
	student *middleware.User
	vid     video.Video
	mat     material.Material
}

// newHandlerFixture builds a course with one video material whose stored
// duration is the given value, and enrolls one student.
func newHandlerFixture(t *testing.T, storedDuration float64) *handlerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&material.Material{},
		&enrollment.Enrollment{},
		&Progress{},
		&certificate.Certificate{},
		&video.Video{},
		&video.VideoQuality{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	courseID := uuid.New()
	studentID := uuid.New()

	vid := video.Video{
		UploaderID:   uuid.New(),
		Title:        "lesson",
		OriginalName: "lesson.mp4",
		StoragePath:  "videos/lesson.mp4",
		Duration:     storedDuration,
		Status:       types.VideoStatusCompleted,
	}
	if err := db.Create(&vid).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}

	mat := material.Material{
		SectionID: uuid.New(),
		CourseID:  courseID,
		Title:     "lesson",
		Type:      types.MaterialTypeVideo,
		VideoID:   &vid.ID,
	}
	if err := db.Create(&mat).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}

	enr := enrollment.Enrollment{UserID: studentID, CourseID: courseID, Status: types.EnrollmentStatusActive}
	if err := db.Create(&enr).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &handlerFixture{
		db:      db,
		handler: NewHandler(db, log),
		student: &middleware.User{ID: studentID, UserType: types.UserTypeStudent, Active: true},
		vid:     vid,
		mat:     mat,
	}
}

func (f *handlerFixture) reportPosition(t *testing.T, usr *middleware.User, body string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/videos/:id/progress", func(c *gin.Context) {
		if usr != nil {
			c.Set("user", usr)
		}
		f.handler.ReportVideoPosition(c)
	})

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/videos/%s/progress", f.vid.ID), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReportPositionClientDurationCompletes(t *testing.T) {
	f := newHandlerFixture(t, 0)

	rec := f.reportPosition(t, f.student, `{"position": 95, "duration": 100}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data Progress `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.IsCompleted {
		t.Fatal("expected the reported duration to drive completion when the stored one is zero")
	}
}

func TestReportPositionFallsBackToStoredDuration(t *testing.T) {
	f := newHandlerFixture(t, 100)

	rec := f.reportPosition(t, f.student, `{"position": 95}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data Progress `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.IsCompleted {
		t.Fatal("expected the stored duration to apply when the body omits one")
	}
}

func TestReportPositionWithoutEnrollmentNotFound(t *testing.T) {
	f := newHandlerFixture(t, 100)

	stranger := &middleware.User{ID: uuid.New(), UserType: types.UserTypeStudent, Active: true}
	rec := f.reportPosition(t, stranger, `{"position": 10}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a caller without an enrollment, got %d", rec.Code)
	}
}
