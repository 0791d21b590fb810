package video

import (
	"bytes"
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

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/internal/services/uploadprogress"
	"github.com/edumart/edumart-server-go/pkg/filestore"
	"github.com/edumart/edumart-server-go/pkg/request"
	"github.com/edumart/edumart-server-go/pkg/types"
)

const testFileSize = 1000

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&course.Course{},
		&material.Material{},
		&enrollment.Enrollment{},
		&Video{},
		&VideoQuality{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

type streamFixture struct {
	db        *gorm.DB
	handler   *Handler
	content   []byte
	mentorID  uuid.UUID
	studentID uuid.UUID
	freeVideo Video
	paidVideo Video
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()

	db := openTestDB(t)

	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	content := make([]byte, testFileSize)
	for i := range content {
		content[i] = byte(i % 251)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &streamFixture{
		db:        db,
		handler:   NewHandler(db, log, store, uploadprogress.NewMemoryRegistry(), 500),
		content:   content,
		mentorID:  uuid.New(),
		studentID: uuid.New(),
	}

	crs := course.Course{Title: "Streaming 101", MentorID: f.mentorID, Published: true}
	if err := db.Create(&crs).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	sectionID := uuid.New()

	makeVideo := func(name string, free bool) Video {
		rel, written, err := store.Save("videos", name, bytes.NewReader(content))
		if err != nil {
			t.Fatalf("save file: %v", err)
		}

		vid := Video{
			UploaderID:   f.mentorID,
			Title:        name,
			OriginalName: name,
			StoragePath:  rel,
			Size:         written,
			Duration:     120,
			Status:       types.VideoStatusCompleted,
		}
		if err := db.Create(&vid).Error; err != nil {
			t.Fatalf("create video: %v", err)
		}

		mat := material.Material{
			SectionID: sectionID,
			CourseID:  crs.ID,
			Title:     name,
			Type:      types.MaterialTypeVideo,
			VideoID:   &vid.ID,
			IsFree:    free,
		}
		if err := db.Create(&mat).Error; err != nil {
			t.Fatalf("create material: %v", err)
		}

		return vid
	}

	f.freeVideo = makeVideo("intro.mp4", true)
	f.paidVideo = makeVideo("lesson.mp4", false)

	enr := enrollment.Enrollment{UserID: f.studentID, CourseID: crs.ID, Status: types.EnrollmentStatusActive}
	if err := db.Create(&enr).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	return f
}

// stream performs a request against the stream route, optionally injecting
// an authenticated user the way the auth middleware would.
func (f *streamFixture) stream(t *testing.T, videoID, rangeHeader string, usr *middleware.User) *httptest.ResponseRecorder {
	t.Helper()
	return f.streamTarget(t, "/videos/"+videoID+"/stream", rangeHeader, usr)
}

func (f *streamFixture) streamTarget(t *testing.T, target, rangeHeader string, usr *middleware.User) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(request.Handler(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/videos/:id/stream", func(c *gin.Context) {
		if usr != nil {
			c.Set("user", usr)
		}
		f.handler.Stream(c)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (f *streamFixture) student() *middleware.User {
	return &middleware.User{ID: f.studentID, UserType: types.UserTypeStudent, Active: true}
}

func TestStreamFullFile(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.freeVideo.ID.String(), "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("expected Accept-Ranges bytes, got %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content) {
		t.Fatal("expected full file body")
	}
}

func TestStreamBoundedRange(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.freeVideo.ID.String(), "bytes=200-399", nil)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d: %s", rec.Code, rec.Body.String())
	}

	wantRange := fmt.Sprintf("bytes 200-399/%d", testFileSize)
	if got := rec.Header().Get("Content-Range"); got != wantRange {
		t.Fatalf("expected Content-Range %q, got %q", wantRange, got)
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content[200:400]) {
		t.Fatal("expected bytes 200 through 399")
	}
}

func TestStreamOpenEndedRange(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.freeVideo.ID.String(), "bytes=900-", nil)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d", rec.Code)
	}

	wantRange := fmt.Sprintf("bytes 900-%d/%d", testFileSize-1, testFileSize)
	if got := rec.Header().Get("Content-Range"); got != wantRange {
		t.Fatalf("expected Content-Range %q, got %q", wantRange, got)
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content[900:]) {
		t.Fatal("expected trailing bytes")
	}
}

func TestStreamMalformedRange(t *testing.T) {
	f := newStreamFixture(t)

	for _, header := range []string{
		"bytes=abc",
		"bytes=100-50",
		"bytes=0-100,200-300",
		"items=0-100",
	} {
		rec := f.stream(t, f.freeVideo.ID.String(), header, nil)

		if rec.Code != http.StatusRequestedRangeNotSatisfiable {
			t.Fatalf("header %q: expected 416, got %d", header, rec.Code)
		}

		wantRange := fmt.Sprintf("bytes */%d", testFileSize)
		if got := rec.Header().Get("Content-Range"); got != wantRange {
			t.Fatalf("header %q: expected Content-Range %q, got %q", header, wantRange, got)
		}
	}
}

func TestStreamRangeBeyondEOF(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.freeVideo.ID.String(), fmt.Sprintf("bytes=0-%d", testFileSize), nil)

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("expected 416 for out-of-bounds end, got %d", rec.Code)
	}
}

func TestStreamPaidVideoAnonymousDenied(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.paidVideo.ID.String(), "", nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestStreamPaidVideoEnrolledStudent(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, f.paidVideo.ID.String(), "bytes=0-99", f.student())

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content[:100]) {
		t.Fatal("expected first 100 bytes")
	}
}

func TestStreamPaidVideoUnenrolledStudentDenied(t *testing.T) {
	f := newStreamFixture(t)

	stranger := &middleware.User{ID: uuid.New(), UserType: types.UserTypeStudent, Active: true}
	rec := f.stream(t, f.paidVideo.ID.String(), "", stranger)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestStreamUnknownVideo(t *testing.T) {
	f := newStreamFixture(t)

	rec := f.stream(t, uuid.New().String(), "", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStreamIncompleteVideoHidden(t *testing.T) {
	f := newStreamFixture(t)

	if err := f.db.Model(&Video{}).Where("id = ?", f.freeVideo.ID).
		Update("status", types.VideoStatusProcessing).Error; err != nil {
		t.Fatalf("update status: %v", err)
	}

	rec := f.stream(t, f.freeVideo.ID.String(), "", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unprocessed video, got %d", rec.Code)
	}
}

// addRendition stores a lower-quality copy with distinct bytes so tests can
// tell which file was served.
func (f *streamFixture) addRendition(t *testing.T, vid Video, quality string, size int) []byte {
	t.Helper()

	alt := make([]byte, size)
	for i := range alt {
		alt[i] = byte(255 - i%200)
	}

	rel, written, err := f.handler.store.Save("videos", vid.OriginalName+"_"+quality+".mp4", bytes.NewReader(alt))
	if err != nil {
		t.Fatalf("save rendition: %v", err)
	}

	rendition := VideoQuality{
		VideoID:     vid.ID,
		Quality:     quality,
		Resolution:  "854x480",
		Bitrate:     "1000k",
		StoragePath: rel,
		Size:        written,
	}
	if err := f.db.Create(&rendition).Error; err != nil {
		t.Fatalf("create rendition: %v", err)
	}

	return alt
}

func TestStreamQualitySelection(t *testing.T) {
	f := newStreamFixture(t)
	alt := f.addRendition(t, f.freeVideo, "480p", 500)

	rec := f.streamTarget(t, "/videos/"+f.freeVideo.ID.String()+"/stream?quality=480p", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), alt) {
		t.Fatal("expected the 480p rendition body")
	}
}

func TestStreamQualityRangeUsesRenditionSize(t *testing.T) {
	f := newStreamFixture(t)
	alt := f.addRendition(t, f.freeVideo, "480p", 500)

	rec := f.streamTarget(t, "/videos/"+f.freeVideo.ID.String()+"/stream?quality=480p", "bytes=100-199", nil)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d: %s", rec.Code, rec.Body.String())
	}
	if got, want := rec.Header().Get("Content-Range"), "bytes 100-199/500"; got != want {
		t.Fatalf("expected Content-Range %q, got %q", want, got)
	}
	if !bytes.Equal(rec.Body.Bytes(), alt[100:200]) {
		t.Fatal("expected rendition bytes 100 through 199")
	}
}

func TestStreamUnknownQualityFallsBack(t *testing.T) {
	f := newStreamFixture(t)
	f.addRendition(t, f.freeVideo, "480p", 500)

	rec := f.streamTarget(t, "/videos/"+f.freeVideo.ID.String()+"/stream?quality=4k", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), f.content) {
		t.Fatal("expected the original upload body")
	}
}

func TestStreamMissingFileOnDisk(t *testing.T) {
	f := newStreamFixture(t)

	if err := f.handler.store.Remove(f.freeVideo.StoragePath); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	rec := f.stream(t, f.freeVideo.ID.String(), "", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing file, got %d", rec.Code)
	}
}
