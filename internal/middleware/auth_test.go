package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edumart/edumart-server-go/internal/utils/jwt"
	"github.com/edumart/edumart-server-go/pkg/types"
)

const testJWTSecret = "auth-middleware-test-secret"

func setupAuth(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	Initialize(db, testJWTSecret, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return db
}

func createUser(t *testing.T, db *gorm.DB, active bool) User {
	t.Helper()

	usr := User{
		ID:       uuid.New(),
		Email:    uuid.New().String() + "@example.com",
		FullName: "Test User",
		UserType: types.UserTypeStudent,
		Active:   active,
	}
	if err := db.Create(&usr).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return usr
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(userID, testJWTSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// whoami reports whether the middleware chain left a user in the context.
func whoami(t *testing.T, handler gin.HandlerFunc, authHeader string) (*User, int) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	var seen *User
	router.GET("/whoami", handler, func(c *gin.Context) {
		if usr, ok := GetUserFromContext(c); ok {
			seen = usr
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return seen, rec.Code
}

func TestOptionalAuthenticateLoadsActiveUser(t *testing.T) {
	db := setupAuth(t)
	usr := createUser(t, db, true)

	seen, code := whoami(t, OptionalAuthenticate(), "Bearer "+tokenFor(t, usr.ID))

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if seen == nil || seen.ID != usr.ID {
		t.Fatal("expected the active user to be loaded into context")
	}
}

func TestOptionalAuthenticateInactiveUserIsAnonymous(t *testing.T) {
	db := setupAuth(t)
	usr := createUser(t, db, false)

	seen, code := whoami(t, OptionalAuthenticate(), "Bearer "+tokenFor(t, usr.ID))

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if seen != nil {
		t.Fatal("expected a deactivated account to degrade to anonymous")
	}
}

func TestOptionalAuthenticateNoHeaderIsAnonymous(t *testing.T) {
	setupAuth(t)

	seen, code := whoami(t, OptionalAuthenticate(), "")

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if seen != nil {
		t.Fatal("expected no user without credentials")
	}
}

func TestOptionalAuthenticateBadTokenIsAnonymous(t *testing.T) {
	setupAuth(t)

	seen, code := whoami(t, OptionalAuthenticate(), "Bearer not-a-token")

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if seen != nil {
		t.Fatal("expected a bad token to degrade to anonymous")
	}
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	db := setupAuth(t)
	usr := createUser(t, db, false)

	_, code := whoami(t, Authenticate(), "Bearer "+tokenFor(t, usr.ID))

	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for a deactivated account, got %d", code)
	}
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	setupAuth(t)

	_, code := whoami(t, Authenticate(), "")

	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
