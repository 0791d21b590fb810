// Package routes assembles the HTTP router from feature route groups.
package routes

import (
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/auth"
	"github.com/edumart/edumart-server-go/internal/features/certificate"
	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/internal/features/progress"
	"github.com/edumart/edumart-server-go/internal/features/section"
	"github.com/edumart/edumart-server-go/internal/features/user"
	"github.com/edumart/edumart-server-go/internal/features/video"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/internal/services/uploadprogress"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/filestore"
	"github.com/edumart/edumart-server-go/pkg/health"
	"github.com/edumart/edumart-server-go/pkg/metrics"
	pkgmiddleware "github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/request"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Setup builds the gin engine with all middleware and feature routes wired.
func Setup(
	cfg *config.Config,
	db *gorm.DB,
	logger *slog.Logger,
	store *filestore.Store,
	registry uploadprogress.Registry,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(pkgmiddleware.RequestID())
	router.Use(pkgmiddleware.Recovery(logger))
	router.Use(pkgmiddleware.RequestLogger(logger))
	router.Use(pkgmiddleware.SecurityHeaders())
	router.Use(pkgmiddleware.CORS(cfg.AllowedOrigins))
	router.Use(pkgmiddleware.Compression(5))
	router.Use(pkgmiddleware.CacheControl())
	router.Use(pkgmiddleware.RequestSizeLimit(cfg.Storage.MaxUploadSizeMB << 20))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(logger))

	rateLimiter := pkgmiddleware.NewRateLimiter(300, time.Minute)
	router.Use(rateLimiter.Middleware())

	middleware.Initialize(db, cfg.JWTSecret, logger)

	healthHandler := health.NewHandler(db, logger)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/version", healthHandler.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	authed := []gin.HandlerFunc{middleware.Authenticate()}

	auth.RegisterRoutes(api, auth.NewHandler(db, cfg, logger))
	user.RegisterRoutes(api, user.NewHandler(db, logger), authed)
	course.RegisterRoutes(api, course.NewHandler(db, logger))
	section.RegisterRoutes(api, section.NewHandler(db, logger))
	material.RegisterRoutes(api, material.NewHandler(db, logger))
	enrollment.RegisterRoutes(api, enrollment.NewHandler(db, logger), authed)
	video.RegisterRoutes(api, video.NewHandler(db, logger, store, registry, cfg.Storage.MaxUploadSizeMB))
	progress.RegisterRoutes(api, progress.NewHandler(db, logger))
	certificate.RegisterRoutes(api, certificate.NewHandler(db, logger))

	adminOnly := middleware.RequireRoles(types.UserTypeAdmin)
	admin := api.Group("/admin")
	admin.GET("/db-stats", append(adminOnly, healthHandler.DBStats)...)

	return router
}
