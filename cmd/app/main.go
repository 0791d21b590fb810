package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/edumart/edumart-server-go/internal/http/routes"
	"github.com/edumart/edumart-server-go/internal/services/uploadprogress"
	"github.com/edumart/edumart-server-go/pkg/cache"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/database"
	"github.com/edumart/edumart-server-go/pkg/filestore"
	"github.com/edumart/edumart-server-go/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	log.Info("starting edumart server",
		slog.String("env", cfg.Env),
		slog.String("address", cfg.ServerAddress()),
	)

	db, err := database.ConnectWithRetry(ctx, cfg.Database, log, 5, 2*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	store, err := filestore.New(cfg.Storage.RootDir)
	if err != nil {
		return err
	}

	// Upload progress stays in process memory unless Redis is configured,
	// in which case it is shared across instances.
	var registry uploadprogress.Registry = uploadprogress.NewMemoryRegistry()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		registry = uploadprogress.NewRedisRegistry(redisClient)
		log.Info("upload progress registry backed by redis", slog.String("addr", cfg.Redis.Addr))
	}

	router := routes.Setup(cfg, db, log, store, registry)

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
