package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const defaultLogDir = "logs"

// New creates the service's structured slog.Logger. Console output is text
// for readability; files get JSON for parsing, split into a full stream and
// an errors-only stream. EDUMART_LOG_DIR overrides where the files land.
func New(level string) (*slog.Logger, error) {
	handlerLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	logDir := os.Getenv("EDUMART_LOG_DIR")
	if logDir == "" {
		logDir = defaultLogDir
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	errorFile, err := os.OpenFile(filepath.Join(logDir, "edumart-error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	appFile, err := os.OpenFile(filepath.Join(logDir, "edumart-app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: handlerLevel})
	appFileHandler := slog.NewJSONHandler(appFile, &slog.HandlerOptions{Level: handlerLevel})
	errorFileHandler := slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError})

	handler := NewTeeHandler(consoleHandler, appFileHandler, errorFileHandler)
	return slog.New(handler).With(slog.String("service", "edumart-server")), nil
}

// TeeHandler fans each record out to the console and the app log, and
// duplicates errors into the error log.
type TeeHandler struct {
	consoleHandler   slog.Handler
	appFileHandler   slog.Handler
	errorFileHandler slog.Handler
	level            slog.Leveler
}

func NewTeeHandler(consoleHandler, appFileHandler, errorFileHandler slog.Handler) *TeeHandler {
	return &TeeHandler{
		consoleHandler:   consoleHandler,
		appFileHandler:   appFileHandler,
		errorFileHandler: errorFileHandler,
		level:            slog.LevelInfo,
	}
}

func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.consoleHandler.Handle(ctx, r); err != nil {
		return err
	}

	if err := h.appFileHandler.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= slog.LevelError {
		return h.errorFileHandler.Handle(ctx, r)
	}

	return nil
}

func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TeeHandler{
		consoleHandler:   h.consoleHandler.WithAttrs(attrs),
		appFileHandler:   h.appFileHandler.WithAttrs(attrs),
		errorFileHandler: h.errorFileHandler.WithAttrs(attrs),
		level:            h.level,
	}
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	return &TeeHandler{
		consoleHandler:   h.consoleHandler.WithGroup(name),
		appFileHandler:   h.appFileHandler.WithGroup(name),
		errorFileHandler: h.errorFileHandler.WithGroup(name),
		level:            h.level,
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}
}
