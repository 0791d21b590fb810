package database

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// ReconnectPlugin is a GORM plugin that pings the connection before each
// operation and retries when it looks dead. Video streaming keeps requests
// open for a while, so a dropped pool connection would otherwise surface as
// a mid-stream 500.
type ReconnectPlugin struct {
	logger         *slog.Logger
	maxRetries     int
	retryDelay     time.Duration
	reconnectCount atomic.Int64
}

// NewReconnectPlugin creates a new reconnect plugin.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger.With(slog.String("component", "db_reconnect")),
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string {
	return "edumart:reconnect"
}

// Initialize registers the health check in front of every operation type.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("edumart:reconnect_query", p.checkConnection); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("edumart:reconnect_create", p.checkConnection); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("edumart:reconnect_update", p.checkConnection); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("edumart:reconnect_delete", p.checkConnection); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("edumart:reconnect_row", p.checkConnection); err != nil {
		return err
	}
	return db.Callback().Raw().Before("gorm:raw").Register("edumart:reconnect_raw", p.checkConnection)
}

// checkConnection pings the pool and kicks off a reconnect when the
// connection appears lost.
func (p *ReconnectPlugin) checkConnection(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if err := sqlDB.Ping(); err != nil && p.isConnectionError(err) {
		p.logger.Warn("database connection lost, attempting to reconnect",
			slog.String("error", err.Error()),
		)

		if p.attemptReconnect(sqlDB) {
			p.logger.Info("database reconnection successful")
		} else {
			p.logger.Error("database reconnection failed after retries")
		}
	}
}

// isConnectionError reports whether an error looks like a lost connection
// rather than a query-level failure.
func (p *ReconnectPlugin) isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionErrors := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"connection timed out",
		"eof",
		"bad connection",
		"invalid connection",
		"closed network connection",
		"connection lost",
		"server closed",
	}

	for _, pattern := range connectionErrors {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// attemptReconnect pings with linear backoff until the pool answers again.
func (p *ReconnectPlugin) attemptReconnect(sqlDB *sql.DB) bool {
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		time.Sleep(p.retryDelay * time.Duration(attempt))

		if err := sqlDB.Ping(); err == nil {
			total := p.reconnectCount.Add(1)
			p.logger.Info("database connection restored",
				slog.Int("attempt", attempt),
				slog.Int64("total_reconnects", total),
			)
			return true
		}

		p.logger.Warn("reconnection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.maxRetries),
		)
	}

	return false
}

// ReconnectCount returns the total number of successful reconnections.
func (p *ReconnectPlugin) ReconnectCount() int64 {
	return p.reconnectCount.Load()
}
