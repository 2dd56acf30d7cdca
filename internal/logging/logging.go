// Package logging configures the process-wide structured logger and bridges GORM's
// logger onto it.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/weather-history/internal/config"
)

// New builds a logger from cfg writing to w and installs it as the slog default.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// gormWriter satisfies gormlogger.Writer.
type gormWriter struct {
	l *slog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

// Gorm returns a GORM logger that writes through l. SQL statements are only traced when
// the configured level is debug.
func Gorm(l *slog.Logger, level string) gormlogger.Interface {
	logLevel := gormlogger.Warn
	if ParseLevel(level) == slog.LevelDebug {
		logLevel = gormlogger.Info
	}
	return gormlogger.New(gormWriter{l: l}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
