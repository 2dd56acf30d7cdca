package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/weather-history/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSONRespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	l.Info("dropped")
	l.Warn("kept", "city", "Paris")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "Paris", entry["city"])
}

func TestGormLoggerWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g := Gorm(l, "debug")
	g.Info(context.Background(), "opened %s", "weather.db")

	assert.Contains(t, buf.String(), "opened weather.db")
	assert.Contains(t, buf.String(), "component=gorm")

	buf.Reset()
	quiet := Gorm(l, "info")
	quiet.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	assert.NotNil(t, quiet.LogMode(gormlogger.Silent))
}

func TestNewCapturesStdlibLogOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	})

	var buf bytes.Buffer
	New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	// third-party packages that print through the log package end up in the structured stream
	log.Println("No results found.")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "No results found.", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}
