package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, cfg Config) *Logger {
	return &Logger{config: cfg, logger: log.New(buf, "", 0)}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TraceLevel, ParseLevel("trace"))
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestPrettyFormatting(t *testing.T) {
	l := newBufferLogger(&bytes.Buffer{}, Config{Level: InfoLevel, Component: "yarnpin"})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "pinned modules",
		Component: "yarnpin",
		Fields:    map[string]interface{}{"version": "1.5.0", "count": 21},
	}

	result := l.formatPretty(entry)
	assert.Contains(t, result, "2025-01-01 12:00:00")
	assert.Contains(t, result, "[INFO]")
	assert.Contains(t, result, "yarnpin:")
	assert.Contains(t, result, "pinned modules")
	assert.Contains(t, result, "{count=21, version=1.5.0}")
}

func TestPrettyFormatting_NoOpMarker(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, Config{Level: InfoLevel, NoOp: true})

	l.Log(InfoLevel, "would write manifest")
	assert.Contains(t, buf.String(), "[NO-OP] would write manifest")
}

func TestJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, Config{Level: InfoLevel, JSON: true, Component: "yarnpin"})

	l.Log(InfoLevel, "pinned", String("target", "mosaic-1"))

	var parsed LogEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed))
	assert.Equal(t, "pinned", parsed.Message)
	assert.Equal(t, "INFO", parsed.Level)
	assert.Equal(t, "mosaic-1", parsed.Fields["target"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, Config{Level: WarnLevel})

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	assert.NotContains(t, output, "info message")
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "key", Value: "value"}, String("key", "value"))
	assert.Equal(t, Field{Key: "count", Value: 42}, Int("count", 42))
	assert.Equal(t, Field{Key: "enabled", Value: true}, Bool("enabled", true))
	assert.Equal(t, Field{Key: "mods", Value: []string{"a"}}, Strings("mods", []string{"a"}))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: nil}, Err(nil))
}

func TestConvenienceFunctions(t *testing.T) {
	require.NoError(t, Initialize(Config{Level: InfoLevel, Component: "test"}))
	t.Cleanup(Close)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("test info message")
	Debug("test debug message")
	Warn("test warn message")
	Error("test error message")

	output := buf.String()
	assert.Contains(t, output, "test info message")
	assert.NotContains(t, output, "test debug message")
	assert.Contains(t, output, "test warn message")
	assert.Contains(t, output, "test error message")
}

func TestFallbackLogging(t *testing.T) {
	original := defaultLogger
	defaultLogger = nil
	t.Cleanup(func() { defaultLogger = original })

	assert.NotPanics(t, func() {
		Info("fallback test message")
		Error("fallback error")
		Debug("dropped")
	})
}

func TestInitialize_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "yarnpin.log")

	require.NoError(t, Initialize(Config{
		Level:     InfoLevel,
		Component: "yarnpin",
		File:      FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1},
	}))
	Info("written to file", String("target", "mosaic-1"))
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "target=mosaic-1")
}
