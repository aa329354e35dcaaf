package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hydrolog/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", slog.LevelInfo)

	log.Debug("hidden")
	log.Info("archived day", "date", "2026-03-01")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "archived day", rec["msg"])
	assert.Equal(t, "2026-03-01", rec["date"])
	assert.Equal(t, "hydrolog", rec["component"])
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "text", slog.LevelWarn)

	log.Info("skipped")
	log.Warn("malformed record", "key", "intake.log")

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "malformed record")
	assert.Contains(t, out, "key=intake.log")
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hydrolog.log")
	log, closer, err := New(config.LoggingConfig{Level: "info", Format: "text", File: path}, false)
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewVerboseForcesDebug(t *testing.T) {
	log, closer, err := New(config.LoggingConfig{Level: "error"}, true)
	require.NoError(t, err)
	defer closer.Close()
	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}
