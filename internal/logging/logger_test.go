package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	logger.Debug("hidden")
	logger.Info("alignment created", slog.Int("alignment_id", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "alignment created", rec["msg"])
	assert.EqualValues(t, 3, rec["alignment_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Format: "text", Level: slog.LevelDebug})
	logger.Debug("commit rejected", slog.String("reason", "empty"))
	assert.Contains(t, buf.String(), "reason=empty")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "interlinear.log")
	logger, closer, err := NewFile(path, "json", "info")
	require.NoError(t, err)
	logger.Info("tokens loaded")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tokens loaded")
}
