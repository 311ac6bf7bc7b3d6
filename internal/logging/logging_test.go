package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/physiktrainer/physiktrainer/internal/config"
)

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("attempt log failed", zap.String("exercise", "W001"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "attempt log failed")
	assert.Contains(t, out, "W001")
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{}, &buf)
	require.NoError(t, err)
	log.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFileCoreWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physik.log")
	var console bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, &console)
	require.NoError(t, err)

	log.Debug("graded", zap.String("exercise", "E001"), zap.Bool("correct", true))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "graded", entry["msg"])
	assert.Equal(t, "E001", entry["exercise"])
	assert.Equal(t, true, entry["correct"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, console.String(), "graded")
}
