package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesPackageLevelLogsToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")

	zl, err := Init("warn", file)
	require.NoError(t, err)
	require.NotNil(t, zl)

	Debug("debug line")
	Info("info line")
	Warn("warn line", "key", "value")
	Error("error line")
	Sync()

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "debug line")
	assert.NotContains(t, string(out), "info line")
	assert.Contains(t, string(out), "warn line")
	assert.Contains(t, string(out), `"key":"value"`)
	assert.Contains(t, string(out), "error line")
}

func TestAdapterFollowsInit(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l := NewSlogAdapter()

	_, err := Init("info", file)
	require.NoError(t, err)
	l.With("component", "test").Info("adapter line")
	Sync()

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(out), "adapter line")
}

func TestToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, toSlogLevel(zapcore.DebugLevel))
	assert.Equal(t, slog.LevelInfo, toSlogLevel(zapcore.InfoLevel))
	assert.Equal(t, slog.LevelWarn, toSlogLevel(zapcore.WarnLevel))
	assert.Equal(t, slog.LevelError, toSlogLevel(zapcore.FatalLevel))
}
