package slogging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("INFO"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("Warn"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("bogus"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestSanitizeLogMessage(t *testing.T) {
	assert.Equal(t, "a\\nb\\rc", SanitizeLogMessage("a\nb\rc"))
	assert.Equal(t, "clean", SanitizeLogMessage("clean"))
}

func TestNewLoggerWritesToFile(t *testing.T) {
	logDir := t.TempDir()

	logger, err := NewLogger(Config{
		Level:     LogLevelDebug,
		IsDev:     true,
		LogDir:    logDir,
		MaxSizeMB: 1,
	})
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Info("started with %d workers", 4)
	logger.Debug("noisy detail")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "started with 4 workers")
	assert.Contains(t, string(data), "noisy detail")
}

func TestLevelFiltering(t *testing.T) {
	logDir := t.TempDir()

	logger, err := NewLogger(Config{
		Level:  LogLevelWarn,
		IsDev:  true,
		LogDir: logDir,
	})
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Info("should be dropped")
	logger.Warn("should appear")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be dropped")
	assert.Contains(t, string(data), "should appear")
}
