package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/r2dtools/certman/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "certman.log")
	log, err := NewLogger(&config.Config{LogFile: logFile, Debug: true})
	require.Nil(t, err)

	log.Info("issued %s", "example.com")

	content, err := os.ReadFile(logFile)
	require.Nil(t, err)
	assert.Contains(t, string(content), "issued example.com")
}

func TestNewLoggerProductionLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "certman.log")
	log, err := NewLogger(&config.Config{LogFile: logFile})
	require.Nil(t, err)

	log.Info("hidden")
	log.Warning("shown %d", 1)

	content, err := os.ReadFile(logFile)
	require.Nil(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "shown 1")
	assert.Contains(t, string(content), "timestamp")
}
