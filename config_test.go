package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), config)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
save_directory: `+dir+`
confirmations: false
history_capacity: 20
log_level: debug
segments:
  - id: default
    name: Default
    color: "#9e9e9e"
  - id: billing
    name: Billing
    color: "#ff8800"
`)

	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, dir, config.SaveDirectory)
	assert.False(t, config.Confirmations)
	assert.Equal(t, 20, config.HistoryCapacity)

	segments := config.DocumentSegments()
	require.Len(t, segments, 2)
	assert.Equal(t, "billing", segments[1].ID)
	assert.Equal(t, filepath.Join(dir, "chart.png"), config.GetSavePath("chart.png"))
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"capacity too small", "history_capacity: 1\nlog_level: info\n", "history_capacity"},
		{"unknown level", "log_level: loud\n", "log_level"},
		{"bad colour", "segments:\n  - id: a\n    name: A\n    color: orange\n", "color"},
		{"missing name", "segments:\n  - id: a\n", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "history_capacity: [\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestNewLogger(t *testing.T) {
	config := defaultConfig()
	logger, err := newLogger(config)
	require.NoError(t, err)
	logger.Info("dropped")

	config.LogFile = filepath.Join(t.TempDir(), "flowsmith.log")
	config.LogLevel = "debug"
	logger, err = newLogger(config)
	require.NoError(t, err)
	logger.Debug("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(config.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}
