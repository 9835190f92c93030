package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, defaultConfigPath, cfg.ConfigPath, "Expected default config path")
	assert.False(t, cfg.Debug, "Expected Debug false by default")
	assert.False(t, cfg.Verbose, "Expected Verbose false by default")
	assert.False(t, cfg.HistoryEnabled, "Expected history disabled by default")
}

func TestLoadConfigFlag(t *testing.T) {
	cfg, err := Load([]string{"--config", "/tmp/moss/config.json", "--debug"})
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "/tmp/moss/config.json", cfg.ConfigPath)
	assert.True(t, cfg.Debug)
}

func TestLoadShortFlags(t *testing.T) {
	cfg, err := Load([]string{"-c", "/tmp/other.json"})
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "/tmp/other.json", cfg.ConfigPath)
}
