package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SyncDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, cfg.SyncEnabled)
	assert.False(t, cfg.SyncRunOnStart)
	assert.Equal(t, time.Hour, cfg.SyncInterval)
	assert.Equal(t, 15*time.Minute, cfg.SyncLockTTL)
}

func TestLoad_SyncFromEnvironment(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_RUN_ON_START", "true")
	t.Setenv("SYNC_INTERVAL", "30m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, cfg.SyncEnabled)
	assert.True(t, cfg.SyncRunOnStart)
	assert.Equal(t, 30*time.Minute, cfg.SyncInterval)
}
