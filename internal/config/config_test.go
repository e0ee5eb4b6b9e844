package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 30*time.Second, cfg.Reminders.Interval)
	assert.Equal(t, 60*time.Second, cfg.Reminders.Window)
	assert.Equal(t, "Inbox", cfg.Lists.DefaultName)
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	body := `
storage:
  backend: sqlite
  data_dir: /tmp/td
  timeout: 2s
reminders:
  interval: 10s
server:
  addr: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/td", cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join("/tmp/td", "taskdeck.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Reminders.Interval)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: file\n"), 0o644))

	t.Setenv("TASKDECK_STORAGE_BACKEND", "memory")
	t.Setenv("TASKDECK_REMINDERS_WINDOW", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 90*time.Second, cfg.Reminders.Window)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, *Default(), *cfg)
}
