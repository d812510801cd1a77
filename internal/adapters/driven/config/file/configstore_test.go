package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Defaults(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := store.Config()
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval())
	assert.Equal(t, time.Duration(0), cfg.Scheduler.EligibilityWindow())
	assert.Empty(t, cfg.Hub.BaseURL)
}

func TestConfigStore_SaveAndReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	err = store.Update(func(cfg *Config) {
		cfg.Hub.BaseURL = "https://hub.example.com"
		cfg.Hub.APIKey = "secret"
		cfg.Scheduler.IntervalMinutes = 15
		cfg.Scheduler.EligibilityWindowMinutes = 30
		cfg.Storage.DataDir = "/var/lib/windlass"
	})
	require.NoError(t, err)

	// A fresh store picks up the persisted file.
	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg := reloaded.Config()
	assert.Equal(t, "https://hub.example.com", cfg.Hub.BaseURL)
	assert.Equal(t, "secret", cfg.Hub.APIKey)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval())
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.EligibilityWindow())
	assert.Equal(t, "/var/lib/windlass", cfg.Storage.DataDir)
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[hub]
base_url = "https://hub.example.com"
api_key = "key"

[scheduler]
interval_minutes = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg := store.Config()
	assert.Equal(t, "https://hub.example.com", cfg.Hub.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Interval())
}

func TestConfigStore_LoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestSchedulerConfig_IntervalFallback(t *testing.T) {
	assert.Equal(t, time.Hour, SchedulerConfig{}.Interval())
	assert.Equal(t, time.Hour, SchedulerConfig{IntervalMinutes: -5}.Interval())
	assert.Equal(t, 2*time.Minute, SchedulerConfig{IntervalMinutes: 2}.Interval())
}

func TestConfigStore_Watch(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- store.Watch(ctx, func(cfg Config) {
			changes <- cfg
		})
	}()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, store.Update(func(cfg *Config) {
		cfg.Scheduler.IntervalMinutes = 42
	}))

	select {
	case cfg := <-changes:
		assert.Equal(t, 42, cfg.Scheduler.IntervalMinutes)
	case <-time.After(3 * time.Second):
		t.Fatal("config change was not observed")
	}

	cancel()
	select {
	case err := <-watchDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
