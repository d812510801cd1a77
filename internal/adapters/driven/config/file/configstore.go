package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/windlass-labs/windlass/internal/logger"
)

// Config holds all windlass settings persisted to config.toml.
type Config struct {
	Hub       HubConfig       `toml:"hub"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Dispatch  DispatchConfig  `toml:"dispatch"`
	Storage   StorageConfig   `toml:"storage"`
}

// HubConfig holds hub API client settings.
type HubConfig struct {
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
}

// SchedulerConfig holds the sync scheduling settings.
type SchedulerConfig struct {
	// IntervalMinutes is the pause between scheduling passes.
	IntervalMinutes int `toml:"interval_minutes"`

	// EligibilityWindowMinutes, when positive, skips organisations
	// synced within the window. Zero syncs every organisation each
	// pass.
	EligibilityWindowMinutes int `toml:"eligibility_window_minutes,omitempty"`
}

// DispatchConfig holds job execution settings.
type DispatchConfig struct {
	MaxAttempts       int `toml:"max_attempts,omitempty"`
	RetryDelaySeconds int `toml:"retry_delay_seconds,omitempty"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// DataDir is where the SQLite database lives. Empty selects the
	// in-memory store.
	DataDir string `toml:"data_dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		Scheduler: SchedulerConfig{
			IntervalMinutes: 60,
		},
	}
}

// Interval returns the scheduling interval as a duration.
func (c SchedulerConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// EligibilityWindow returns the eligibility window as a duration.
// Zero means every organisation is eligible on every pass.
func (c SchedulerConfig) EligibilityWindow() time.Duration {
	if c.EligibilityWindowMinutes <= 0 {
		return 0
	}
	return time.Duration(c.EligibilityWindowMinutes) * time.Minute
}

// ConfigStore is a file-based configuration store using TOML.
// Configuration is stored in a TOML file within the windlass config
// directory.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.windlass/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".windlass")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   DefaultConfig(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update applies fn to the configuration and persists the result.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.config)
	return s.save()
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	s.config = cfg
	return nil
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Watch reloads the configuration whenever the file changes on disk and
// calls onChange with the fresh copy. It blocks until ctx is cancelled.
// Editors often replace the file rather than write it in place, so the
// parent directory is watched and events are filtered by name.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(); err != nil {
				logger.Warn("Failed to reload config: %v", err)
				continue
			}
			onChange(s.Config())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}
