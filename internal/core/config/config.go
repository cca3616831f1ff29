// Package config handles configuration loading and validation for standup.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	UserEmail string         `yaml:"user_email"`
	Backend   BackendConfig  `yaml:"backend"`
	Calendar  CalendarConfig `yaml:"calendar"`
	Cache     CacheConfig    `yaml:"cache"`
	Database  DatabaseConfig `yaml:"database"`
	TUI       TUIConfig      `yaml:"tui"`
	DataDir   string         `yaml:"-"` // set by caller, not from config file
}

// BackendConfig describes how to reach the assistant backend.
type BackendConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"` // optional bearer token
	// Timeout bounds every backend request. Zero means no client-side timeout;
	// requests still end when their context is cancelled.
	Timeout time.Duration `yaml:"timeout"`
}

// CalendarConfig controls the merged calendar.
type CalendarConfig struct {
	Days      int `yaml:"days"`        // how many days of calendar events to request
	MaxPerDay int `yaml:"max_per_day"` // entries shown per grid cell before "N more"
}

// CacheConfig controls the local standup cache.
type CacheConfig struct {
	Disabled      bool          `yaml:"disabled"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DatabaseConfig holds SQLite connection settings for the local cache.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	Theme           string        `yaml:"theme"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables auto refresh
}

// Overrides are values supplied by flags or environment that win over the file.
type Overrides struct {
	UserEmail  string
	BackendURL string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL: "http://localhost:8000",
		},
		Calendar: CalendarConfig{
			Days:      60,
			MaxPerDay: 2,
		},
		Cache: CacheConfig{
			TTL:           12 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, defaults are used. Overrides are
// applied after the file and before validation.
func Load(configPath, dataDir string, overrides Overrides) (*Config, error) {
	cfg, err := Read(configPath, dataDir, overrides)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation.
func Read(configPath, dataDir string, overrides Overrides) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir

	if overrides.UserEmail != "" {
		cfg.UserEmail = overrides.UserEmail
	}
	if overrides.BackendURL != "" {
		cfg.Backend.URL = overrides.BackendURL
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills zero values the file left unset.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Calendar.Days == 0 {
		c.Calendar.Days = defaults.Calendar.Days
	}
	if c.Calendar.MaxPerDay == 0 {
		c.Calendar.MaxPerDay = defaults.Calendar.MaxPerDay
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = defaults.Cache.SweepInterval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url cannot be empty")
	}
	if _, err := url.Parse(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	if c.Calendar.Days < 1 {
		return fmt.Errorf("calendar.days must be at least 1")
	}
	if c.Calendar.MaxPerDay < 1 {
		return fmt.Errorf("calendar.max_per_day must be at least 1")
	}

	if c.Cache.TTL < 0 || c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache durations cannot be negative")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns cannot exceed database.max_open_conns")
	}

	if c.TUI.RefreshInterval < 0 {
		return fmt.Errorf("tui.refresh_interval cannot be negative")
	}

	return nil
}

// RequireUser returns an error when no user email is configured. Commands
// that talk to the backend call it; everything else runs without one.
func (c *Config) RequireUser() error {
	if c.UserEmail == "" {
		return fmt.Errorf("user email is required (set user_email in config, --user, or STANDUP_USER)")
	}
	return nil
}

// DatabasePath returns the path of the local cache database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "standup.db")
}
