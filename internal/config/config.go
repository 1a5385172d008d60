// Package config persists user settings to ~/.termhub/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zhubert/termhub/internal/term"
)

// Config holds the application configuration
type Config struct {
	DefaultShell string `json:"default_shell,omitempty"` // shell name, empty for platform default
	DefaultCols  int    `json:"default_cols,omitempty"`
	DefaultRows  int    `json:"default_rows,omitempty"`
	MaxSessions  int    `json:"max_sessions,omitempty"`

	SweepEnabled         bool `json:"sweep_enabled"`
	SweepIntervalSeconds int  `json:"sweep_interval_seconds,omitempty"`
	GraceTimeoutSeconds  int  `json:"grace_timeout_seconds,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termhub"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Default returns a config with stock settings, unbound to any file.
func Default() *Config {
	return &Config{
		DefaultCols:          term.DefaultCols,
		DefaultRows:          term.DefaultRows,
		MaxSessions:          term.DefaultMaxSessions,
		SweepEnabled:         true,
		SweepIntervalSeconds: int(term.DefaultSweepInterval / time.Second),
		GraceTimeoutSeconds:  int(term.DefaultGraceTimeout / time.Second),
	}
}

// Load reads the config from the default location, or returns defaults if
// the file doesn't exist yet.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.DefaultCols <= 0 {
		return fmt.Errorf("default_cols must be positive, got %d", c.DefaultCols)
	}
	if c.DefaultRows <= 0 {
		return fmt.Errorf("default_rows must be positive, got %d", c.DefaultRows)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive, got %d", c.MaxSessions)
	}
	if c.SweepIntervalSeconds < 0 {
		return fmt.Errorf("sweep_interval_seconds must not be negative, got %d", c.SweepIntervalSeconds)
	}
	if c.GraceTimeoutSeconds < 0 {
		return fmt.Errorf("grace_timeout_seconds must not be negative, got %d", c.GraceTimeoutSeconds)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.filePath
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ManagerSettings maps the config onto manager settings. A disabled sweep
// maps to a zero interval.
func (c *Config) ManagerSettings() term.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := term.Settings{
		MaxSessions:  c.MaxSessions,
		GraceTimeout: time.Duration(c.GraceTimeoutSeconds) * time.Second,
		DefaultCols:  c.DefaultCols,
		DefaultRows:  c.DefaultRows,
		DefaultShell: c.DefaultShell,
	}
	if c.SweepEnabled {
		s.SweepInterval = time.Duration(c.SweepIntervalSeconds) * time.Second
	}
	return s
}

// GetDefaultShell returns the configured default shell name
func (c *Config) GetDefaultShell() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DefaultShell
}

// SetDefaultShell sets the configured default shell name
func (c *Config) SetDefaultShell(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DefaultShell = name
}
