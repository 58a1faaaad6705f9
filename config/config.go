// Package config provides the YAML configuration model for the reminder
// daemon, with first-run config creation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SMTPConfig holds the outbound mail transport settings. When absent,
// reminders are discarded by a noop sender.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Config is the top-level daemon configuration.
type Config struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string `yaml:"database_path"`

	// ReminderCron is a cron-style schedule string (e.g. "* * * * *")
	// controlling how often due reminders are swept.
	ReminderCron string `yaml:"reminder_cron"`

	// DefaultLeadMinutes is the reminder lead time applied to series that
	// do not specify their own.
	DefaultLeadMinutes int `yaml:"default_lead_minutes"`

	// GenerateCount is how many occurrences are materialized when a
	// series is created.
	GenerateCount int `yaml:"generate_count"`

	// SMTP, if non-nil, enables email delivery.
	SMTP *SMTPConfig `yaml:"smtp,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:       "meetseries.db",
		ReminderCron:       "* * * * *",
		DefaultLeadMinutes: 60,
		GenerateCount:      12,
	}
}

// Load reads the configuration at path. On first run (file missing) the
// default configuration is written there and returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path with restrictive permissions,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
