// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// LoopMeIn agent.
//
// Configuration is loaded from a single file specified by the
// LOOPMEIN_CONFIG environment variable or a --config flag. There is
// no automatic discovery and no fallback search path: when no file
// is given, Default() is used as-is. Tokens never appear in the
// config file — they are read from SLACK_APP_TOKEN and
// SLACK_BOT_TOKEN at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full agent configuration.
type Config struct {
	// Database configures the SQLite mirror store.
	Database DatabaseConfig `yaml:"database"`

	// Slack configures the Web API endpoint.
	Slack SlackConfig `yaml:"slack"`

	// Resync configures the periodic channel-list resynchronization.
	Resync ResyncConfig `yaml:"resync"`

	// Connection configures the Socket Mode supervisor.
	Connection ConnectionConfig `yaml:"connection"`
}

// DatabaseConfig configures the SQLite mirror store.
type DatabaseConfig struct {
	// Path is the SQLite database file. Created if absent.
	Path string `yaml:"path"`
}

// SlackConfig configures the Slack Web API client.
type SlackConfig struct {
	// APIURL is the Web API base URL. Only overridden in tests.
	APIURL string `yaml:"api_url"`
}

// ResyncConfig configures the periodic full resync of the channel
// mirror.
type ResyncConfig struct {
	// Interval is the resync period as a Go duration string
	// (e.g. "30m"). The first resync runs immediately at startup.
	Interval string `yaml:"interval"`
}

// ConnectionConfig configures the Socket Mode connection supervisor.
type ConnectionConfig struct {
	// RetryDelay is the fixed wait after a failed handshake, as a
	// Go duration string (e.g. "10s"). There is no backoff growth
	// and no retry cap.
	RetryDelay string `yaml:"retry_delay"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Database:   DatabaseConfig{Path: "loopmein.db"},
		Slack:      SlackConfig{APIURL: "https://slack.com/api"},
		Resync:     ResyncConfig{Interval: "30m"},
		Connection: ConnectionConfig{RetryDelay: "10s"},
	}
}

// Load reads the config file named by the LOOPMEIN_CONFIG environment
// variable. Returns Default() when the variable is unset.
func Load() (Config, error) {
	path := os.Getenv("LOOPMEIN_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a config file. Fields left empty in
// the file keep their defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills fields the file explicitly set to empty.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaults.Database.Path
	}
	if cfg.Slack.APIURL == "" {
		cfg.Slack.APIURL = defaults.Slack.APIURL
	}
	if cfg.Resync.Interval == "" {
		cfg.Resync.Interval = defaults.Resync.Interval
	}
	if cfg.Connection.RetryDelay == "" {
		cfg.Connection.RetryDelay = defaults.Connection.RetryDelay
	}
}

// Validate checks that duration fields parse and are positive.
func (c Config) Validate() error {
	if _, err := c.ResyncInterval(); err != nil {
		return err
	}
	if _, err := c.RetryDelay(); err != nil {
		return err
	}
	return nil
}

// ResyncInterval returns the parsed resync period.
func (c Config) ResyncInterval() (time.Duration, error) {
	return parsePositiveDuration("resync.interval", c.Resync.Interval)
}

// RetryDelay returns the parsed handshake retry delay.
func (c Config) RetryDelay() (time.Duration, error) {
	return parsePositiveDuration("connection.retry_delay", c.Connection.RetryDelay)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", field, d)
	}
	return d, nil
}
