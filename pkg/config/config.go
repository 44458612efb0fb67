// Package config loads dump settings from defaults, an optional YAML file and
// the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = "127.0.0.1:13371"
	DefaultMaxBodyBytes = 16 * 1024
	DefaultSync         = "FULL"
	DefaultQueryCache   = 256

	EnvDB       = "DUMP_DB"
	EnvAddr     = "DUMP_ADDR"
	EnvLogLevel = "DUMP_LOG_LEVEL"
)

// Config is the complete runtime configuration.
type Config struct {
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Cache  CacheConfig  `yaml:"cache"`
}

type DBConfig struct {
	// Path is the SQLite file. Empty means the system-specific default.
	Path string `yaml:"path"`
	WAL  bool   `yaml:"wal"`
	Sync string `yaml:"sync"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CacheConfig struct {
	// Queries bounds the parsed-query cache of the store.
	Queries int `yaml:"queries"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		DB:     DBConfig{Sync: DefaultSync},
		Server: ServerConfig{Addr: DefaultAddr, MaxBodyBytes: DefaultMaxBodyBytes},
		Log:    LogConfig{Level: "info", Format: "text"},
		Cache:  CacheConfig{Queries: DefaultQueryCache},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dump/config.yaml, falling back to the
// user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "dump", "config.yaml")
}

// Load builds the configuration. An explicit path must exist; without one the
// default path is used when present.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	} else if def := DefaultPath(); def != "" {
		if _, err := os.Stat(def); err == nil {
			if err := cfg.loadYAML(def); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML overlays the values present in the file onto c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToUpper(c.DB.Sync) {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		errs = append(errs, fmt.Errorf("db.sync must be OFF, NORMAL, FULL or EXTRA, got %q", c.DB.Sync))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Cache.Queries < 0 {
		errs = append(errs, fmt.Errorf("cache.queries must be non-negative, got %d", c.Cache.Queries))
	}
	return errors.Join(errs...)
}

// WriteYAML saves the configuration to path, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
