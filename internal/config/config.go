// Package config provides configuration management for the project flow
// service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FMSoblaci/oblat-project-flow/internal/util"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"
	// FlowDir is the configuration directory
	FlowDir = ".oblat"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, host:port
	Addr string `yaml:"addr"`

	// BaseURL is the externally visible URL prefix, used when building
	// absolute links to uploaded files. Empty means relative URLs.
	BaseURL string `yaml:"base_url,omitempty"`

	// AllowedOrigin is the CORS origin echoed to browsers. "*" allows all.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// DatabaseConfig holds the storage settings.
type DatabaseConfig struct {
	// Dialect selects the SQL backend: sqlite or postgres
	Dialect string `yaml:"dialect"`

	// DSN is the connection string. For sqlite this is a file path.
	DSN string `yaml:"dsn"`
}

// UploadsConfig holds attachment storage settings.
type UploadsConfig struct {
	// Dir is the directory uploaded files are written under
	Dir string `yaml:"dir"`

	// MaxBytes caps a single upload. Zero means the default cap.
	MaxBytes int64 `yaml:"max_bytes,omitempty"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	// SessionTTL is how long a bearer token stays valid
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// StatsConfig holds dashboard aggregation settings.
type StatsConfig struct {
	// CacheTTL is how long computed dashboard counts are served from
	// cache before being recomputed
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Config represents the service configuration.
type Config struct {
	// Version is the config file version
	Version int `yaml:"version"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Auth     AuthConfig     `yaml:"auth"`
	Stats    StatsConfig    `yaml:"stats"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr:          ":8080",
			AllowedOrigin: "*",
		},
		Database: DatabaseConfig{
			Dialect: "sqlite",
			DSN:     filepath.Join(FlowDir, "flow.db"),
		},
		Uploads: UploadsConfig{
			Dir:      filepath.Join(FlowDir, "uploads"),
			MaxBytes: 10 << 20,
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
		},
		Stats: StatsConfig{
			CacheTTL: 5 * time.Second,
		},
	}
}

// Load loads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(FlowDir, ConfigFileName))
}

// LoadFrom loads the config from a specific path. A missing file yields the
// defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(FlowDir, ConfigFileName))
}

// SaveTo writes the config to a specific path, creating directories as
// needed.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Database.Dialect {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database dialect: %s", c.Database.Dialect)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}
