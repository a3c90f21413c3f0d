// Package config provides configuration loading, panel manifests, and
// hot reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Routes   RoutesConfig   `yaml:"routes"`
	Panels   PanelsConfig   `yaml:"panels"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RoutesConfig configures where the panel endpoints are mounted.
type RoutesConfig struct {
	BasePath string `yaml:"base_path"`
}

// PanelsConfig locates panel manifests.
type PanelsConfig struct {
	// Dir is scanned for *.yaml and *.yml manifests.
	Dir string `yaml:"dir"`

	// Files lists individual manifests loaded after the directory scan.
	Files []string `yaml:"files"`
}

// SecurityConfig configures nonces and permissions.
type SecurityConfig struct {
	// NonceKey keeps issued nonces valid across restarts. Empty means a
	// random per-process key.
	NonceKey string `yaml:"nonce_key,omitempty"`

	// Capabilities is the grant set for the built-in permission checker.
	// Empty grants every capability; embedding applications wire their
	// own checker instead.
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	FLYOUTS_SERVER_HOST     - Server host (default: 0.0.0.0)
//	FLYOUTS_SERVER_PORT     - Server port (default: 8080)
//	FLYOUTS_BASE_PATH       - Route mount path (default: /flyouts)
//	FLYOUTS_PANELS_DIR      - Panel manifest directory
//	FLYOUTS_NONCE_KEY       - Stable nonce key
//	FLYOUTS_LOG_LEVEL       - Log level (default: info)
//	FLYOUTS_LOG_FORMAT      - Log format: json or console (default: json)
//	FLYOUTS_METRICS_ENABLED - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies FLYOUTS_* environment variables to the
// config. Environment variables always override file-based values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLYOUTS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FLYOUTS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FLYOUTS_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("FLYOUTS_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("FLYOUTS_BASE_PATH"); v != "" {
		cfg.Routes.BasePath = v
	}
	if v := os.Getenv("FLYOUTS_PANELS_DIR"); v != "" {
		cfg.Panels.Dir = v
	}
	if v := os.Getenv("FLYOUTS_NONCE_KEY"); v != "" {
		cfg.Security.NonceKey = v
	}

	if v := os.Getenv("FLYOUTS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FLYOUTS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("FLYOUTS_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("FLYOUTS_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Routes.BasePath == "" {
		cfg.Routes.BasePath = "/flyouts"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.Routes.BasePath, "/") {
		return fmt.Errorf("routes.base_path must start with '/', got %q", cfg.Routes.BasePath)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	for i, f := range cfg.Panels.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("panels.files[%d] is empty", i)
		}
	}

	return nil
}
