// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package config loads service configuration from three layers with clear
// precedence: built-in defaults, an optional YAML file, then environment
// variables prefixed COURSEGRAPH_.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/skilluphq/coursegraph/internal/validation"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "COURSEGRAPH_CONFIG"

// DefaultConfigPaths are searched in order when no explicit path is set.
var DefaultConfigPaths = []string{
	"coursegraph.yaml",
	"config/coursegraph.yaml",
	"/etc/coursegraph/config.yaml",
}

// Config is the full service configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Log          LogConfig          `koanf:"log"`
	Database     DatabaseConfig     `koanf:"database"`
	ProfileStore ProfileStoreConfig `koanf:"profile_store"`
	Catalog      CatalogConfig      `koanf:"catalog"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins; env vars supply them
	// comma-separated.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is requests per minute per client IP. Zero disables.
	RateLimit int `koanf:"rate_limit" validate:"min=0"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig locates the Badger directory backing the profile cache.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// ProfileStoreConfig configures the remote profile store client and the
// sync coordinator.
type ProfileStoreConfig struct {
	URL string `koanf:"url" validate:"required,url"`

	SyncTimeout     time.Duration `koanf:"sync_timeout"`
	BookmarkTimeout time.Duration `koanf:"bookmark_timeout"`

	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1,max=10"`
	RetryInterval time.Duration `koanf:"retry_interval"`

	AutoSyncInterval time.Duration `koanf:"auto_sync_interval"`

	// CircuitBreaker toggles the breaker around the store client.
	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// CatalogConfig configures the upstream course catalog.
type CatalogConfig struct {
	URL string `koanf:"url" validate:"required,url"`

	// TTL is how long a catalog snapshot stays fresh.
	TTL time.Duration `koanf:"ttl"`
}

// defaultConfig returns the built-in defaults, the lowest-precedence layer.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path: "data/coursegraph",
		},
		ProfileStore: ProfileStoreConfig{
			URL:              "http://localhost:3000",
			SyncTimeout:      10 * time.Second,
			BookmarkTimeout:  5 * time.Second,
			RetryAttempts:    3,
			RetryInterval:    time.Second,
			AutoSyncInterval: 30 * time.Second,
			CircuitBreaker:   true,
		},
		Catalog: CatalogConfig{
			URL: "http://localhost:3000",
			TTL: 5 * time.Minute,
		},
	}
}

// Load builds the configuration: defaults, then optional YAML file, then
// COURSEGRAPH_ environment variables, then validation.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// COURSEGRAPH_SERVER_PORT -> server.port
	envProvider := env.Provider("COURSEGRAPH_", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}

// ListenAddr returns the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps COURSEGRAPH_SECTION_SOME_KEY to section.some_key. The
// first underscore separates the section; the rest of the name keeps its
// underscores.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "COURSEGRAPH_"))

	sections := []string{"server", "log", "database", "profile_store", "catalog"}
	for _, section := range sections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

// sliceConfigPaths are parsed from comma-separated strings when supplied via
// environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}
