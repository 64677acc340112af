// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if cfg.ProfileStore.RetryAttempts != 3 {
		t.Errorf("ProfileStore.RetryAttempts = %d, want 3", cfg.ProfileStore.RetryAttempts)
	}
	if cfg.ProfileStore.AutoSyncInterval != 30*time.Second {
		t.Errorf("ProfileStore.AutoSyncInterval = %v, want 30s", cfg.ProfileStore.AutoSyncInterval)
	}
	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Errorf("ListenAddr() = %q", cfg.ListenAddr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COURSEGRAPH_SERVER_PORT", "9999")
	t.Setenv("COURSEGRAPH_LOG_LEVEL", "debug")
	t.Setenv("COURSEGRAPH_PROFILE_STORE_URL", "http://store.internal:3000")
	t.Setenv("COURSEGRAPH_PROFILE_STORE_SYNC_TIMEOUT", "20s")
	t.Setenv("COURSEGRAPH_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.ProfileStore.URL != "http://store.internal:3000" {
		t.Errorf("ProfileStore.URL = %q", cfg.ProfileStore.URL)
	}
	if cfg.ProfileStore.SyncTimeout != 20*time.Second {
		t.Errorf("ProfileStore.SyncTimeout = %v, want 20s", cfg.ProfileStore.SyncTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coursegraph.yaml")
	yaml := `
server:
  port: 8181
log:
  level: warn
catalog:
  ttl: 1m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Catalog.TTL != time.Minute {
		t.Errorf("Catalog.TTL = %v, want 1m", cfg.Catalog.TTL)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coursegraph.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("COURSEGRAPH_SERVER_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("COURSEGRAPH_LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil with invalid log level")
	}
}
