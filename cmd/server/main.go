// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package main is the entry point for the Coursegraph server.
//
// Coursegraph recommends courses from an upstream catalog based on a user's
// quiz answers and keeps the local profile cache (user record, quiz results,
// bookmarks) reconciled with the remote profile store.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file, and environment (Koanf v2)
//  2. Profile cache: BadgerDB-backed local profile state
//  3. Event bus: in-process Watermill pub/sub bridging sync events to WebSocket clients
//  4. Profile store client: HTTP client, optionally wrapped in a circuit breaker
//  5. Sync coordinator: single-flight profile sync with retry and bookmark debounce
//  6. Catalog: rate-limited course catalog cache
//  7. WebSocket hub and event subscriber
//  8. HTTP server: REST API plus /metrics
//
// All long-running components run under a suture supervision tree and are
// restarted on failure.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables (COURSEGRAPH_ prefix), a YAML config file
// (COURSEGRAPH_CONFIG or one of the default paths), then built-in defaults.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
// stops accepting connections and drains in-flight requests, the WebSocket
// hub closes its clients, and the Badger store is closed last.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skilluphq/coursegraph/internal/api"
	"github.com/skilluphq/coursegraph/internal/catalog"
	"github.com/skilluphq/coursegraph/internal/config"
	"github.com/skilluphq/coursegraph/internal/events"
	"github.com/skilluphq/coursegraph/internal/logging"
	"github.com/skilluphq/coursegraph/internal/profilesync"
	"github.com/skilluphq/coursegraph/internal/recommend"
	"github.com/skilluphq/coursegraph/internal/store"
	"github.com/skilluphq/coursegraph/internal/supervisor"
	ws "github.com/skilluphq/coursegraph/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	logging.Info().Msg("Starting Coursegraph with supervisor tree")
	logging.Info().
		Str("catalog_url", cfg.Catalog.URL).
		Str("profile_store_url", cfg.ProfileStore.URL).
		Str("db_path", cfg.Database.Path).
		Msg("Configuration loaded")

	kv, err := store.OpenBadger(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open profile store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile store")
		}
	}()
	cache := store.NewProfileCache(kv)
	logging.Info().Msg("Profile cache initialized")

	bus := events.NewBus(logging.Logger())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// Wrap the store client in a circuit breaker unless disabled. The
	// breaker prevents retry storms against an unhealthy profile store.
	var storeAPI profilesync.API = profilesync.NewHTTPClient(cfg.ProfileStore.URL, logging.Logger())
	if cfg.ProfileStore.CircuitBreaker {
		storeAPI = profilesync.NewCircuitBreakerClient(storeAPI)
		logging.Info().Msg("Profile store circuit breaker enabled")
	} else {
		logging.Warn().Msg("Profile store circuit breaker disabled")
	}

	coord := profilesync.NewCoordinator(cache, storeAPI, bus, logging.Logger(), profilesync.Options{
		SyncTimeout:     cfg.ProfileStore.SyncTimeout,
		BookmarkTimeout: cfg.ProfileStore.BookmarkTimeout,
		Retry: profilesync.Policy{
			MaxAttempts: cfg.ProfileStore.RetryAttempts,
			Interval:    cfg.ProfileStore.RetryInterval,
		},
	})

	cat := catalog.New(catalog.NewHTTPSource(cfg.Catalog.URL, logging.Logger()), cfg.Catalog.TTL, logging.Logger())

	matcher, err := recommend.NewMatcher(recommend.DefaultWeights(), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation matcher")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the catalog cache so the first recommendation request does not
	// pay the upstream fetch. Failure is non-fatal, the catalog retries
	// lazily with stale-while-error semantics.
	if err := cat.Prime(ctx); err != nil {
		logging.Warn().Err(err).Msg("Catalog prime failed (will retry on demand)")
	}

	// A session token may survive a restart in the cache. Reconcile with the
	// remote store right away instead of waiting for the first auto-sync tick.
	if coord.HasSession() {
		go func() {
			if err := coord.SyncProfile(ctx); err != nil {
				logging.Warn().Err(err).Msg("Startup profile sync failed")
			}
		}()
	}

	hub := ws.NewHub()
	subscriber := ws.NewSubscriber(bus, hub, logging.Logger())
	autoSync := profilesync.NewAutoSync(coord, cfg.ProfileStore.AutoSyncInterval, logging.Logger())

	handler := api.NewHandler(matcher, cat, cache, coord, hub, logging.Logger())
	router := api.NewRouter(handler, &cfg.Server)
	server := api.NewServer(router, &cfg.Server, cfg.ListenAddr(), logging.Logger())

	// Bridge zerolog to slog for sutureslog compatibility
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(hub)
	tree.AddMessagingService(subscriber)
	tree.AddMessagingService(autoSync)
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", cfg.ListenAddr()).Msg("Coursegraph started")

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("Supervisor tree exited with error")
		}
	}

	logging.Info().Msg("Coursegraph stopped")
}
