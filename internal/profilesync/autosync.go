// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAutoSyncInterval is the production background sync cadence.
const DefaultAutoSyncInterval = 30 * time.Second

// AutoSync periodically refreshes the profile cache from the remote store.
// It implements suture.Service and is meant to run under the supervision
// tree.
//
// A tick is skipped, without counting as an attempt, when a sync is already
// in flight or no session is cached.
type AutoSync struct {
	coord    *Coordinator
	interval time.Duration
	logger   zerolog.Logger
}

// NewAutoSync creates the background sync service. A non-positive interval
// falls back to DefaultAutoSyncInterval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAutoSync(coord *Coordinator, interval time.Duration, logger zerolog.Logger) *AutoSync {
	if interval <= 0 {
		interval = DefaultAutoSyncInterval
	}
	return &AutoSync{
		coord:    coord,
		interval: interval,
		logger:   logger.With().Str("component", "autosync").Logger(),
	}
}

// Serve runs the sync loop until ctx is cancelled.
func (a *AutoSync) Serve(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", a.interval).Msg("Auto-sync started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Auto-sync stopping")
			return ctx.Err()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *AutoSync) tick(ctx context.Context) {
	if a.coord.IsSyncing() {
		a.logger.Debug().Msg("Sync already in flight, skipping tick")
		return
	}
	if !a.coord.HasSession() {
		return
	}

	if err := a.coord.SyncProfile(ctx); err != nil {
		switch {
		case errors.Is(err, ErrNoToken):
			// Session vanished between the check and the sync.
		case errors.Is(err, ErrAuthRequired):
			a.logger.Warn().Msg("Auto-sync hit auth failure, session torn down")
		case errors.Is(err, context.Canceled):
		default:
			a.logger.Warn().Err(err).Msg("Auto-sync failed")
		}
	}
}

// String names the service in supervisor logs.
func (a *AutoSync) String() string {
	return "profilesync.AutoSync"
}
