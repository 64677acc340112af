// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"context"
	"time"
)

// Policy describes the retry schedule for full profile syncs: a bounded
// number of attempts with linear backoff between them.
type Policy struct {
	// MaxAttempts is the total number of network attempts, including the
	// first. Must be at least 1.
	MaxAttempts int

	// Interval is the backoff unit. The wait after failed attempt N is
	// N * Interval, so the schedule grows linearly.
	Interval time.Duration
}

// DefaultPolicy is the production schedule: three attempts, waiting one
// second after the first failure and two after the second.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	Interval:    time.Second,
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.Interval
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
