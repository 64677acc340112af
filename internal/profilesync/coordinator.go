// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/events"
	"github.com/skilluphq/coursegraph/internal/metrics"
	"github.com/skilluphq/coursegraph/internal/models"
	"github.com/skilluphq/coursegraph/internal/store"
)

// API is the remote profile store surface the coordinator drives. HTTPClient
// is the production implementation; CircuitBreakerClient wraps it.
type API interface {
	FetchProfile(ctx context.Context, token string) (*ProfileData, error)
	SaveQuiz(ctx context.Context, token string, quiz *models.QuizResults) (*models.User, error)
	PushBookmark(ctx context.Context, token, courseID, action string) ([]string, error)
	PushBookmarkSet(ctx context.Context, token string, ids []string) error
	PushStats(ctx context.Context, token string, stats *models.UserStats) error
}

// Sentinel errors surfaced by coordinator operations.
var (
	// ErrNoToken means the operation needs a session and none is cached.
	ErrNoToken = errors.New("profilesync: no auth token")

	// ErrAuthRequired means the remote store rejected the session. The
	// local cache has already been torn down when this is returned.
	ErrAuthRequired = errors.New("profilesync: authentication required")

	// ErrInvalidCourseID means a bookmark toggle carried an empty or junk
	// course id.
	ErrInvalidCourseID = errors.New("profilesync: invalid course id")
)

// Options tune the coordinator's timeouts and retry schedule. Zero values
// fall back to production defaults.
type Options struct {
	// SyncTimeout bounds each full-profile network attempt.
	SyncTimeout time.Duration

	// BookmarkTimeout bounds each bookmark and stats push.
	BookmarkTimeout time.Duration

	// ToggleGrace is how long a course id stays debounced after its toggle
	// completes, absorbing double-clicks.
	ToggleGrace time.Duration

	// Retry is the full-sync retry schedule.
	Retry Policy
}

func (o *Options) withDefaults() {
	if o.SyncTimeout <= 0 {
		o.SyncTimeout = 10 * time.Second
	}
	if o.BookmarkTimeout <= 0 {
		o.BookmarkTimeout = 5 * time.Second
	}
	if o.ToggleGrace <= 0 {
		o.ToggleGrace = 500 * time.Millisecond
	}
	if o.Retry.MaxAttempts < 1 {
		o.Retry = DefaultPolicy
	}
	if o.Retry.Interval <= 0 {
		o.Retry.Interval = DefaultPolicy.Interval
	}
}

// Coordinator owns all traffic between the local profile cache and the
// remote profile store.
type Coordinator struct {
	cache  *store.ProfileCache
	api    API
	bus    *events.Bus
	logger zerolog.Logger
	opts   Options

	// mu guards the single-flight sync state.
	mu      sync.Mutex
	syncing bool
	waiters []chan error

	// toggleMu guards the per-course debounce set.
	toggleMu sync.Mutex
	toggles  map[string]bool
}

// NewCoordinator creates a coordinator. bus may be nil when no observers are
// wired (tests).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCoordinator(cache *store.ProfileCache, api API, bus *events.Bus, logger zerolog.Logger, opts Options) *Coordinator {
	opts.withDefaults()
	return &Coordinator{
		cache:   cache,
		api:     api,
		bus:     bus,
		logger:  logger.With().Str("component", "profilesync").Logger(),
		opts:    opts,
		toggles: make(map[string]bool),
	}
}

// SyncProfile pulls the full remote profile and replaces the local cache
// with it. Concurrent callers coalesce onto the in-flight sync and share its
// result; exactly one upstream fetch runs at a time.
func (c *Coordinator) SyncProfile(ctx context.Context) error {
	c.mu.Lock()
	if c.syncing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		metrics.SyncCoalescedTotal.Inc()
		c.logger.Debug().Msg("Joining in-flight profile sync")

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.syncing = true
	c.mu.Unlock()

	err := c.doSync(ctx)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.syncing = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
	return err
}

// IsSyncing reports whether a full sync is currently in flight.
func (c *Coordinator) IsSyncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

// HasSession reports whether a token is cached.
func (c *Coordinator) HasSession() bool {
	_, ok := c.cache.Token()
	return ok
}

// doSync runs the retry loop for one logical sync. Exactly one doSync runs
// at a time (enforced by SyncProfile).
func (c *Coordinator) doSync(ctx context.Context) error {
	start := time.Now()

	token, ok := c.cache.Token()
	if !ok {
		metrics.RecordSyncAttempt("no_token", time.Since(start))
		return ErrNoToken
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			metrics.SyncRetriesTotal.Inc()
			if err := sleep(ctx, c.opts.Retry.Backoff(attempt-1)); err != nil {
				metrics.RecordSyncAttempt("exhausted", time.Since(start))
				return fmt.Errorf("profile sync cancelled during backoff: %w", err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.opts.SyncTimeout)
		data, err := c.api.FetchProfile(callCtx, token)
		cancel()

		if err == nil {
			if applyErr := c.applyRemote(data); applyErr != nil {
				metrics.RecordSyncAttempt("exhausted", time.Since(start))
				return fmt.Errorf("apply remote profile: %w", applyErr)
			}
			metrics.RecordSyncAttempt("success", time.Since(start))
			c.logger.Info().
				Int("attempt", attempt).
				Int("bookmarks", len(data.Bookmarks)).
				Msg("Profile sync complete")
			return nil
		}

		if IsAuthError(err) {
			c.teardown("auth_error")
			metrics.RecordSyncAttempt("auth_error", time.Since(start))
			return fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}

		lastErr = err
		metrics.SyncAttemptsTotal.WithLabelValues("retryable").Inc()
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.opts.Retry.MaxAttempts).
			Msg("Profile sync attempt failed")
	}

	metrics.RecordSyncAttempt("exhausted", time.Since(start))
	return fmt.Errorf("profile sync failed after %d attempts: %w", c.opts.Retry.MaxAttempts, lastErr)
}

// applyRemote makes the remote snapshot the local truth. The user object
// only overwrites when the remote has one, the quiz record only when the
// remote marks it completed (an in-progress remote record must not clobber a
// finished local one); the bookmark set is replaced unconditionally since
// the remote store is authoritative for it.
func (c *Coordinator) applyRemote(data *ProfileData) error {
	if data.User != nil {
		if err := c.cache.SetUser(data.User); err != nil {
			return err
		}
	}
	if data.QuizResults.Completed() {
		if err := c.cache.SetQuizResults(data.QuizResults); err != nil {
			return err
		}
	}
	if err := c.cache.SetBookmarks(data.Bookmarks); err != nil {
		return err
	}

	evt := events.ProfileSynced{
		BookmarkCount: len(models.CleanBookmarks(data.Bookmarks)),
		QuizCompleted: data.QuizResults.Completed(),
		SyncedAt:      time.Now().UTC(),
	}
	if data.User != nil {
		evt.UserID = data.User.ID
	}
	c.publish(events.TopicProfileSynced, evt)
	return nil
}

// ToggleBookmark flips the bookmark state for a course. The local cache
// updates first; the remote push follows, and its answer replaces the local
// set when it lands. A toggle already in flight for the same id wins: later
// calls return the state that toggle settles on without touching anything.
//
// Returns whether the course is bookmarked after the operation.
func (c *Coordinator) ToggleBookmark(ctx context.Context, id any) (bool, error) {
	courseID := models.NormalizeID(id)
	if courseID == "" || courseID == "undefined" || courseID == "null" {
		return false, ErrInvalidCourseID
	}

	// The map value is the state the in-flight toggle settles on, so a
	// coalesced caller reports that state even before the optimistic write
	// has landed.
	c.toggleMu.Lock()
	if target, busy := c.toggles[courseID]; busy {
		c.toggleMu.Unlock()
		action := ActionRemove
		if target {
			action = ActionAdd
		}
		metrics.BookmarkTogglesTotal.WithLabelValues(action, "coalesced").Inc()
		c.logger.Debug().Str("course_id", courseID).Msg("Bookmark toggle already in flight, ignoring")
		return target, nil
	}
	wasBookmarked := c.cache.IsBookmarked(courseID)
	c.toggles[courseID] = !wasBookmarked
	c.toggleMu.Unlock()

	// Hold the debounce for a grace window after completion so a double
	// click does not immediately undo the toggle.
	defer time.AfterFunc(c.opts.ToggleGrace, func() {
		c.toggleMu.Lock()
		delete(c.toggles, courseID)
		c.toggleMu.Unlock()
	})

	action := ActionAdd
	if wasBookmarked {
		action = ActionRemove
	}

	// Optimistic local update.
	local := c.cache.Bookmarks()
	if wasBookmarked {
		kept := make([]string, 0, len(local))
		for _, b := range local {
			if b != courseID {
				kept = append(kept, b)
			}
		}
		local = kept
	} else {
		local = append(local, courseID)
	}
	if err := c.cache.SetBookmarks(local); err != nil {
		return wasBookmarked, fmt.Errorf("update local bookmarks: %w", err)
	}

	token, ok := c.cache.Token()
	if !ok {
		metrics.BookmarkTogglesTotal.WithLabelValues(action, "local_only").Inc()
		c.publish(events.TopicBookmarkToggled, events.BookmarkToggled{
			CourseID:  courseID,
			Action:    action,
			Bookmarks: local,
		})
		return !wasBookmarked, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.BookmarkTimeout)
	defer cancel()

	pushStart := time.Now()
	remote, err := c.api.PushBookmark(callCtx, token, courseID, action)
	metrics.BookmarkPushDuration.Observe(time.Since(pushStart).Seconds())

	if err != nil {
		if IsAuthError(err) {
			c.teardown("auth_error")
			return false, fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}

		// Push failed: the optimistic local state stands until the next
		// full sync reconciles it.
		metrics.BookmarkTogglesTotal.WithLabelValues(action, "local_only").Inc()
		c.logger.Warn().
			Err(err).
			Str("course_id", courseID).
			Str("action", action).
			Msg("Bookmark push failed, keeping local state")
		c.publish(events.TopicBookmarkToggled, events.BookmarkToggled{
			CourseID:  courseID,
			Action:    action,
			Bookmarks: local,
		})
		return !wasBookmarked, nil
	}

	if err := c.cache.SetBookmarks(remote); err != nil {
		return !wasBookmarked, fmt.Errorf("store remote bookmarks: %w", err)
	}

	metrics.BookmarkTogglesTotal.WithLabelValues(action, "remote").Inc()
	c.publish(events.TopicBookmarkToggled, events.BookmarkToggled{
		CourseID:        courseID,
		Action:          action,
		RemoteConfirmed: true,
		Bookmarks:       remote,
	})
	return c.cache.IsBookmarked(courseID), nil
}

// SyncBookmarks replaces the remote bookmark set with the local one. Used
// after offline edits; best-effort in the sense that callers typically log
// rather than fail on error.
func (c *Coordinator) SyncBookmarks(ctx context.Context) error {
	token, ok := c.cache.Token()
	if !ok {
		return ErrNoToken
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.BookmarkTimeout)
	defer cancel()

	if err := c.api.PushBookmarkSet(callCtx, token, c.cache.Bookmarks()); err != nil {
		if IsAuthError(err) {
			c.teardown("auth_error")
			return fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
		return fmt.Errorf("push bookmark set: %w", err)
	}
	return nil
}

// SaveQuizResults persists a quiz record locally first, then uploads it.
// The returned flag reports whether the remote store accepted it; a remote
// failure is not an error as long as the local save succeeded.
func (c *Coordinator) SaveQuizResults(ctx context.Context, quiz *models.QuizResults) (bool, error) {
	if quiz == nil {
		return false, errors.New("profilesync: nil quiz results")
	}
	if quiz.CompletedAt.IsZero() {
		quiz.CompletedAt = time.Now().UTC()
	}

	if err := c.cache.SetQuizResults(quiz); err != nil {
		return false, fmt.Errorf("store quiz results: %w", err)
	}

	token, ok := c.cache.Token()
	if !ok {
		c.publish(events.TopicQuizSaved, events.QuizSaved{CompletedAt: quiz.CompletedAt})
		return false, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.SyncTimeout)
	defer cancel()

	user, err := c.api.SaveQuiz(callCtx, token, quiz)
	if err != nil {
		if IsAuthError(err) {
			c.teardown("auth_error")
			return false, fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
		c.logger.Warn().Err(err).Msg("Quiz upload failed, record kept locally")
		c.publish(events.TopicQuizSaved, events.QuizSaved{CompletedAt: quiz.CompletedAt})
		return false, nil
	}

	if user != nil {
		if err := c.cache.SetUser(user); err != nil {
			return true, fmt.Errorf("store updated user: %w", err)
		}
	}
	c.publish(events.TopicQuizSaved, events.QuizSaved{
		RemoteSaved: true,
		CompletedAt: quiz.CompletedAt,
	})
	return true, nil
}

// UpdateStats pushes progress counters upstream. Best-effort: without a
// session it is a no-op, and transient failures are logged, not returned.
func (c *Coordinator) UpdateStats(ctx context.Context, stats *models.UserStats) error {
	token, ok := c.cache.Token()
	if !ok {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.BookmarkTimeout)
	defer cancel()

	if err := c.api.PushStats(callCtx, token, stats); err != nil {
		if IsAuthError(err) {
			c.teardown("auth_error")
			return fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
		c.logger.Warn().Err(err).Msg("Stats push failed")
	}
	return nil
}

// SessionStart stores the session atomically and kicks off a background
// profile sync so the cache converges without waiting for the first request.
func (c *Coordinator) SessionStart(ctx context.Context, token string, user *models.User) error {
	if err := c.cache.SetSession(token, user); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	go func() {
		if err := c.SyncProfile(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, ErrNoToken) {
			c.logger.Warn().Err(err).Msg("Initial profile sync failed")
		}
	}()
	return nil
}

// Logout pushes the bookmark set best-effort, then tears the session down.
func (c *Coordinator) Logout(ctx context.Context) error {
	if err := c.SyncBookmarks(ctx); err != nil && !errors.Is(err, ErrNoToken) && !errors.Is(err, ErrAuthRequired) {
		c.logger.Warn().Err(err).Msg("Final bookmark push failed during logout")
	}
	c.teardown("logout")
	return nil
}

// teardown clears the cached session and announces it. Called on explicit
// logout and on terminal auth failures.
func (c *Coordinator) teardown(reason string) {
	if err := c.cache.Clear(); err != nil {
		c.logger.Error().Err(err).Msg("Session teardown failed to clear cache")
	}
	c.logger.Info().Str("reason", reason).Msg("Session torn down")
	c.publish(events.TopicSessionEnded, events.SessionEnded{Reason: reason})
}

// publish sends an event if a bus is wired. Publish failures are logged;
// observers are never allowed to fail a sync operation.
func (c *Coordinator) publish(topic string, payload any) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(topic, payload); err != nil {
		c.logger.Error().Err(err).Str("topic", topic).Msg("Event publish failed")
	}
}
