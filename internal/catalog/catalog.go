// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package catalog provides the course inventory the recommendation engine
// ranks. Courses come from an upstream catalog service and are cached as an
// immutable snapshot; a rate limiter caps upstream fetches so a burst of
// recommendation requests cannot stampede the catalog.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/skilluphq/coursegraph/internal/metrics"
	"github.com/skilluphq/coursegraph/internal/models"
)

// DefaultTTL is how long a snapshot stays fresh before a fetch is attempted.
const DefaultTTL = 5 * time.Minute

// Source fetches the full course list. HTTPSource is the production
// implementation; tests supply fakes.
type Source interface {
	FetchCourses(ctx context.Context) ([]models.Course, error)
}

// HTTPSource pulls the course list from the upstream catalog JSON endpoint.
type HTTPSource struct {
	url    string
	http   *http.Client
	logger zerolog.Logger
}

// NewHTTPSource creates a catalog source for the given base URL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPSource(baseURL string, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		url: strings.TrimRight(baseURL, "/") + "/api/courses",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("component", "catalog_source").Logger(),
	}
}

// FetchCourses retrieves the full course list.
func (s *HTTPSource) FetchCourses(ctx context.Context) ([]models.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	// The endpoint serves either a bare array or a {courses: [...]} wrapper.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	var courses []models.Course
	if err := json.Unmarshal(data, &courses); err == nil {
		return courses, nil
	}

	var wrapped struct {
		Courses []models.Course `json:"courses"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return wrapped.Courses, nil
}

// Catalog caches the course list and refreshes it lazily.
type Catalog struct {
	source  Source
	ttl     time.Duration
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu        sync.RWMutex
	snapshot  []models.Course
	fetchedAt time.Time
}

// New creates a catalog over source. A non-positive ttl falls back to
// DefaultTTL. The limiter allows one upstream fetch per ttl with a small
// burst for startup.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(source Source, ttl time.Duration, logger zerolog.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		source:  source,
		ttl:     ttl,
		limiter: rate.NewLimiter(rate.Every(ttl), 2),
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

// Courses returns the current course snapshot, refreshing it when stale. A
// failed or rate-limited refresh serves the previous snapshot; only a cold
// cache with no upstream returns an error.
func (c *Catalog) Courses(ctx context.Context) ([]models.Course, error) {
	c.mu.RLock()
	fresh := c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl
	snapshot := c.snapshot
	c.mu.RUnlock()

	if fresh {
		metrics.CatalogFetchesTotal.WithLabelValues("cached").Inc()
		return snapshot, nil
	}

	if !c.limiter.Allow() {
		if snapshot != nil {
			metrics.CatalogFetchesTotal.WithLabelValues("cached").Inc()
			return snapshot, nil
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("catalog rate limit: %w", err)
		}
	}

	courses, err := c.source.FetchCourses(ctx)
	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues("error").Inc()
		if snapshot != nil {
			c.logger.Warn().Err(err).Msg("Catalog refresh failed, serving stale snapshot")
			return snapshot, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = courses
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	metrics.CatalogFetchesTotal.WithLabelValues("success").Inc()
	metrics.CatalogCourses.Set(float64(len(courses)))
	c.logger.Info().Int("courses", len(courses)).Msg("Catalog snapshot refreshed")
	return courses, nil
}

// Course returns a single course by id from the current snapshot.
func (c *Catalog) Course(ctx context.Context, id string) (*models.Course, bool, error) {
	courses, err := c.Courses(ctx)
	if err != nil {
		return nil, false, err
	}
	normalized := models.NormalizeID(id)
	for i := range courses {
		if courses[i].ID == normalized {
			return &courses[i], true, nil
		}
	}
	return nil, false, nil
}

// Prime loads the snapshot eagerly. Used at startup so the first
// recommendation request does not pay the fetch.
func (c *Catalog) Prime(ctx context.Context) error {
	_, err := c.Courses(ctx)
	return err
}
