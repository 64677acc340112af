// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package metrics provides Prometheus instrumentation for Coursegraph.
//
// Metrics cover the recommendation engine (request latency, fallback branch
// taken), the profile sync coordinator (sync attempts, retries, single-flight
// coalescing, bookmark toggles) and the HTTP surface. They are exposed at
// /metrics in Prometheus text format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent computing a recommendation ranking",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests by ranking branch",
		},
		[]string{"branch"}, // "preferences", "fallback_no_quiz", "fallback_overconstrained", "empty"
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of courses surviving the preference filter",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Profile Sync Metrics
	SyncAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_sync_attempts_total",
			Help: "Full profile sync attempts by outcome",
		},
		[]string{"outcome"}, // "success", "retryable", "auth_error", "exhausted", "no_token"
	)

	SyncCoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_sync_coalesced_total",
			Help: "Sync callers that joined an in-flight sync instead of starting one",
		},
	)

	SyncRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_sync_retries_total",
			Help: "Sync network attempts beyond the first",
		},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_sync_duration_seconds",
			Help:    "Wall time of a full profile sync including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Bookmark Metrics
	BookmarkTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmark_toggles_total",
			Help: "Bookmark toggles by action and push outcome",
		},
		[]string{"action", "outcome"}, // action: add/remove; outcome: remote/local_only/coalesced
	)

	BookmarkPushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookmark_push_duration_seconds",
			Help:    "Latency of single bookmark pushes to the remote store",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Circuit breaker open transitions",
		},
		[]string{"name"},
	)

	// Catalog Metrics
	CatalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Course catalog fetches by outcome",
		},
		[]string{"outcome"}, // "success", "error", "cached"
	)

	CatalogCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_courses",
			Help: "Number of courses in the last catalog snapshot",
		},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Currently connected UI clients",
		},
	)

	WebSocketBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_broadcasts_total",
			Help: "Messages broadcast to UI clients by type",
		},
		[]string{"type"},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSyncAttempt records the outcome of a full profile sync.
func RecordSyncAttempt(outcome string, duration time.Duration) {
	SyncAttemptsTotal.WithLabelValues(outcome).Inc()
	SyncDuration.Observe(duration.Seconds())
}

// RecordRecommendation records a recommendation request and the branch that
// produced its ranking.
func RecordRecommendation(branch string, candidates int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(branch).Inc()
	RecommendationCandidates.Observe(float64(candidates))
	RecommendationDuration.Observe(duration.Seconds())
}
