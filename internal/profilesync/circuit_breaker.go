// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/skilluphq/coursegraph/internal/logging"
	"github.com/skilluphq/coursegraph/internal/metrics"
	"github.com/skilluphq/coursegraph/internal/models"
)

// CircuitBreakerClient wraps an API with a circuit breaker so a profile store
// outage sheds requests fast instead of tying every caller up in retries.
//
// Auth errors do not count toward tripping the breaker: they indicate an
// invalid session, not an unhealthy upstream.
type CircuitBreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewCircuitBreakerClient wraps api with circuit breaker protection.
// The circuit opens after a 60% failure rate with at least 6 requests in the
// one-minute window, and probes again after 30 seconds.
func NewCircuitBreakerClient(api API) *CircuitBreakerClient {
	const cbName = "profile-store"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 6 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		IsSuccessful: func(err error) bool {
			return err == nil || IsAuthError(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			if to == gobreaker.StateOpen {
				metrics.CircuitBreakerTrips.WithLabelValues(name).Inc()
			}
		},
	})

	return &CircuitBreakerClient{
		api:  api,
		cb:   cb,
		name: cbName,
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// FetchProfile retrieves the full profile snapshot through the breaker.
func (c *CircuitBreakerClient) FetchProfile(ctx context.Context, token string) (*ProfileData, error) {
	result, err := c.cb.Execute(func() (any, error) {
		return c.api.FetchProfile(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ProfileData), nil
}

// SaveQuiz uploads a quiz record through the breaker.
func (c *CircuitBreakerClient) SaveQuiz(ctx context.Context, token string, quiz *models.QuizResults) (*models.User, error) {
	result, err := c.cb.Execute(func() (any, error) {
		return c.api.SaveQuiz(ctx, token, quiz)
	})
	if err != nil {
		return nil, err
	}
	user, _ := result.(*models.User)
	return user, nil
}

// PushBookmark applies a single toggle through the breaker.
func (c *CircuitBreakerClient) PushBookmark(ctx context.Context, token, courseID, action string) ([]string, error) {
	result, err := c.cb.Execute(func() (any, error) {
		return c.api.PushBookmark(ctx, token, courseID, action)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// PushBookmarkSet replaces the remote bookmark set through the breaker.
func (c *CircuitBreakerClient) PushBookmarkSet(ctx context.Context, token string, ids []string) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.api.PushBookmarkSet(ctx, token, ids)
	})
	return err
}

// PushStats uploads progress counters through the breaker.
func (c *CircuitBreakerClient) PushStats(ctx context.Context, token string, stats *models.UserStats) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.api.PushStats(ctx, token, stats)
	})
	return err
}
