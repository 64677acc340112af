// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/models"
)

// ProfileData is the full remote profile snapshot returned by the
// complete-data endpoint.
type ProfileData struct {
	User        *models.User        `json:"user"`
	QuizResults *models.QuizResults `json:"quizResults"`
	Bookmarks   []string            `json:"bookmarkedCourses"`
}

// Bookmark toggle actions accepted by the remote store.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// APIError is a non-2xx response from the remote profile store.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("profile store returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("profile store returned %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401/403 from the remote store. These
// are terminal: retrying cannot help, the session must be torn down.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// HTTPClient talks to the remote profile store over its JSON API.
//
// Per-call deadlines are the coordinator's job (via context); the embedded
// http.Client timeout is only a last-resort backstop.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a profile store client for the given base URL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPClient(baseURL string, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "profile_client").Logger(),
	}
}

// FetchProfile retrieves the full profile snapshot.
func (c *HTTPClient) FetchProfile(ctx context.Context, token string) (*ProfileData, error) {
	var data ProfileData
	if err := c.do(ctx, http.MethodGet, "/api/user/complete-data", token, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SaveQuiz uploads a completed quiz record. The response carries the updated
// safe user object (quiz counters move server-side).
func (c *HTTPClient) SaveQuiz(ctx context.Context, token string, quiz *models.QuizResults) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/user/quiz-results", token, quiz, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// PushBookmark applies a single add/remove and returns the authoritative
// bookmark set.
func (c *HTTPClient) PushBookmark(ctx context.Context, token, courseID, action string) ([]string, error) {
	body := map[string]string{
		"courseId": courseID,
		"action":   action,
	}
	var resp struct {
		Bookmarks []string `json:"bookmarkedCourses"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/user/bookmarks", token, body, &resp); err != nil {
		return nil, err
	}
	return models.CleanBookmarks(resp.Bookmarks), nil
}

// PushBookmarkSet replaces the remote bookmark set wholesale.
func (c *HTTPClient) PushBookmarkSet(ctx context.Context, token string, ids []string) error {
	body := map[string][]string{
		"bookmarkedCourses": models.CleanBookmarks(ids),
	}
	return c.do(ctx, http.MethodPut, "/api/user/bookmarks/sync", token, body, nil)
}

// PushStats uploads best-effort progress counters.
func (c *HTTPClient) PushStats(ctx context.Context, token string, stats *models.UserStats) error {
	return c.do(ctx, http.MethodPut, "/api/user/stats", token, stats, nil)
}

// do executes one authenticated JSON round trip. out may be nil when the
// response body is irrelevant.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		// Limit the error body read so a misbehaving server can't make us
		// buffer arbitrary data.
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &errBody) == nil {
				if errBody.Message != "" {
					apiErr.Message = errBody.Message
				} else {
					apiErr.Message = errBody.Error
				}
			}
		}

		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Profile store request failed")
		return apiErr
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
