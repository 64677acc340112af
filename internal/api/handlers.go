// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package api exposes the HTTP surface: recommendations, the local profile,
// sync triggers, bookmarks, quiz, session lifecycle, the websocket endpoint
// and health/metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/catalog"
	"github.com/skilluphq/coursegraph/internal/logging"
	"github.com/skilluphq/coursegraph/internal/metrics"
	"github.com/skilluphq/coursegraph/internal/models"
	"github.com/skilluphq/coursegraph/internal/profilesync"
	"github.com/skilluphq/coursegraph/internal/recommend"
	"github.com/skilluphq/coursegraph/internal/store"
	"github.com/skilluphq/coursegraph/internal/validation"
	"github.com/skilluphq/coursegraph/internal/websocket"
)

// Handler holds the dependencies the HTTP surface drives.
type Handler struct {
	matcher *recommend.Matcher
	catalog *catalog.Catalog
	cache   *store.ProfileCache
	coord   *profilesync.Coordinator
	hub     *websocket.Hub
	logger  zerolog.Logger
}

// NewHandler wires the handler. hub may be nil when the websocket endpoint
// is not served (tests).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(
	matcher *recommend.Matcher,
	cat *catalog.Catalog,
	cache *store.ProfileCache,
	coord *profilesync.Coordinator,
	hub *websocket.Hub,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		matcher: matcher,
		catalog: cat,
		cache:   cache,
		coord:   coord,
		hub:     hub,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// respondJSON writes the uniform success envelope.
func respondJSON(w http.ResponseWriter, status int, data any) {
	resp := &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the uniform error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}

	resp := &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}

	body, merr := json.Marshal(resp)
	if merr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeBody decodes a JSON request body into v with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", err)
		return false
	}
	return true
}

// Recommendations ranks the catalog against the cached quiz record. The
// optional type query parameter restricts results to free or paid courses.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.Courses(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "course catalog is unavailable", err)
		return
	}

	quiz := h.cache.QuizResults()
	courseType := r.URL.Query().Get("type")

	start := time.Now()
	var ranking recommend.Ranking
	if courseType != "" {
		if courseType != models.CourseTypeFree && courseType != models.CourseTypePaid {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "type must be free or paid", nil)
			return
		}
		ranking = h.matcher.RecommendationsByType(courses, quiz, courseType)
	} else {
		ranking = h.matcher.Recommendations(courses, quiz)
	}
	metrics.RecordRecommendation(ranking.Branch.String(), ranking.Filtered, time.Since(start))

	respondJSON(w, http.StatusOK, map[string]any{
		"courses": ranking.Courses,
		"branch":  ranking.Branch.String(),
	})
}

// Summary projects the cached quiz record into the preference summary shown
// on the results page.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, ok := recommend.Summarize(h.cache.QuizResults())
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no completed quiz on record", nil)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Profile returns the locally cached profile state.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.cache.User()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to read cached user", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":              user,
		"quizResults":       h.cache.QuizResults(),
		"bookmarkedCourses": h.cache.Bookmarks(),
		"isLoggedIn":        h.cache.LoggedIn(),
	})
}

// SyncProfile triggers a full profile sync and reports its outcome.
func (h *Handler) SyncProfile(w http.ResponseWriter, r *http.Request) {
	err := h.coord.SyncProfile(r.Context())
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]any{
			"synced":            true,
			"bookmarkedCourses": h.cache.Bookmarks(),
		})
	case errors.Is(err, profilesync.ErrNoToken):
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "no active session", nil)
	case errors.Is(err, profilesync.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "session rejected by profile store", err)
	default:
		respondError(w, http.StatusBadGateway, "SYNC_FAILED", "profile sync failed", err)
	}
}

// ToggleBookmark flips the bookmark state for the course in the URL.
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bookmarked, err := h.coord.ToggleBookmark(r.Context(), id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]any{
			"courseId":          models.NormalizeID(id),
			"bookmarked":        bookmarked,
			"bookmarkedCourses": h.cache.Bookmarks(),
		})
	case errors.Is(err, profilesync.ErrInvalidCourseID):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid course id", nil)
	case errors.Is(err, profilesync.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "session rejected by profile store", err)
	default:
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "bookmark toggle failed", err)
	}
}

// bookmarkSetRequest is the bulk replacement body.
type bookmarkSetRequest struct {
	Bookmarks []string `json:"bookmarkedCourses" validate:"required"`
}

// ReplaceBookmarks replaces the local bookmark set and pushes it upstream
// best-effort.
func (h *Handler) ReplaceBookmarks(w http.ResponseWriter, r *http.Request) {
	var req bookmarkSetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.cache.SetBookmarks(req.Bookmarks); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to store bookmarks", err)
		return
	}

	pushed := true
	if err := h.coord.SyncBookmarks(r.Context()); err != nil {
		if errors.Is(err, profilesync.ErrAuthRequired) {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "session rejected by profile store", err)
			return
		}
		pushed = false
		h.logger.Warn().Err(err).Msg("Bulk bookmark push failed")
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bookmarkedCourses": h.cache.Bookmarks(),
		"remoteSynced":      pushed,
	})
}

// SaveQuiz stores quiz results locally and uploads them.
func (h *Handler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz models.QuizResults
	if !decodeBody(w, r, &quiz) {
		return
	}
	if len(quiz.Answers) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "answers are required", nil)
		return
	}

	remoteSaved, err := h.coord.SaveQuizResults(r.Context(), &quiz)
	if err != nil {
		if errors.Is(err, profilesync.ErrAuthRequired) {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "session rejected by profile store", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to save quiz results", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"savedToServer": remoteSaved,
		"completedAt":   quiz.CompletedAt,
	})
}

// UpdateStats forwards best-effort progress counters.
func (h *Handler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var stats models.UserStats
	if !decodeBody(w, r, &stats) {
		return
	}

	if err := h.coord.UpdateStats(r.Context(), &stats); err != nil {
		if errors.Is(err, profilesync.ErrAuthRequired) {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "session rejected by profile store", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "stats update failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

// sessionRequest starts a session with a token issued by the profile store.
type sessionRequest struct {
	Token string       `json:"token" validate:"required"`
	User  *models.User `json:"user" validate:"required"`
}

// StartSession stores the session and kicks off the initial sync.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if store.TokenExpired(req.Token) {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "token is expired", nil)
		return
	}

	if err := h.coord.SessionStart(r.Context(), req.Token, req.User); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to start session", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"isLoggedIn": true})
}

// EndSession logs out: final bookmark push, then local teardown.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Logout(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "logout failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"isLoggedIn": false})
}

// WebSocket upgrades the connection and attaches it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_AVAILABLE", "websocket hub not running", nil)
		return
	}
	websocket.ServeWS(h.hub, w, r)
}

// Health reports liveness plus a catalog readiness signal.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	catalogOK := true
	if _, err := h.catalog.Courses(ctx); err != nil {
		catalogOK = false
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"catalog": catalogOK,
		"syncing": h.coord.IsSyncing(),
	})
}

// HealthLive is the bare liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
