// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skilluphq/coursegraph/internal/config"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(handler *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimit))
		r.Use(prometheusMetrics)

		r.Get("/recommendations", handler.Recommendations)
		r.Get("/summary", handler.Summary)

		r.Get("/profile", handler.Profile)
		r.Post("/profile/sync", handler.SyncProfile)

		r.Post("/bookmarks/{id}/toggle", handler.ToggleBookmark)
		r.Put("/bookmarks", handler.ReplaceBookmarks)

		r.Post("/quiz", handler.SaveQuiz)
		r.Put("/stats", handler.UpdateStats)

		r.Post("/session", handler.StartSession)
		r.Delete("/session", handler.EndSession)

		r.Get("/health", handler.Health)
		r.Get("/health/live", handler.HealthLive)

		r.Get("/ws", handler.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
