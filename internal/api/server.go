// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/config"
)

// Server runs the HTTP listener as a supervised service.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewServer builds the HTTP server around the assembled router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(handler http.Handler, cfg *config.ServerConfig, addr string, logger zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger.With().Str("component", "http").Logger(),
	}
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP shutdown failed")
		return err
	}
	s.logger.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *Server) String() string {
	return "api.Server"
}
