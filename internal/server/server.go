// Package server exposes the HTTP surface described in §6: a single
// POST /v1/search endpoint behind bearer auth, plus a health check.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/auth"
	"github.com/howard-nolan/questionrouter/internal/fanout"
)

// Server wraps the chi router and the underlying *http.Server.
type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// New builds the server. readTimeout/writeTimeout come from
// config.ServerConfig.
func New(addr string, engine *fanout.Engine, tokens auth.TokenStore, logger *zap.Logger, readTimeout, writeTimeout time.Duration) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(zapLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(readTimeout))

	h := &handler{engine: engine, logger: logger}

	r.Get("/healthz", h.health)
	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(tokens, logger))
		r.Post("/v1/search", h.search)
	})

	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

// ListenAndServe runs the server until it errors or Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the chi.Router for tests (httptest.NewServer(srv.Router())).
func (s *Server) Router() chi.Router {
	return s.router
}
