package api

import (
	"context"
	"net/http"
	"time"

	"github.com/techmoncton/hive/internal/config"
)

// Server wraps the HTTP server for the subscription API.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer creates the API server with all routes wired.
func NewServer(cfg config.SiteConfig, h *Handlers) *Server {
	return &Server{handler: SetupRoutes(h, cfg.URL, cfg.AdminKey)}
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Broadcast runs finish within the request; give them room.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}
