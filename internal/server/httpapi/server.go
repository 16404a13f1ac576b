// Package httpapi is the thin HTTP layer over the auth services: routing,
// JSON encoding, refresh cookie plumbing, and CORS. All session semantics
// live in the services package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okutsen/authsvc/internal/logging"
	"github.com/okutsen/authsvc/internal/obs"
	"github.com/okutsen/authsvc/internal/server/config"
	"github.com/okutsen/authsvc/internal/server/services"
)

// Server hosts the HTTP API.
type Server struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
	users   *services.UserService
	config  *config.Config
}

// NewServer constructs the HTTP server from its collaborators.
func NewServer(cfg *config.Config, l logging.Logger, as *services.AuthService, us *services.UserService) *Server {
	return &Server{
		address: cfg.EndpointAddr,
		logger:  l.With("module", "httpapi"),
		auth:    as,
		users:   us,
		config:  cfg,
	}
}

// Handler builds the routed and instrumented handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/google", s.handleLogin)
	mux.HandleFunc("/api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)
	mux.HandleFunc("/api/auth/me", s.handleMe)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", obs.Handler())

	return obs.Instrument(s.withCORS(mux))
}

// Run starts the server and shuts it down gracefully when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
