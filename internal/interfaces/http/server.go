package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with configuration-driven timeouts and graceful
// shutdown.
type Server struct {
	srv             *http.Server
	router          http.Handler
	log             logging.Logger
	port            int
	shutdownTimeout time.Duration
}

// NewServer creates a Server serving the given handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Server{
		router:          handler,
		log:             log.Named("http"),
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", logging.Int("port", s.port))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Handler returns the underlying route tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
