// Package server provides the gateway's HTTP server and route table.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/proxy/middleware"
)

// Handlers bundles the endpoint handlers the server mounts. Nil entries are
// not mounted, so optional surfaces (metrics, usage) can be disabled by
// leaving them unset.
type Handlers struct {
	// Chat serves POST /v1/chat/completions.
	Chat http.Handler

	// Models serves GET /v1/models.
	Models http.Handler

	// Health serves GET /healthz.
	Health http.Handler

	// Refresh serves POST /admin/providers/{name}/refresh.
	Refresh http.Handler

	// Usage serves GET /admin/usage.
	Usage http.Handler

	// Metrics serves the Prometheus scrape endpoint.
	Metrics http.Handler
}

// Server is the gateway's HTTP server.
type Server struct {
	config     *config.Config
	handlers   Handlers
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server from the configuration and endpoint handlers.
func NewServer(cfg *config.Config, h Handlers) *Server {
	return &Server{
		config:       cfg,
		handlers:     h,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", s.config.Server.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. In-flight requests get the
// configured shutdown timeout to finish; streamed sessions past it are cut.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// RequestShutdown asks a running Start call to shut down.
func (s *Server) RequestShutdown() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully assembled handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes builds the route table and wraps it in the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	if s.handlers.Chat != nil {
		mux.Handle("/v1/chat/completions", s.handlers.Chat)
	}
	if s.handlers.Models != nil {
		mux.Handle("/v1/models", s.handlers.Models)
	}
	if s.handlers.Health != nil {
		mux.Handle("/healthz", s.handlers.Health)
	}
	if s.handlers.Refresh != nil {
		mux.Handle("POST /admin/providers/{name}/refresh", s.handlers.Refresh)
	}
	if s.handlers.Usage != nil {
		mux.Handle("/admin/usage", s.handlers.Usage)
	}
	if s.handlers.Metrics != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.handlers.Metrics)
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// convertCORSConfig maps config.CORSConfig to the middleware's type.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	cors := s.config.Server.CORS
	return &middleware.CORSConfig{
		Enabled:          cors.Enabled,
		AllowedOrigins:   cors.AllowedOrigins,
		AllowedMethods:   cors.AllowedMethods,
		AllowedHeaders:   cors.AllowedHeaders,
		ExposedHeaders:   cors.ExposedHeaders,
		MaxAge:           cors.MaxAge,
		AllowCredentials: cors.AllowCredentials,
	}
}
