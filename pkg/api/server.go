// Package api serves registered weather archives over a read-only REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ssargent/wbin/pkg/log"
)

const (
	shutdownTimeout        = 10 * time.Second
	metricsRefreshInterval = 30 * time.Second
)

// NewRouter builds the HTTP routes for s
func NewRouter(s *Server) http.Handler {
	metrics := s.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/archives", metrics.InstrumentHandler("GET", "/api/v1/archives", s.handleListArchives))
		r.Get("/archives/{id}", metrics.InstrumentHandler("GET", "/api/v1/archives/{id}", s.handleGetArchive))
		r.Get("/archives/{id}/records", metrics.InstrumentHandler("GET", "/api/v1/archives/{id}/records", s.handleListRecords))
		r.Post("/archives/{id}/verify", metrics.InstrumentHandler("POST", "/api/v1/archives/{id}/verify", s.handleVerifyArchive))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, catalog ArchiveCatalog, config ServerConfig) error {
	server := NewServer(catalog, config, NewMetrics())

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	updaterCtx, stopUpdater := context.WithCancel(ctx)
	defer stopUpdater()
	go server.startMetricsUpdater(updaterCtx, metricsRefreshInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting wbin REST API server", "addr", addr, "metrics", "/metrics")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Infow("shutting down wbin REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}
