// Package server exposes listing extraction over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kvittering/kvittering/internal/metrics"
	"github.com/kvittering/kvittering/internal/providers"
)

// maxBodyBytes bounds POST /api/scrape bodies
const maxBodyBytes = 64 << 10

// Config holds the server collaborators
type Config struct {
	Scraper    *providers.Scraper
	CORSOrigin string
	Logger     *slog.Logger
	Metrics    *metrics.Registry
}

// Server handles the scrape API. The scraper and CORS origin can be swapped
// at runtime while requests are in flight.
type Server struct {
	scraper    atomic.Pointer[providers.Scraper]
	corsOrigin atomic.Value // string
	logger     *slog.Logger
	metrics    *metrics.Registry
	mux        *http.ServeMux
	handler    http.Handler
}

// New creates a Server with a fresh mux
func New(cfg Config) *Server {
	return NewWithMux(cfg, http.NewServeMux())
}

// NewWithMux creates a Server registering its routes on mux
func NewWithMux(cfg Config, mux *http.ServeMux) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:  logger,
		metrics: cfg.Metrics,
		mux:     mux,
	}
	s.Reload(cfg.Scraper, cfg.CORSOrigin)
	s.registerRoutes()
	s.handler = s.requestID(s.corsMiddleware(s.mux))
	return s
}

// Reload swaps the dispatcher and CORS origin used by subsequent requests
func (s *Server) Reload(scraper *providers.Scraper, corsOrigin string) {
	if scraper == nil {
		scraper = providers.NewScraper(providers.ScraperConfig{Logger: s.logger, Metrics: s.metrics})
	}
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	s.scraper.Store(scraper)
	s.corsOrigin.Store(corsOrigin)
}

func (s *Server) currentScraper() *providers.Scraper {
	return s.scraper.Load()
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/platforms", s.handlePlatforms)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// corsMiddleware sets CORS headers on every response and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin.Load().(string))
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// requestID tags each request for log correlation, honouring an incoming X-Request-ID
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type requestIDKey struct{}

// requestLogger returns the server logger annotated with the request id
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
