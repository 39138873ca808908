// Package server exposes the HTTP trigger endpoints for the pipeline.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"signalhound/internal/collector"
	"signalhound/internal/config"
	"signalhound/internal/digest"
	"signalhound/internal/logger"
	"signalhound/internal/persistence"
)

// CollectorRunner runs one ingestion pass.
type CollectorRunner interface {
	Run(ctx context.Context) (collector.Report, error)
}

// DigestRunner runs one digest pass.
type DigestRunner interface {
	Run(ctx context.Context) (digest.Report, error)
}

// Server hosts the health check and the two secret-gated cron triggers.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	collector  CollectorRunner
	batcher    DigestRunner
	cronSecret string
	log        *slog.Logger
}

// New creates the HTTP server.
func New(db persistence.Database, collectorRunner CollectorRunner, batcher DigestRunner, cronSecret string, cfg config.Server) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		db:         db,
		collector:  collectorRunner,
		batcher:    batcher,
		cronSecret: cronSecret,
		log:        logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// The original scheduler hit these with GET; both verbs stay accepted.
	s.router.Route("/api/cron", func(r chi.Router) {
		r.Use(s.requireCronSecret)
		r.Get("/collect-signals", s.handleCollectSignals)
		r.Post("/collect-signals", s.handleCollectSignals)
		r.Get("/send-digest", s.handleSendDigest)
		r.Post("/send-digest", s.handleSendDigest)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request with latency and status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
