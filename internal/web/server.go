// Package web provides the HTTP server and handlers for the admin
// import API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/evalocal/vendor-import/internal/config"
	"github.com/evalocal/vendor-import/internal/domain"
	"github.com/evalocal/vendor-import/internal/importer"
)

// ImportRunner executes one import batch. Implemented by
// importer.Dispatcher.
type ImportRunner interface {
	Run(ctx context.Context, batch importer.Batch, actor domain.User) (*importer.Outcome, error)
}

// JobReader serves the import-job history. Implemented by
// store.ImportJobStore.
type JobReader interface {
	List(ctx context.Context, limit, offset int) ([]domain.ImportJob, int64, error)
	Get(ctx context.Context, id uuid.UUID) (domain.ImportJob, []domain.ImportError, error)
}

// AuditLog records and serves administrative actions. Implemented by
// store.AuditStore.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, int64, error)
}

// SessionResolver maps a bearer token to its user. Implemented by
// store.UserStore.
type SessionResolver interface {
	FindBySessionToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
}

// Pinger reports database liveness. Implemented by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import service.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	imports  ImportRunner
	jobs     JobReader
	audit    AuditLog
	sessions SessionResolver
	db       Pinger
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the router, middleware, and routes. db may be nil in
// tests; the health endpoint then reports liveness only.
func NewServer(cfg *config.Config, log *slog.Logger, imports ImportRunner, jobs JobReader, audit AuditLog, sessions SessionResolver, db Pinger) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		imports:  imports,
		jobs:     jobs,
		audit:    audit,
		sessions: sessions,
		db:       db,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes. There is no
// per-request timeout middleware: provider imports are paced at roughly
// one row per second, so long requests are expected and bounded by the
// server write timeout instead.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Post("/import", s.handleCreateImport)
		r.Get("/import", s.handleListImports)
		r.Get("/import/{jobID}", s.handleGetImport)
		r.Post("/import/file", s.handleImportFile)

		r.Get("/audit", s.handleListAudit)
	})
}

// Start begins listening for HTTP requests and blocks until the server
// stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.log.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs one line per request with latency and status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
