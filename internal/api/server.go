package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/edvin/drtrack/internal/api/handler"
	mw "github.com/edvin/drtrack/internal/api/middleware"
	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/metrics"
)

// Database is what the server needs from the pool directly: readiness
// pings and the audit log writer.
type Database interface {
	mw.Execer
	Ping(ctx context.Context) error
}

// Metrics is the registry the server exposes on /metrics and registers its
// HTTP collectors with.
type Metrics interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	db          Database
	metrics     Metrics
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, db Database, services *core.Services, reg Metrics) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		db:          db,
		metrics:     reg,
		auditLogger: mw.NewAuditLogger(db, logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.NewHTTPMetrics(s.metrics).Handler)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", metrics.Handler(s.metrics))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.APIKey))
		r.Use(mw.RequireOperator)
		r.Use(s.auditLogger.Middleware)

		overview := handler.NewOverview(s.services.Overview)
		r.Get("/overview", overview.Get)

		// Backup snapshots
		snapshot := handler.NewBackupSnapshot(s.services.BackupSnapshot)
		r.Get("/backup-snapshots", snapshot.List)
		r.Post("/backup-snapshots", snapshot.Schedule)
		r.Get("/backup-snapshots/{ref}", snapshot.Get)
		r.Post("/backup-snapshots/{ref}/running", snapshot.MarkRunning)
		r.Post("/backup-snapshots/{ref}/complete", snapshot.Complete)
		r.Post("/backup-snapshots/{ref}/fail", snapshot.Fail)
		r.Post("/backup-snapshots/{ref}/verify", snapshot.Verify)

		// Recovery drills
		drill := handler.NewRecoveryDrill(s.services.RecoveryDrill)
		r.Get("/recovery-drills", drill.List)
		r.Post("/recovery-drills", drill.Schedule)
		r.Get("/recovery-drills/{ref}", drill.Get)
		r.Post("/recovery-drills/{ref}/start", drill.Start)
		r.Post("/recovery-drills/{ref}/complete", drill.Complete)
		r.Post("/recovery-drills/{ref}/fail", drill.Fail)
		r.Post("/recovery-drills/{ref}/cancel", drill.Cancel)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close flushes pending audit log entries. Call it after the HTTP server has
// stopped accepting requests.
func (s *Server) Close() {
	s.auditLogger.Close()
}
