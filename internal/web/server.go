// Package web exposes the HTTP API: read endpoints over officials, trades,
// and provenance, CSV export, and admin endpoints for triggering and
// inspecting ingestion runs.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/ingest"
	"github.com/openfiling/disclosure-cli/internal/jobs"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// Server bundles the API's dependencies.
type Server struct {
	store  store.Store
	exec   *jobs.Executor
	runner *ingest.Runner
	log    *zap.Logger
}

// NewServer builds a Server. The executor and runner may be nil, in which
// case the admin ingest endpoint reports 503.
func NewServer(st store.Store, exec *jobs.Executor, runner *ingest.Runner) *Server {
	return &Server{
		store:  st,
		exec:   exec,
		runner: runner,
		log:    zap.L().With(zap.String("component", "web")),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/officials", s.handleListOfficials)
		r.Get("/officials/{id}", s.handleGetOfficial)

		r.Get("/trades", s.handleListTrades)
		r.Get("/trades/{id}", s.handleGetTrade)
		r.Get("/trades/{id}/sources", s.handleListTradeSources)

		r.Get("/export/trades.csv", s.handleExportTrades)

		r.Post("/admin/ingest", s.handleTriggerIngest)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Get("/ingest/runs", s.handleListIngestRuns)

		r.Post("/alerts", s.handleCreateAlert)
		r.Get("/alerts", s.handleListAlerts)
		r.Delete("/alerts/{id}", s.handleDeleteAlert)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
