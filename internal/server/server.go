// internal/server/server.go

// Package server exposes the pipeline orchestrator as a JSON HTTP API. It is
// a thin collaborator: authorization and all presentation live outside the
// core, and callers arrive with already-resolved identities.
package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/common/metrics"
	"talent-pipeline/internal/pipeline"
)

const maxBodyBytes = 1 << 20

type Server struct {
	orch   *pipeline.Orchestrator
	logger logger.Logger
}

func NewServer(orch *pipeline.Orchestrator, log logger.Logger) *Server {
	return &Server{
		orch:   orch,
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// Routes builds the HTTP handler with all API routes registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/applications", s.instrument("apply", s.handleApply))
	mux.HandleFunc("GET /api/v1/applications", s.instrument("list", s.handleList))
	mux.HandleFunc("GET /api/v1/applications/{id}", s.instrument("get", s.handleGet))
	mux.HandleFunc("POST /api/v1/applications/{id}/advance", s.instrument("advance", s.handleAdvance))
	mux.HandleFunc("POST /api/v1/applications/{id}/reject", s.instrument("reject", s.handleReject))
	mux.HandleFunc("POST /api/v1/applications/{id}/withdraw", s.instrument("withdraw", s.handleWithdraw))
	mux.HandleFunc("POST /api/v1/applications/{id}/stage-outcome", s.instrument("stage-outcome", s.handleStageOutcome))
	mux.HandleFunc("POST /api/v1/applications/{id}/schedule", s.instrument("schedule", s.handleSchedule))
	mux.HandleFunc("POST /api/v1/applications/{id}/start", s.instrument("start", s.handleStart))
	mux.HandleFunc("PATCH /api/v1/applications/{id}/notes", s.instrument("notes", s.handleNotes))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// instrument records per-route request counts by response status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next(rec, r)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
