// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	service "github.com/okian/matchcore/internal/app"
	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
)

// maxBodyBytes bounds request bodies; pools are sent inline.
const maxBodyBytes = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MatchDependencies
	JobDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	matchHandler  *MatchHandler
	jobsHandler   *JobsHandler
	limiter       *rate.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit shares one token bucket across the match and job endpoints.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.limiter = NewLimiter(rps, burst)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		matchHandler:  NewMatchHandler(deps),
		jobsHandler:   NewJobsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /v1/presets", MetricsMiddleware(s.matchHandler.HandlePresets, "presets"))

	mux.HandleFunc("POST /v1/match/candidates", s.limited(s.matchHandler.HandleRankCandidates, "match_candidates"))
	mux.HandleFunc("POST /v1/match/assignments", s.limited(s.matchHandler.HandleRankAssignments, "match_assignments"))
	mux.HandleFunc("POST /v1/match/explain", s.limited(s.matchHandler.HandleExplain, "match_explain"))

	mux.HandleFunc("POST /v1/jobs", s.limited(s.jobsHandler.HandleSubmit, "jobs_submit"))
	mux.HandleFunc("GET /v1/jobs", MetricsMiddleware(s.jobsHandler.HandleList, "jobs_list"))
	mux.HandleFunc("GET /v1/jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGet, "jobs_get"))
}

func (s *Server) limited(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(RateLimitMiddleware(next, s.limiter, endpoint), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if ec, ok := w.(errorCoder); ok {
		ec.setErrorCode(code)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ranking.ErrInvalidWeightConfig):
		return http.StatusBadRequest, "invalid_weights"
	case errors.Is(err, ranking.ErrInvalidSubject):
		return http.StatusUnprocessableEntity, "invalid_subject"
	case errors.Is(err, service.ErrPoolTooLarge):
		return http.StatusRequestEntityTooLarge, "pool_too_large"
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ranking.ErrCancelled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a JSON body into v, bounded by maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// explainRequest is the body of POST /v1/match/explain.
type explainRequest struct {
	Assignment *model.Assignment       `json:"assignment"`
	Candidate  *model.CandidateProfile `json:"candidate"`
	Weights    scoring.WeightConfig    `json:"weights,omitempty"`
	Preset     string                  `json:"preset,omitempty"`
}

// jobRequest is the body of POST /v1/jobs.
type jobRequest struct {
	RequestID string `json:"request_id"`
	model.RankRequest
}

type jobAck struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}
