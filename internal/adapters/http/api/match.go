package api

import (
	"context"
	"net/http"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/scoring"
)

// MatchDependencies defines the synchronous ranking operations.
type MatchDependencies interface {
	RankCandidates(ctx context.Context, req model.RankRequest) (*model.MatchBatch, error)
	RankAssignments(ctx context.Context, req model.RankRequest) (*model.MatchBatch, error)
	Explain(ctx context.Context, a model.Assignment, c model.CandidateProfile, weights scoring.WeightConfig, preset string) (scoring.Explanation, error)
	Presets() map[string]scoring.WeightConfig
}

// MatchHandler handles ranking requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleRankCandidates handles POST /v1/match/candidates.
func (h *MatchHandler) HandleRankCandidates(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_candidates"
	var req model.RankRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	batch, err := h.deps.RankCandidates(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HandleRankAssignments handles POST /v1/match/assignments.
func (h *MatchHandler) HandleRankAssignments(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_assignments"
	var req model.RankRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	batch, err := h.deps.RankAssignments(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HandleExplain handles POST /v1/match/explain.
func (h *MatchHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	const op = "api.explain"
	var req explainRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.Assignment == nil || req.Candidate == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	exp, err := h.deps.Explain(r.Context(), *req.Assignment, *req.Candidate, req.Weights, req.Preset)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// HandlePresets handles GET /v1/presets.
func (h *MatchHandler) HandlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Presets())
}
