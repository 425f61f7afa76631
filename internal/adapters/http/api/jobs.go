package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/matchcore/internal/domain/model"
)

const defaultListLimit = 20

// JobDependencies defines the async job operations.
type JobDependencies interface {
	// SubmitJob queues req. A repeated request id returns the original job
	// id with duplicate set.
	SubmitJob(ctx context.Context, requestID string, req model.RankRequest) (jobID string, duplicate bool, err error)
	Job(ctx context.Context, jobID string) (model.JobRecord, error)
	JobsForSubject(ctx context.Context, subjectID string, limit int) ([]model.JobRecord, error)
}

// JobsHandler handles async job requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleSubmit handles POST /v1/jobs.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"
	var req jobRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	jobID, dup, err := h.deps.SubmitJob(r.Context(), req.RequestID, req.RankRequest)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, jobAck{JobID: jobID, Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, jobAck{JobID: jobID, Status: "accepted"})
}

// HandleGet handles GET /v1/jobs/{id}.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleList handles GET /v1/jobs?subject=ID&limit=N.
func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_jobs"
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	if subject == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	recs, err := h.deps.JobsForSubject(r.Context(), subject, limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
