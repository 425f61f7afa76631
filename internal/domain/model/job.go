package model

import "time"

// JobStatus tracks an async ranking job.
type JobStatus string

// Job statuses.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions happen.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// RankRequest is everything needed to run one ranking batch. Exactly one of
// Assignment or Candidate is the subject, selected by Direction.
type RankRequest struct {
	Direction   Direction          `json:"direction" yaml:"direction"`
	Assignment  *Assignment        `json:"assignment,omitempty" yaml:"assignment,omitempty"`
	Candidate   *CandidateProfile  `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Candidates  []CandidateProfile `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Assignments []Assignment       `json:"assignments,omitempty" yaml:"assignments,omitempty"`
	Weights     map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	Preset      string             `json:"preset,omitempty" yaml:"preset,omitempty"`
	TopK        int                `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	MinScore    *float64           `json:"min_score,omitempty" yaml:"min_score,omitempty"`
}

// SubjectID returns the id of the record the pool is ranked against.
func (r *RankRequest) SubjectID() string {
	switch {
	case r.Direction == DirectionAssignments && r.Candidate != nil:
		return r.Candidate.ID
	case r.Direction == DirectionCandidates && r.Assignment != nil:
		return r.Assignment.ID
	default:
		return ""
	}
}

// PoolSize returns the number of records in the pool for the direction.
func (r *RankRequest) PoolSize() int {
	if r.Direction == DirectionAssignments {
		return len(r.Assignments)
	}
	return len(r.Candidates)
}

// Job is a queued ranking request.
type Job struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"request_id"`
	Request     RankRequest `json:"request"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// JobRecord is the persisted state of a job.
type JobRecord struct {
	JobID       string      `json:"job_id"`
	RequestID   string      `json:"request_id"`
	Direction   Direction   `json:"direction"`
	SubjectID   string      `json:"subject_id"`
	Status      JobStatus   `json:"status"`
	Batch       *MatchBatch `json:"batch,omitempty"`
	Error       string      `json:"error,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
