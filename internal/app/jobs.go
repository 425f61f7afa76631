package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/matchcore/internal/adapters/repository"
	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/pkg/logger"
	"github.com/okian/matchcore/pkg/metrics"
)

// SubmitJob queues req for async ranking. A request id seen before returns
// the job it already created with duplicate set.
func (s *Service) SubmitJob(ctx context.Context, requestID string, req model.RankRequest) (jobID string, duplicate bool, err error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	started, st, deduper, jobs := s.started, s.store, s.deduper, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return "", false, ErrNotStarted
	}

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return "", false, fmt.Errorf("%w: missing request_id", ErrInvalidRequest)
	}
	if _, err := s.plan(&req); err != nil {
		metrics.RecordRejectedBatch(string(req.Direction))
		return "", false, err
	}

	jobID = uuid.NewString()
	if existing, seen := deduper.SeenAndRecord(ctx, requestID, jobID); seen {
		metrics.RecordJobDuplicate()
		s.logger.Debug(ctx, "duplicate job request",
			logger.String("requestID", requestID),
			logger.String("jobID", existing),
		)
		return existing, true, nil
	}

	now := s.now()
	rec := model.JobRecord{
		JobID:       jobID,
		RequestID:   requestID,
		Direction:   req.Direction,
		SubjectID:   req.SubjectID(),
		Status:      model.JobQueued,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := st.Save(ctx, rec); err != nil {
		deduper.Unrecord(ctx, requestID)
		return "", false, fmt.Errorf("save job %s: %w", jobID, err)
	}

	job := model.Job{ID: jobID, RequestID: requestID, Request: req, SubmittedAt: now}
	if !jobs.Enqueue(ctx, job) {
		deduper.Unrecord(ctx, requestID)
		rec.Status = model.JobFailed
		rec.Error = ErrBackpressure.Error()
		rec.UpdatedAt = s.now()
		if err := st.Save(ctx, rec); err != nil {
			s.logger.Warn(ctx, "failed to mark rejected job", logger.String("jobID", jobID), logger.Error(err))
		}
		return "", false, ErrBackpressure
	}

	s.logger.Debug(ctx, "job queued",
		logger.String("jobID", jobID),
		logger.String("requestID", requestID),
		logger.String("direction", string(req.Direction)),
		logger.Int("poolSize", req.PoolSize()),
	)
	return jobID, false, nil
}

// Process runs a queued job and persists its outcome. Workers call it.
func (s *Service) Process(ctx context.Context, job model.Job) error { //nolint:gocritic // hugeParam
	st, err := s.jobStore()
	if err != nil {
		return err
	}
	rec := model.JobRecord{
		JobID:       job.ID,
		RequestID:   job.RequestID,
		Direction:   job.Request.Direction,
		SubjectID:   job.Request.SubjectID(),
		Status:      model.JobRunning,
		SubmittedAt: job.SubmittedAt,
		UpdatedAt:   s.now(),
	}
	if err := st.Save(ctx, rec); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	batch, rankErr := s.Rank(ctx, job.Request)
	rec.UpdatedAt = s.now()
	if rankErr != nil {
		rec.Status = model.JobFailed
		rec.Error = rankErr.Error()
	} else {
		rec.Status = model.JobSucceeded
		rec.Batch = batch
	}
	// the outcome is recorded even when shutdown cancelled the job
	if err := st.Save(context.WithoutCancel(ctx), rec); err != nil {
		return errors.Join(rankErr, fmt.Errorf("save job result: %w", err))
	}
	return rankErr
}

// Job returns the stored state of a job.
func (s *Service) Job(ctx context.Context, jobID string) (model.JobRecord, error) {
	st, err := s.jobStore()
	if err != nil {
		return model.JobRecord{}, err
	}
	rec, err := st.Get(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.JobRecord{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return rec, err
}

// JobsForSubject lists the most recent jobs ranked against subjectID.
func (s *Service) JobsForSubject(ctx context.Context, subjectID string, limit int) ([]model.JobRecord, error) {
	st, err := s.jobStore()
	if err != nil {
		return nil, err
	}
	recs, err := st.ListBySubject(ctx, subjectID, limit)
	if errors.Is(err, repository.ErrInvalidLimit) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return recs, err
}

func (s *Service) jobStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
