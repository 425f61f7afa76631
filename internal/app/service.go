// Package service wires the ranking pipeline, the async job runner and the
// result store into the operations the HTTP API and CLI call.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/matchcore/internal/adapters/mq/queue"
	"github.com/okian/matchcore/internal/adapters/mq/worker"
	"github.com/okian/matchcore/internal/adapters/repository"
	"github.com/okian/matchcore/internal/adapters/telemetry"
	"github.com/okian/matchcore/internal/domain/dedupe"
	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
	"github.com/okian/matchcore/pkg/logger"
	"github.com/okian/matchcore/pkg/metrics"
)

// Service implements the API dependencies for the matching engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	pipeline *ranking.Pipeline
	store    repository.Store
	deduper  dedupe.Deduper
	jobQueue queue.Queue
	workers  *worker.Pool

	// cancels the context handed to workers
	stopWorkers context.CancelFunc

	// Configuration
	pipelineWorkers int
	inlineThreshold int
	workerCount     int
	queueSize       int
	dedupeSize      int
	defaultWeights  scoring.WeightConfig
	maxTopK         int
	maxPoolSize     int
	minScore        float64
	cancelPolicy    ranking.CancelPolicy
	batchTimeout    time.Duration
	storeDriver     string
	storeDSN        string
	pipelineOpts    []ranking.Option
	now             func() time.Time

	// State
	started  bool
	stopping bool

	logger logger.Logger
}

// New constructs a Service with default configuration. Nothing runs until
// Start.
func New(opts ...Option) *Service {
	s := &Service{
		pipelineWorkers: runtime.NumCPU(),
		inlineThreshold: 256,
		workerCount:     4,
		queueSize:       1_000,
		dedupeSize:      10_000,
		maxTopK:         500,
		maxPoolSize:     50_000,
		cancelPolicy:    ranking.CancelFail,
		batchTimeout:    30 * time.Second,
		storeDriver:     repository.DriverMemory,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline, opens the job store and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if len(s.defaultWeights) == 0 {
		s.defaultWeights = scoring.DefaultWeights().Config()
	}
	if _, err := s.defaultWeights.Validate(); err != nil {
		return fmt.Errorf("default weights: %w", err)
	}

	s.logger.Info(ctx, "starting matching service...")

	opts := []ranking.Option{
		ranking.WithWorkers(s.pipelineWorkers),
		ranking.WithInlineThreshold(s.inlineThreshold),
		ranking.WithHook(telemetry.New(s.logger.Named("ranking"))),
		ranking.WithCancelPolicy(s.cancelPolicy),
		ranking.WithMinScore(s.minScore),
	}
	s.pipeline = ranking.New(append(opts, s.pipelineOpts...)...)

	if s.store == nil {
		st, err := repository.Open(ctx, s.storeDriver, s.storeDSN)
		if err != nil {
			return fmt.Errorf("open job store: %w", err)
		}
		s.store = st
		s.logger.Info(ctx, "job store opened", logger.String("driver", s.storeDriver))
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workers = worker.NewPool(s.workerCount, s.jobQueue, s, worker.WithLogger(s.logger.Named("worker")))
	// Workers outlive the start context. Stop drains them and cancels this
	// one only when the drain runs out of time.
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWorkers = cancel
	s.workers.Start(wctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("pipelineWorkers", s.pipelineWorkers),
		logger.Int("jobWorkers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains queued jobs, bounded by ctx, and closes the store. If ctx
// expires first, running jobs are cancelled and the store is closed only
// once the last worker has returned.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	workers, st, cancel := s.workers, s.store, s.stopWorkers
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping matching service...")

	shutdownErr := workers.Shutdown(ctx)
	cancel()

	s.mu.Lock()
	s.started = false
	s.stopping = false
	s.store = nil
	s.mu.Unlock()

	if shutdownErr != nil {
		s.logger.Warn(ctx, "jobs still running, job store closes after they return", logger.Error(shutdownErr))
		go func() {
			workers.Wait()
			if err := st.Close(); err != nil {
				s.logger.Error(context.Background(), "close job store", logger.Error(err))
			}
		}()
		return shutdownErr
	}

	if err := st.Close(); err != nil {
		return fmt.Errorf("close job store: %w", err)
	}
	s.logger.Info(ctx, "matching service stopped")
	return nil
}

// RankCandidates ranks req.Candidates against req.Assignment.
func (s *Service) RankCandidates(ctx context.Context, req model.RankRequest) (*model.MatchBatch, error) { //nolint:gocritic // hugeParam
	req.Direction = model.DirectionCandidates
	return s.Rank(ctx, req)
}

// RankAssignments ranks req.Assignments against req.Candidate.
func (s *Service) RankAssignments(ctx context.Context, req model.RankRequest) (*model.MatchBatch, error) { //nolint:gocritic // hugeParam
	req.Direction = model.DirectionAssignments
	return s.Rank(ctx, req)
}

// Rank runs one batch in the direction req names, bounded by the batch
// timeout.
func (s *Service) Rank(ctx context.Context, req model.RankRequest) (*model.MatchBatch, error) { //nolint:gocritic // hugeParam
	pipe, err := s.activePipeline()
	if err != nil {
		return nil, err
	}
	plan, err := s.plan(&req)
	if err != nil {
		metrics.RecordRejectedBatch(string(req.Direction))
		return nil, err
	}
	if req.MinScore != nil {
		pipe = pipe.With(ranking.WithMinScore(*req.MinScore))
	}

	if s.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.batchTimeout)
		defer cancel()
	}

	var batch *model.MatchBatch
	switch req.Direction {
	case model.DirectionAssignments:
		batch, err = pipe.RankAssignments(ctx, *req.Candidate, req.Assignments, plan.weights, plan.topK)
	default:
		batch, err = pipe.RankCandidates(ctx, *req.Assignment, req.Candidates, plan.weights, plan.topK)
	}
	if err != nil {
		if errors.Is(err, ranking.ErrInvalidWeightConfig) || errors.Is(err, ranking.ErrInvalidSubject) {
			metrics.RecordRejectedBatch(string(req.Direction))
		}
		return nil, err
	}
	for i := range batch.Results {
		metrics.RecordMatchScore(batch.Results[i].Score)
	}
	return batch, nil
}

// Explain scores a single pairing and reports its strengths and gaps.
func (s *Service) Explain(_ context.Context, a model.Assignment, c model.CandidateProfile, weights scoring.WeightConfig, preset string) (scoring.Explanation, error) { //nolint:gocritic // hugeParam
	if reason := ranking.ValidateAssignment(&a); reason != "" {
		return scoring.Explanation{}, fmt.Errorf("%w: assignment %q: %s", ranking.ErrInvalidSubject, a.ID, reason)
	}
	if reason := ranking.ValidateCandidate(&c); reason != "" {
		return scoring.Explanation{}, fmt.Errorf("%w: candidate %q: %s", ranking.ErrInvalidSubject, c.ID, reason)
	}
	cfg, err := s.resolveWeights(weights, preset)
	if err != nil {
		return scoring.Explanation{}, err
	}
	exp, err := scoring.Explain(&a, &c, cfg)
	if err != nil {
		return scoring.Explanation{}, fmt.Errorf("%w: %w", ranking.ErrInvalidWeightConfig, err)
	}
	return exp, nil
}

// Presets returns every named weight preset.
func (s *Service) Presets() map[string]scoring.WeightConfig {
	names := scoring.PresetNames()
	out := make(map[string]scoring.WeightConfig, len(names))
	for _, name := range names {
		p, err := scoring.Preset(name)
		if err != nil {
			continue
		}
		out[name] = p
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"pipelineWorkers": s.pipelineWorkers,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"maxPoolSize":     s.maxPoolSize,
		"maxTopK":         s.maxTopK,
		"cancelPolicy":    s.cancelPolicy.String(),
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats["storedJobs"] = n
			metrics.UpdateStoreRecords(n)
		}
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

func (s *Service) activePipeline() (*ranking.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.pipeline, nil
}

type plan struct {
	weights scoring.WeightConfig
	topK    int
}

// plan checks the request shape and resolves its weights and topK. Record
// level problems are left to the pipeline.
func (s *Service) plan(req *model.RankRequest) (plan, error) {
	switch req.Direction {
	case model.DirectionCandidates:
		if req.Assignment == nil {
			return plan{}, fmt.Errorf("%w: missing assignment", ErrInvalidRequest)
		}
	case model.DirectionAssignments:
		if req.Candidate == nil {
			return plan{}, fmt.Errorf("%w: missing candidate", ErrInvalidRequest)
		}
	default:
		return plan{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidRequest, req.Direction)
	}

	if n := req.PoolSize(); n > s.maxPoolSize {
		return plan{}, fmt.Errorf("%w: %d records (max %d)", ErrPoolTooLarge, n, s.maxPoolSize)
	}

	// top_k <= 0 or omitted asks for the whole ranked pool.
	topK := max(req.TopK, 0)
	if topK > s.maxTopK {
		return plan{}, fmt.Errorf("%w: top_k %d exceeds %d", ErrInvalidRequest, topK, s.maxTopK)
	}

	if req.MinScore != nil && (*req.MinScore < 0 || *req.MinScore > 1) {
		return plan{}, fmt.Errorf("%w: min_score must be within [0, 1]", ErrInvalidRequest)
	}

	weights, err := s.resolveWeights(req.Weights, req.Preset)
	if err != nil {
		return plan{}, err
	}
	return plan{weights: weights, topK: topK}, nil
}

func (s *Service) resolveWeights(weights scoring.WeightConfig, preset string) (scoring.WeightConfig, error) {
	cfg, err := scoring.Resolve(weights, preset, s.defaultWeights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrInvalidWeightConfig, err)
	}
	return cfg, nil
}
