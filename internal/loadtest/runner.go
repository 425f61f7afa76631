package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/pool"
	"github.com/okian/matchcore/pkg/logger"
)

type submission struct {
	requestID string
	req       model.RankRequest
}

// Run generates cfg.Jobs pools, submits them as async jobs, waits for every
// accepted job to finish, and checks each returned batch.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("loadtest")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("jobs", cfg.Jobs),
		logger.Int("poolSize", cfg.PoolSize),
		logger.Int("workers", cfg.Workers),
		logger.Float64("rps", cfg.RPS))

	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	subs, err := generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generate pools: %w", err)
	}

	jobIDs, err := submitAll(ctx, c, cfg, subs, stats)
	if err != nil {
		return nil, fmt.Errorf("submit jobs: %w", err)
	}

	if err := awaitAll(ctx, c, cfg, jobIDs, stats); err != nil {
		return nil, fmt.Errorf("await jobs: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "final statistics",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.Duration("duration", stats.Duration),
		logger.Float64("jobsPerSecond", stats.JobsPerSecond()))
	return stats, nil
}

func generate(cfg *Config) ([]submission, error) {
	g := pool.NewGenerator(cfg.Seed)
	subs := make([]submission, cfg.Jobs)
	for i := range subs {
		if cfg.DuplicateEvery > 0 && i > 0 && i%cfg.DuplicateEvery == 0 {
			subs[i] = subs[i-1]
			continue
		}
		req, err := g.Request(cfg.Direction, cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		subs[i] = submission{requestID: fmt.Sprintf("load-%d-%d", cfg.Seed, i), req: req}
	}
	return subs, nil
}

// submitAll posts every submission and returns the distinct accepted job ids.
func submitAll(ctx context.Context, c *client, cfg *Config, subs []submission, stats *Stats) ([]string, error) {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Workers)
	}

	var (
		mu     sync.Mutex
		jobIDs []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, s := range subs {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		g.Go(func() error {
			ack, status, err := c.submit(gctx, s.requestID, s.req)

			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			switch {
			case err != nil:
				return err
			case status == http.StatusAccepted:
				stats.Accepted++
				jobIDs = append(jobIDs, ack.JobID)
			case status == http.StatusOK && ack.Duplicate:
				stats.Duplicates++
			default:
				stats.Rejected++
			}
			return nil
		})
	}
	return jobIDs, g.Wait()
}

// awaitAll polls each job until it reaches a terminal state.
func awaitAll(ctx context.Context, c *client, cfg *Config, jobIDs []string, stats *Stats) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Deadline)
	defer cancel()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, id := range jobIDs {
		g.Go(func() error {
			rec, err := await(gctx, c, cfg.PollInterval, id)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if rec.Status == model.JobFailed {
				stats.Failed++
				return nil
			}
			stats.Succeeded++
			if rec.Batch != nil {
				stats.Results += len(rec.Batch.Results)
				if !Consistent(rec.Batch) {
					stats.Inconsistent++
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func await(ctx context.Context, c *client, every time.Duration, id string) (model.JobRecord, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		rec, status, err := c.job(ctx, id)
		switch {
		case err != nil:
			return model.JobRecord{}, err
		case status != http.StatusOK:
			return model.JobRecord{}, fmt.Errorf("job %s: status %d", id, status)
		case rec.Status.Terminal():
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return model.JobRecord{}, fmt.Errorf("job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Consistent reports whether the batch is sorted by descending score with
// ranks 1..n and no result above 1 or below 0.
func Consistent(b *model.MatchBatch) bool {
	for i, r := range b.Results {
		if r.Rank != i+1 || r.Score < 0 || r.Score > 1 {
			return false
		}
		if i > 0 && r.Score > b.Results[i-1].Score {
			return false
		}
	}
	return len(b.Results) <= b.Evaluated
}
