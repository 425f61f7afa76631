package service

import (
	"time"

	"github.com/okian/matchcore/internal/adapters/repository"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
	"github.com/okian/matchcore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPipelineWorkers bounds the goroutines scoring one batch.
func WithPipelineWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pipelineWorkers = n
		}
	}
}

// WithInlineThreshold sets the pool size below which a batch is scored on
// the calling goroutine.
func WithInlineThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.inlineThreshold = n
		}
	}
}

// WithWorkerCount sets the number of async job workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the async job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many job request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultWeights sets the weights used when a request names neither
// weights nor a preset.
func WithDefaultWeights(w scoring.WeightConfig) Option {
	return func(s *Service) {
		if len(w) > 0 {
			s.defaultWeights = w
		}
	}
}

// WithMaxTopK caps an explicit top_k. Requests that omit top_k still get
// the full ranked pool.
func WithMaxTopK(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopK = n
		}
	}
}

// WithMaxPoolSize caps the records accepted in one request.
func WithMaxPoolSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPoolSize = n
		}
	}
}

// WithMinScore sets the default score floor.
func WithMinScore(t float64) Option {
	return func(s *Service) {
		s.minScore = t
	}
}

// WithCancelPolicy selects what a timed-out batch returns.
func WithCancelPolicy(p ranking.CancelPolicy) Option {
	return func(s *Service) {
		s.cancelPolicy = p
	}
}

// WithBatchTimeout bounds each ranking batch. Zero disables the bound.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.batchTimeout = d
		}
	}
}

// WithStoreDriver selects the job store opened by Start.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storeDSN = dsn
	}
}

// WithStore injects an already open job store. The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithPipelineOptions appends raw pipeline options, applied after the
// service's own.
func WithPipelineOptions(opts ...ranking.Option) Option {
	return func(s *Service) {
		s.pipelineOpts = append(s.pipelineOpts, opts...)
	}
}

// WithClock overrides the time source used to stamp jobs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
