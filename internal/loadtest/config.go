// Package loadtest drives a running matching service with concurrent async
// jobs and verifies the batches it returns.
package loadtest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
)

// ErrInvalidConfig reports an unusable run configuration.
var ErrInvalidConfig = errors.New("invalid load test config")

// Config holds configuration for one run.
type Config struct {
	BaseURL        string          // Base URL of the service
	Jobs           int             // Number of jobs to submit
	PoolSize       int             // Records per generated pool
	Direction      model.Direction // Pool side of every job
	Workers        int             // Concurrent submitters and pollers
	RPS            float64         // Submission rate; 0 means unlimited
	Seed           int64           // Generator seed
	DuplicateEvery int             // Every Nth submission reuses the previous request id; 0 disables
	Timeout        time.Duration   // HTTP request timeout
	PollInterval   time.Duration   // Delay between job status polls
	Deadline       time.Duration   // Give up waiting for jobs after this long
}

// DefaultConfig returns a small run against a local service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:9080",
		Jobs:           100,
		PoolSize:       200,
		Direction:      model.DirectionCandidates,
		Workers:        8,
		Seed:           1,
		DuplicateEvery: 10,
		Timeout:        10 * time.Second,
		PollInterval:   100 * time.Millisecond,
		Deadline:       2 * time.Minute,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Jobs <= 0:
		return fmt.Errorf("%w: jobs must be positive", ErrInvalidConfig)
	case c.PoolSize <= 0:
		return fmt.Errorf("%w: pool size must be positive", ErrInvalidConfig)
	case !c.Direction.Valid():
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidConfig, c.Direction)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.RPS < 0 || c.DuplicateEvery < 0:
		return fmt.Errorf("%w: rps and duplicate interval must not be negative", ErrInvalidConfig)
	case c.Timeout <= 0 || c.PollInterval <= 0 || c.Deadline <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Submitted    int
	Accepted     int
	Duplicates   int
	Rejected     int
	Succeeded    int
	Failed       int
	Inconsistent int // batches out of order or with broken ranks
	Results      int
	StartTime    time.Time
	Duration     time.Duration
}

// JobsPerSecond is the submission throughput of the run.
func (s *Stats) JobsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
