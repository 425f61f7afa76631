// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and MATCH_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig; loading failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// PipelineWorkers bounds the goroutines scoring a single batch.
	PipelineWorkers int `koanf:"pipeline_workers"`
	// InlineThreshold is the pool size below which a batch is scored on the
	// request goroutine.
	InlineThreshold int `koanf:"inline_threshold"`

	// JobQueueSize bounds the in-memory async job queue.
	JobQueueSize int `koanf:"queue_size"`
	// JobWorkers sets the number of async job workers.
	JobWorkers int `koanf:"worker_count"`
	// DedupeSize is how many job request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxTopK caps an explicit top_k. An omitted top_k returns every result.
	MaxTopK int `koanf:"max_top_k"`
	// MaxPoolSize caps records per request.
	MaxPoolSize int `koanf:"max_pool_size"`

	// DefaultPreset names the weight preset used when a request carries
	// neither weights nor a preset and Weights is empty.
	DefaultPreset string `koanf:"default_preset"`
	// Weights overrides the default preset when set.
	Weights map[string]float64 `koanf:"weights"`

	// MinScore drops results below this composite score.
	MinScore float64 `koanf:"min_score"`
	// CancelPolicy is "fail" or "partial".
	CancelPolicy string `koanf:"cancel_policy"`
	// BatchTimeout bounds a single ranking batch. Zero disables it.
	BatchTimeout time.Duration `koanf:"batch_timeout"`

	// StoreDriver selects the job result store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// StoreDSN is the sqlite database path.
	StoreDSN string `koanf:"store_dsn"`

	// RateLimitRPS and RateLimitBurst shape the match endpoints' token
	// bucket. RPS <= 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config with defaults. Context is accepted first to follow the
// project convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ShutdownTimeout: 10 * time.Second,
		PipelineWorkers: runtime.NumCPU(),
		InlineThreshold: 256,
		JobQueueSize:    1_000,
		JobWorkers:      4,
		DedupeSize:      10_000,
		MaxTopK:         500,
		MaxPoolSize:     50_000,
		DefaultPreset:   scoring.PresetBalanced,
		CancelPolicy:    "fail",
		BatchTimeout:    30 * time.Second,
		StoreDriver:     StoreMemory,
		StoreDSN:        "matchcore.db",
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

// DefaultWeights resolves the configured fallback weights.
func (c *Config) DefaultWeights() (scoring.WeightConfig, error) {
	if len(c.Weights) > 0 {
		return scoring.WeightConfig(c.Weights), nil
	}
	return scoring.Preset(c.DefaultPreset)
}

// Policy returns the parsed cancel policy.
func (c *Config) Policy() ranking.CancelPolicy {
	p, _ := ranking.ParseCancelPolicy(c.CancelPolicy)
	return p
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PipelineWorkers <= 0:
		return fmt.Errorf("%w: pipeline_workers must be positive", ErrInvalidConfig)
	case c.JobQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.JobWorkers <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxTopK <= 0:
		return fmt.Errorf("%w: max_top_k must be positive", ErrInvalidConfig)
	case c.MaxPoolSize <= 0:
		return fmt.Errorf("%w: max_pool_size must be positive", ErrInvalidConfig)
	case c.MinScore < 0 || c.MinScore > 1:
		return fmt.Errorf("%w: min_score must be within [0, 1]", ErrInvalidConfig)
	case c.BatchTimeout < 0:
		return fmt.Errorf("%w: batch_timeout must not be negative", ErrInvalidConfig)
	}
	if _, ok := ranking.ParseCancelPolicy(c.CancelPolicy); !ok {
		return fmt.Errorf("%w: unknown cancel_policy %q", ErrInvalidConfig, c.CancelPolicy)
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.StoreDriver == StoreSQLite && c.StoreDSN == "" {
		return fmt.Errorf("%w: store_dsn is required for sqlite", ErrInvalidConfig)
	}
	weights, err := c.DefaultWeights()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
