// Package repository persists async job records and their match batches.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/pkg/metrics"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

const maxListLimit = 1_000

// Store provides read/write access to job records.
type Store interface {
	// Save inserts or replaces the record keyed by JobID.
	Save(ctx context.Context, rec model.JobRecord) error

	// Get returns ErrNotFound if the job is unknown.
	Get(ctx context.Context, jobID string) (model.JobRecord, error)

	// ListBySubject returns up to limit records for a subject, most recently
	// updated first.
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]model.JobRecord, error)

	Count(ctx context.Context) (int, error)
	Close() error
}

// Open builds the store for driver. dsn is the sqlite database path and is
// ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func checkLimit(limit int) error {
	if limit <= 0 || limit > maxListLimit {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidLimit, limit, maxListLimit)
	}
	return nil
}

// observe records the latency of a store operation.
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
