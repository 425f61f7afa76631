// Package telemetry adapts ranking batch events to logs and metrics.
package telemetry

import (
	"context"
	"time"

	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/pkg/logger"
	"github.com/okian/matchcore/pkg/metrics"
)

// LogHook writes batch events to a structured logger. Only ids and counts
// are logged.
type LogHook struct {
	log logger.Logger
}

// NewLogHook returns a hook logging through log.
func NewLogHook(log logger.Logger) *LogHook {
	return &LogHook{log: log}
}

func (h *LogHook) BatchStarted(ctx context.Context, ev ranking.StartEvent) {
	h.log.Debug(ctx, ranking.EventBatchStarted,
		logger.String("batch_id", ev.BatchID),
		logger.String("direction", string(ev.Direction)),
		logger.String("subject_id", ev.SubjectID),
		logger.Int("pool_size", ev.PoolSize),
	)
}

func (h *LogHook) BatchCompleted(ctx context.Context, ev ranking.CompleteEvent) {
	fields := []logger.Field{
		logger.String("batch_id", ev.BatchID),
		logger.String("direction", string(ev.Direction)),
		logger.String("subject_id", ev.SubjectID),
		logger.Int("pool_size", ev.PoolSize),
		logger.Int("evaluated", ev.Evaluated),
		logger.Int("skipped", ev.Skipped),
		logger.Int("below_threshold", ev.BelowThreshold),
		logger.Int("returned", ev.Returned),
		logger.Bool("partial", ev.Partial),
		logger.Bool("cancelled", ev.Cancelled),
		logger.Duration("elapsed", ev.Elapsed),
	}
	if ev.Cancelled {
		h.log.Warn(ctx, ranking.EventBatchCompleted, fields...)
		return
	}
	h.log.Info(ctx, ranking.EventBatchCompleted, fields...)
}

// Recorder is the subset of metrics.Manager the metrics hook needs.
type Recorder interface {
	RecordBatch(direction, outcome string, poolSize, evaluated, skipped, belowThreshold int, elapsed time.Duration)
}

type globalRecorder struct{}

func (globalRecorder) RecordBatch(direction, outcome string, poolSize, evaluated, skipped, belowThreshold int, elapsed time.Duration) {
	metrics.RecordBatch(direction, outcome, poolSize, evaluated, skipped, belowThreshold, elapsed)
}

// MetricsHook turns completed batches into Prometheus observations.
type MetricsHook struct {
	rec Recorder
}

// NewMetricsHook records to rec, or to the global metrics manager when rec
// is nil.
func NewMetricsHook(rec Recorder) *MetricsHook {
	if rec == nil {
		rec = globalRecorder{}
	}
	return &MetricsHook{rec: rec}
}

func (h *MetricsHook) BatchStarted(context.Context, ranking.StartEvent) {}

func (h *MetricsHook) BatchCompleted(_ context.Context, ev ranking.CompleteEvent) {
	h.rec.RecordBatch(string(ev.Direction), Outcome(ev), ev.PoolSize, ev.Evaluated, ev.Skipped, ev.BelowThreshold, ev.Elapsed)
}

// Outcome classifies a completed batch.
func Outcome(ev ranking.CompleteEvent) string {
	switch {
	case ev.Partial:
		return metrics.OutcomePartial
	case ev.Cancelled:
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeOK
	}
}

// New combines the log and metrics hooks.
func New(log logger.Logger) ranking.Hook {
	return ranking.MultiHook(NewLogHook(log), NewMetricsHook(nil))
}
