package ranking

import (
	"math"
	"time"

	"github.com/okian/matchcore/internal/domain/scoring"
)

// CancelPolicy decides what a cancelled batch returns.
type CancelPolicy int

const (
	// CancelFail discards the batch and returns ErrCancelled.
	CancelFail CancelPolicy = iota
	// CancelPartial returns whatever was scored, flagged as partial.
	CancelPartial
)

// ParseCancelPolicy maps "fail" and "partial" to a policy.
func ParseCancelPolicy(s string) (CancelPolicy, bool) {
	switch s {
	case "", "fail":
		return CancelFail, true
	case "partial":
		return CancelPartial, true
	default:
		return CancelFail, false
	}
}

func (p CancelPolicy) String() string {
	if p == CancelPartial {
		return "partial"
	}
	return "fail"
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the goroutines scoring one batch.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithInlineThreshold sets the pool size below which scoring stays on the
// calling goroutine.
func WithInlineThreshold(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.inlineBelow = n
		}
	}
}

// WithHook installs a telemetry hook.
func WithHook(h Hook) Option {
	return func(p *Pipeline) {
		if h != nil {
			p.hook = h
		}
	}
}

// WithClock overrides the time source used for ComputedAt and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithBatchIDs overrides the batch id generator.
func WithBatchIDs(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newID = next
		}
	}
}

// WithCancelPolicy selects the behavior on context cancellation.
func WithCancelPolicy(policy CancelPolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithMinScore drops results scoring below t. Values outside [0,1] are clamped.
func WithMinScore(t float64) Option {
	return func(p *Pipeline) {
		if math.IsNaN(t) {
			return
		}
		p.minScore = math.Max(0, math.Min(t, 1))
	}
}

// WithScorerOptions passes options to every composite the pipeline builds.
func WithScorerOptions(opts ...scoring.Option) Option {
	return func(p *Pipeline) {
		p.scorerOpts = append(p.scorerOpts, opts...)
	}
}
