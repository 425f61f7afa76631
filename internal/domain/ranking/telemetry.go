package ranking

import (
	"context"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
)

// Telemetry event names.
const (
	EventBatchStarted   = "match.batch.started"
	EventBatchCompleted = "match.batch.completed"
)

// StartEvent is emitted once validation of the weights and subject passed.
// Events carry identifiers and counts only.
type StartEvent struct {
	BatchID   string
	Direction model.Direction
	SubjectID string
	PoolSize  int
}

// CompleteEvent is emitted when a batch finishes, including cancelled ones.
type CompleteEvent struct {
	BatchID        string
	Direction      model.Direction
	SubjectID      string
	PoolSize       int
	Evaluated      int
	Skipped        int
	BelowThreshold int
	Returned       int
	Partial        bool
	Cancelled      bool
	Elapsed        time.Duration
}

// Hook receives batch telemetry. Implementations must be safe for
// concurrent use and should not block.
type Hook interface {
	BatchStarted(ctx context.Context, ev StartEvent)
	BatchCompleted(ctx context.Context, ev CompleteEvent)
}

type nopHook struct{}

func (nopHook) BatchStarted(context.Context, StartEvent) {}
func (nopHook) BatchCompleted(context.Context, CompleteEvent) {}

// NopHook discards every event.
func NopHook() Hook { return nopHook{} }

type multiHook []Hook

func (m multiHook) BatchStarted(ctx context.Context, ev StartEvent) {
	for _, h := range m {
		h.BatchStarted(ctx, ev)
	}
}

func (m multiHook) BatchCompleted(ctx context.Context, ev CompleteEvent) {
	for _, h := range m {
		h.BatchCompleted(ctx, ev)
	}
}

// MultiHook fans events out to hooks in order. Nil hooks are dropped.
func MultiHook(hooks ...Hook) Hook {
	out := make(multiHook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return NopHook()
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
