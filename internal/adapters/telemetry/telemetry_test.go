package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/pkg/logger"
	"github.com/okian/matchcore/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeRecorder struct {
	direction, outcome string
	evaluated, skipped int
}

func (f *fakeRecorder) RecordBatch(direction, outcome string, _, evaluated, skipped, _ int, _ time.Duration) {
	f.direction, f.outcome = direction, outcome
	f.evaluated, f.skipped = evaluated, skipped
}

func TestLogHook(t *testing.T) {
	Convey("Given a log hook writing JSON", t, func() {
		var buf bytes.Buffer
		So(logger.SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = logger.SetLevelString("info") }()
		hook := NewLogHook(logger.New(&buf, logger.FormatJSON))
		ctx := context.Background()

		hook.BatchStarted(ctx, ranking.StartEvent{BatchID: "b-1", Direction: model.DirectionCandidates, SubjectID: "asg-1", PoolSize: 10})
		hook.BatchCompleted(ctx, ranking.CompleteEvent{BatchID: "b-1", Evaluated: 8, Skipped: 2, Returned: 5})

		Convey("Then both events are logged with ids and counts", func() {
			out := buf.String()
			So(out, ShouldContainSubstring, `"msg":"match.batch.started"`)
			So(out, ShouldContainSubstring, `"msg":"match.batch.completed"`)
			So(out, ShouldContainSubstring, `"subject_id":"asg-1"`)
			So(out, ShouldContainSubstring, `"evaluated":8`)
		})
	})
}

func TestMetricsHook(t *testing.T) {
	Convey("Given a metrics hook over a fake recorder", t, func() {
		rec := &fakeRecorder{}
		hook := NewMetricsHook(rec)

		hook.BatchCompleted(context.Background(), ranking.CompleteEvent{
			Direction: model.DirectionAssignments, Evaluated: 4, Skipped: 1,
		})

		So(rec.direction, ShouldEqual, "assignments")
		So(rec.outcome, ShouldEqual, metrics.OutcomeOK)
		So(rec.evaluated, ShouldEqual, 4)
		So(rec.skipped, ShouldEqual, 1)
	})

	Convey("Outcomes classify partial and cancelled batches", t, func() {
		So(Outcome(ranking.CompleteEvent{Partial: true, Cancelled: true}), ShouldEqual, metrics.OutcomePartial)
		So(Outcome(ranking.CompleteEvent{Cancelled: true}), ShouldEqual, metrics.OutcomeCancelled)
		So(Outcome(ranking.CompleteEvent{}), ShouldEqual, metrics.OutcomeOK)
	})

	Convey("The combined hook works against the global registry", t, func() {
		h := New(logger.Nop())
		So(func() {
			h.BatchStarted(context.Background(), ranking.StartEvent{BatchID: "b"})
			h.BatchCompleted(context.Background(), ranking.CompleteEvent{BatchID: "b", Direction: model.DirectionCandidates})
		}, ShouldNotPanic)
	})
}
