package ranking_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingHook struct {
	mu        sync.Mutex
	started   []ranking.StartEvent
	completed []ranking.CompleteEvent
}

func (h *recordingHook) BatchStarted(_ context.Context, ev ranking.StartEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, ev)
}

func (h *recordingHook) BatchCompleted(_ context.Context, ev ranking.CompleteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, ev)
}

func balanced() scoring.WeightConfig {
	w, _ := scoring.Preset(scoring.PresetBalanced)
	return w
}

func subject() model.Assignment {
	return model.Assignment{
		ID:             "asg-1",
		OrganizationID: "org-1",
		RequiredSkills: []string{"go", "sql"},
		Experience:     model.ExperienceRange{MinYears: 2, MaxYears: 6},
		Location:       model.LocationRequirement{Mode: model.LocationRemoteAny},
		Commitment:     model.TimeCommitment{HoursPerWeek: 20},
	}
}

func profile(id string) model.CandidateProfile {
	return model.CandidateProfile{
		ID:                id,
		Skills:            map[string]model.Proficiency{"go": model.ProficiencyExpert},
		YearsExperience:   3,
		AvailabilityHours: 20,
		TrustScore:        0.5,
	}
}

func randomPool(n int, seed int64) []model.CandidateProfile {
	rng := rand.New(rand.NewSource(seed))
	levels := []model.Proficiency{model.ProficiencyNovice, model.ProficiencyIntermediate, model.ProficiencyExpert}
	pool := make([]model.CandidateProfile, n)
	for i := range pool {
		c := profile(fmt.Sprintf("cand-%04d", i))
		c.Skills = map[string]model.Proficiency{
			"go":  levels[rng.Intn(len(levels))],
			"sql": levels[rng.Intn(len(levels))],
		}
		c.YearsExperience = float64(rng.Intn(20))
		c.AvailabilityHours = float64(rng.Intn(41))
		c.TrustScore = float64(rng.Intn(11)) / 10
		pool[i] = c
	}
	return pool
}

func newPipeline(hook ranking.Hook, opts ...ranking.Option) *ranking.Pipeline {
	base := []ranking.Option{
		ranking.WithHook(hook),
		ranking.WithClock(func() time.Time { return fixedNow }),
		ranking.WithBatchIDs(func() string { return "batch-1" }),
	}
	return ranking.New(append(base, opts...)...)
}

func TestRankCandidates(t *testing.T) {
	ctx := context.Background()

	Convey("Given equally scored candidates", t, func() {
		p := newPipeline(&recordingHook{})
		pool := []model.CandidateProfile{profile("cand-002"), profile("cand-001")}

		batch, err := p.RankCandidates(ctx, subject(), pool, balanced(), 0)
		So(err, ShouldBeNil)

		Convey("Then ties break by candidate id ascending", func() {
			So(batch.Results[0].Score, ShouldEqual, batch.Results[1].Score)
			So(batch.Results[0].CandidateID, ShouldEqual, "cand-001")
			So(batch.Results[1].CandidateID, ShouldEqual, "cand-002")
			So(batch.Results[0].Rank, ShouldEqual, 1)
			So(batch.Results[1].Rank, ShouldEqual, 2)
		})

		Convey("Then batch metadata is filled in", func() {
			So(batch.BatchID, ShouldEqual, "batch-1")
			So(batch.Direction, ShouldEqual, model.DirectionCandidates)
			So(batch.SubjectID, ShouldEqual, "asg-1")
			So(batch.ComputedAt, ShouldEqual, fixedNow)
			So(batch.Results[0].ComputedAt, ShouldEqual, fixedNow)
			So(batch.Results[0].AssignmentID, ShouldEqual, "asg-1")
		})
	})

	Convey("Given a pool of ten with two missing ids", t, func() {
		hook := &recordingHook{}
		p := newPipeline(hook)
		pool := randomPool(10, 1)
		pool[3].ID = ""
		pool[7].ID = ""

		batch, err := p.RankCandidates(ctx, subject(), pool, balanced(), 0)
		So(err, ShouldBeNil)

		Convey("Then eight results come back and two are skipped", func() {
			So(len(batch.Results), ShouldEqual, 8)
			So(batch.Skipped, ShouldEqual, 2)
			So(batch.Evaluated, ShouldEqual, 8)
			So(batch.PoolSize, ShouldEqual, 10)
			So(batch.SkipReasons, ShouldResemble, map[string]int{ranking.ReasonMissingID: 2})
		})

		Convey("Then the hook sees both events with counts", func() {
			So(len(hook.started), ShouldEqual, 1)
			So(hook.started[0].PoolSize, ShouldEqual, 10)
			So(len(hook.completed), ShouldEqual, 1)
			done := hook.completed[0]
			So(done.Evaluated, ShouldEqual, 8)
			So(done.Skipped, ShouldEqual, 2)
			So(done.Returned, ShouldEqual, 8)
			So(done.Cancelled, ShouldBeFalse)
		})
	})

	Convey("Given duplicate and malformed records", t, func() {
		p := newPipeline(&recordingHook{})
		bad := profile("cand-009")
		bad.TrustScore = 1.5
		pool := []model.CandidateProfile{profile("cand-001"), profile("cand-001"), bad, profile("cand-002")}

		batch, err := p.RankCandidates(ctx, subject(), pool, balanced(), 0)
		So(err, ShouldBeNil)
		So(len(batch.Results), ShouldEqual, 2)
		So(batch.SkipReasons[ranking.ReasonDuplicateID], ShouldEqual, 1)
		So(batch.SkipReasons[ranking.ReasonInvalidTrust], ShouldEqual, 1)
	})

	Convey("Given a candidate with an unrecognised skill level", t, func() {
		p := newPipeline(&recordingHook{})
		odd := profile("cand-001")
		odd.Skills = map[string]model.Proficiency{"go": model.ProficiencyUnknown}

		batch, err := p.RankCandidates(ctx, subject(), []model.CandidateProfile{odd}, balanced(), 0)

		Convey("Then it is ranked rather than skipped", func() {
			So(err, ShouldBeNil)
			So(batch.Skipped, ShouldEqual, 0)
			So(len(batch.Results), ShouldEqual, 1)
			So(batch.Results[0].Breakdown.SkillOverlap, ShouldEqual, 0)
		})
	})

	Convey("Given fifty candidates and top-K of five", t, func() {
		p := newPipeline(&recordingHook{})
		batch, err := p.RankCandidates(ctx, subject(), randomPool(50, 7), balanced(), 5)
		So(err, ShouldBeNil)

		Convey("Then five results ranked one to five come back best first", func() {
			So(len(batch.Results), ShouldEqual, 5)
			So(batch.Evaluated, ShouldEqual, 50)
			for i, r := range batch.Results {
				So(r.Rank, ShouldEqual, i+1)
				if i > 0 {
					So(r.Score, ShouldBeLessThanOrEqualTo, batch.Results[i-1].Score)
				}
			}
		})

		Convey("Then they are the head of the full ranking", func() {
			full, err := p.RankCandidates(ctx, subject(), randomPool(50, 7), balanced(), 0)
			So(err, ShouldBeNil)
			So(len(full.Results), ShouldEqual, 50)
			for i, r := range batch.Results {
				So(r.CandidateID, ShouldEqual, full.Results[i].CandidateID)
				So(r.Score, ShouldEqual, full.Results[i].Score)
				So(r.Rank, ShouldEqual, full.Results[i].Rank)
			}
		})
	})

	Convey("Given a large pool", t, func() {
		pool := randomPool(2000, 99)
		sequential := newPipeline(&recordingHook{}, ranking.WithWorkers(1))
		parallel := newPipeline(&recordingHook{}, ranking.WithWorkers(8), ranking.WithInlineThreshold(0))

		Convey("Then parallel and sequential scoring agree exactly", func() {
			a, err := sequential.RankCandidates(ctx, subject(), pool, balanced(), 0)
			So(err, ShouldBeNil)
			b, err := parallel.RankCandidates(ctx, subject(), pool, balanced(), 0)
			So(err, ShouldBeNil)
			So(b, ShouldResemble, a)
		})

		Convey("Then repeated runs are identical", func() {
			a, _ := parallel.RankCandidates(ctx, subject(), pool, balanced(), 10)
			b, _ := parallel.RankCandidates(ctx, subject(), pool, balanced(), 10)
			So(b, ShouldResemble, a)
		})
	})

	Convey("Given a minimum score", t, func() {
		p := newPipeline(&recordingHook{}, ranking.WithMinScore(0.99))
		batch, err := p.RankCandidates(ctx, subject(), randomPool(20, 3), balanced(), 0)
		So(err, ShouldBeNil)
		So(batch.BelowThreshold+len(batch.Results), ShouldEqual, 20)
		for _, r := range batch.Results {
			So(r.Score, ShouldBeGreaterThanOrEqualTo, 0.99)
		}
	})
}

func TestRankFailures(t *testing.T) {
	ctx := context.Background()

	Convey("Given invalid weights", t, func() {
		hook := &recordingHook{}
		p := newPipeline(hook)
		_, err := p.RankCandidates(ctx, subject(), randomPool(3, 1), scoring.WeightConfig{"skill_overlap": 0.9}, 0)

		Convey("Then the batch fails before any telemetry", func() {
			So(errors.Is(err, ranking.ErrInvalidWeightConfig), ShouldBeTrue)
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
			So(hook.started, ShouldBeEmpty)
			So(hook.completed, ShouldBeEmpty)
		})
	})

	Convey("Given a malformed subject", t, func() {
		p := newPipeline(&recordingHook{})
		a := subject()
		a.RequiredSkills = nil
		_, err := p.RankCandidates(ctx, a, randomPool(3, 1), balanced(), 0)
		So(errors.Is(err, ranking.ErrInvalidSubject), ShouldBeTrue)

		c := profile("")
		_, err = p.RankAssignments(ctx, c, []model.Assignment{subject()}, balanced(), 0)
		So(errors.Is(err, ranking.ErrInvalidSubject), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then the fail policy returns ErrCancelled", func() {
			hook := &recordingHook{}
			p := newPipeline(hook)
			batch, err := p.RankCandidates(cctx, subject(), randomPool(5, 1), balanced(), 0)
			So(batch, ShouldBeNil)
			So(errors.Is(err, ranking.ErrCancelled), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(hook.completed[0].Cancelled, ShouldBeTrue)
		})

		Convey("Then the partial policy returns what was scored", func() {
			p := newPipeline(&recordingHook{}, ranking.WithCancelPolicy(ranking.CancelPartial))
			batch, err := p.RankCandidates(cctx, subject(), randomPool(5, 1), balanced(), 0)
			So(err, ShouldBeNil)
			So(batch.Partial, ShouldBeTrue)
			So(batch.Evaluated, ShouldEqual, 0)
			So(batch.Results, ShouldBeEmpty)
		})
	})
}

func TestRankAssignments(t *testing.T) {
	Convey("Given one candidate and equally scored assignments", t, func() {
		p := newPipeline(&recordingHook{})
		a2, a1 := subject(), subject()
		a2.ID, a1.ID = "asg-002", "asg-001"
		weak := subject()
		weak.ID = "asg-000"
		weak.RequiredSkills = []string{"cobol"}

		batch, err := p.RankAssignments(context.Background(), profile("cand-1"),
			[]model.Assignment{a2, weak, a1}, balanced(), 0)
		So(err, ShouldBeNil)

		Convey("Then assignments are ordered by score then id", func() {
			So(batch.Direction, ShouldEqual, model.DirectionAssignments)
			So(batch.SubjectID, ShouldEqual, "cand-1")
			So(len(batch.Results), ShouldEqual, 3)
			So(batch.Results[0].AssignmentID, ShouldEqual, "asg-001")
			So(batch.Results[1].AssignmentID, ShouldEqual, "asg-002")
			So(batch.Results[2].AssignmentID, ShouldEqual, "asg-000")
			So(batch.Results[0].CandidateID, ShouldEqual, "cand-1")
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("With returns a modified copy", t, func() {
		base := ranking.New()
		strict := base.With(ranking.WithMinScore(0.5), ranking.WithCancelPolicy(ranking.CancelPartial))
		So(base.MinScore(), ShouldEqual, 0)
		So(base.CancelPolicy(), ShouldEqual, ranking.CancelFail)
		So(strict.MinScore(), ShouldEqual, 0.5)
		So(strict.CancelPolicy(), ShouldEqual, ranking.CancelPartial)
	})

	Convey("Cancel policies parse by name", t, func() {
		p, ok := ranking.ParseCancelPolicy("partial")
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, ranking.CancelPartial)
		So(p.String(), ShouldEqual, "partial")
		_, ok = ranking.ParseCancelPolicy("retry")
		So(ok, ShouldBeFalse)
	})

	Convey("MultiHook fans out and tolerates nils", t, func() {
		a, b := &recordingHook{}, &recordingHook{}
		h := ranking.MultiHook(a, nil, b)
		h.BatchStarted(context.Background(), ranking.StartEvent{BatchID: "x"})
		So(len(a.started), ShouldEqual, 1)
		So(len(b.started), ShouldEqual, 1)
		So(ranking.MultiHook(nil), ShouldNotBeNil)
	})
}
