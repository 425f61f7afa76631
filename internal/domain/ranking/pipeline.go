// Package ranking turns a subject and a pool into an ordered, explainable
// batch of match results.
package ranking

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/scoring"
)

const defaultInlineThreshold = 256

// Pipeline ranks pools against a subject. A Pipeline is immutable after
// construction and safe for concurrent use.
type Pipeline struct {
	workers     int
	inlineBelow int
	hook        Hook
	now         func() time.Time
	newID       func() string
	policy      CancelPolicy
	minScore    float64
	scorerOpts  []scoring.Option
}

// New builds a pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		workers:     runtime.GOMAXPROCS(0),
		inlineBelow: defaultInlineThreshold,
		hook:        NopHook(),
		now:         time.Now,
		newID:       uuid.NewString,
		policy:      CancelFail,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With returns a copy of p with extra options applied. p is unchanged.
func (p *Pipeline) With(opts ...Option) *Pipeline {
	cp := *p
	cp.scorerOpts = append([]scoring.Option(nil), p.scorerOpts...)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// MinScore returns the configured score floor.
func (p *Pipeline) MinScore() float64 { return p.minScore }

// CancelPolicy returns the configured cancellation policy.
func (p *Pipeline) CancelPolicy() CancelPolicy { return p.policy }

// RankCandidates scores every candidate in pool against a and returns them
// best first. topK <= 0 returns every result.
func (p *Pipeline) RankCandidates(ctx context.Context, a model.Assignment, pool []model.CandidateProfile, weights scoring.WeightConfig, topK int) (*model.MatchBatch, error) {
	comp, err := p.composite(weights)
	if err != nil {
		return nil, err
	}
	if reason := ValidateAssignment(&a); reason != "" {
		return nil, fmt.Errorf("%w: assignment %q: %s", ErrInvalidSubject, a.ID, reason)
	}
	return p.rank(ctx, poolView{
		direction: model.DirectionCandidates,
		subjectID: a.ID,
		size:      len(pool),
		id:        func(i int) string { return pool[i].ID },
		validate:  func(i int) string { return ValidateCandidate(&pool[i]) },
		evaluate:  func(i int) scoring.Evaluation { return comp.Evaluate(&a, &pool[i]) },
		pair:      func(i int) (string, string) { return a.ID, pool[i].ID },
	}, topK)
}

// RankAssignments scores every assignment in pool against c and returns them
// best first. topK <= 0 returns every result.
func (p *Pipeline) RankAssignments(ctx context.Context, c model.CandidateProfile, pool []model.Assignment, weights scoring.WeightConfig, topK int) (*model.MatchBatch, error) {
	comp, err := p.composite(weights)
	if err != nil {
		return nil, err
	}
	if reason := ValidateCandidate(&c); reason != "" {
		return nil, fmt.Errorf("%w: candidate %q: %s", ErrInvalidSubject, c.ID, reason)
	}
	return p.rank(ctx, poolView{
		direction: model.DirectionAssignments,
		subjectID: c.ID,
		size:      len(pool),
		id:        func(i int) string { return pool[i].ID },
		validate:  func(i int) string { return ValidateAssignment(&pool[i]) },
		evaluate:  func(i int) scoring.Evaluation { return comp.Evaluate(&pool[i], &c) },
		pair:      func(i int) (string, string) { return pool[i].ID, c.ID },
	}, topK)
}

func (p *Pipeline) composite(weights scoring.WeightConfig) (*scoring.Composite, error) {
	comp, err := scoring.NewComposite(weights, p.scorerOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWeightConfig, err)
	}
	return comp, nil
}

// poolView gives rank index-based access to either pool direction. pair
// returns the assignment and candidate ids for pool record i.
type poolView struct {
	direction model.Direction
	subjectID string
	size      int
	id        func(i int) string
	validate  func(i int) string
	evaluate  func(i int) scoring.Evaluation
	pair      func(i int) (string, string)
}

func (p *Pipeline) rank(ctx context.Context, v poolView, topK int) (*model.MatchBatch, error) {
	started := p.now()
	batch := &model.MatchBatch{
		BatchID:    p.newID(),
		Direction:  v.direction,
		SubjectID:  v.subjectID,
		PoolSize:   v.size,
		ComputedAt: started,
	}
	p.hook.BatchStarted(ctx, StartEvent{
		BatchID:   batch.BatchID,
		Direction: v.direction,
		SubjectID: v.subjectID,
		PoolSize:  v.size,
	})

	valid, reasons := p.screen(v)
	batch.Skipped = v.size - len(valid)
	if len(reasons) > 0 {
		batch.SkipReasons = reasons
	}

	evals := make([]scoring.Evaluation, len(valid))
	done := make([]bool, len(valid))
	scoreErr := p.score(ctx, len(valid), func(slot int) {
		evals[slot] = v.evaluate(valid[slot])
		done[slot] = true
	})

	for _, ok := range done {
		if ok {
			batch.Evaluated++
		}
	}

	if scoreErr != nil {
		if p.policy == CancelFail {
			p.complete(ctx, batch, started, true)
			return nil, fmt.Errorf("%w: %w", ErrCancelled, scoreErr)
		}
		batch.Partial = true
	}

	results := make([]model.MatchResult, 0, batch.Evaluated)
	for slot, i := range valid {
		if !done[slot] {
			continue
		}
		ev := evals[slot]
		if ev.Score < p.minScore {
			batch.BelowThreshold++
			continue
		}
		assignmentID, candidateID := v.pair(i)
		results = append(results, model.MatchResult{
			AssignmentID:  assignmentID,
			CandidateID:   candidateID,
			Score:         ev.Score,
			Breakdown:     ev.Breakdown,
			Contributions: ev.Contributions,
			Tier:          ev.Tier,
			ComputedAt:    started,
		})
	}

	sortResults(results, v.direction)
	if topK > 0 && len(results) > topK {
		results = results[:topK:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	batch.Results = results

	p.complete(ctx, batch, started, scoreErr != nil)
	return batch, nil
}

// screen validates the pool sequentially and returns the indexes worth
// scoring. Any record carrying an id claims it, so the second and later
// occurrences of an id are skipped even when the first was invalid.
func (p *Pipeline) screen(v poolView) ([]int, map[string]int) {
	valid := make([]int, 0, v.size)
	seen := make(map[string]struct{}, v.size)
	reasons := make(map[string]int)
	for i := 0; i < v.size; i++ {
		id := v.id(i)
		reason := v.validate(i)
		if id != "" {
			if _, dup := seen[id]; dup {
				reason = ReasonDuplicateID
			}
			seen[id] = struct{}{}
		}
		if reason != "" {
			reasons[reason]++
			continue
		}
		valid = append(valid, i)
	}
	return valid, reasons
}

// score evaluates n slots. Large inputs are split into contiguous shards,
// one goroutine each, writing disjoint slots. The context is checked before
// every record.
func (p *Pipeline) score(ctx context.Context, n int, eval func(slot int)) error {
	run := func(ctx context.Context, lo, hi int) error {
		for slot := lo; slot < hi; slot++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			eval(slot)
		}
		return nil
	}

	if n < p.inlineBelow || p.workers <= 1 || n < 2 {
		return run(ctx, 0, n)
	}

	shards := p.workers
	if shards > n {
		shards = n
	}
	size := (n + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error { return run(gctx, lo, hi) })
	}
	return g.Wait()
}

func (p *Pipeline) complete(ctx context.Context, b *model.MatchBatch, started time.Time, cancelled bool) {
	p.hook.BatchCompleted(ctx, CompleteEvent{
		BatchID:        b.BatchID,
		Direction:      b.Direction,
		SubjectID:      b.SubjectID,
		PoolSize:       b.PoolSize,
		Evaluated:      b.Evaluated,
		Skipped:        b.Skipped,
		BelowThreshold: b.BelowThreshold,
		Returned:       len(b.Results),
		Partial:        b.Partial,
		Cancelled:      cancelled,
		Elapsed:        p.now().Sub(started),
	})
}

// sortResults orders by score descending, then pool-side id ascending.
func sortResults(results []model.MatchResult, d model.Direction) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PoolID(d) < results[j].PoolID(d)
	})
}
