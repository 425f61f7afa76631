package scoring

import "github.com/okian/matchcore/internal/domain/model"

// Default tier thresholds.
const (
	DefaultStrongThreshold = 0.75
	DefaultNearThreshold   = 0.60
)

// Evaluation is the outcome of scoring one pairing.
type Evaluation struct {
	Score         float64
	Breakdown     model.SubscoreBreakdown
	Contributions model.SubscoreBreakdown
	Tier          model.Tier
}

// Composite scores pairings with a fixed, pre-validated weight set. It holds
// no mutable state and is safe for concurrent use.
type Composite struct {
	weights  Weights
	strongAt float64
	nearAt   float64
}

// Option configures a Composite.
type Option func(*Composite)

// WithTierThresholds overrides the strong and near tier cut-offs.
func WithTierThresholds(strong, near float64) Option {
	return func(c *Composite) {
		if near >= 0 && strong >= near && strong <= 1 {
			c.strongAt = strong
			c.nearAt = near
		}
	}
}

// NewComposite validates cfg and returns a composite scorer for it.
func NewComposite(cfg WeightConfig, opts ...Option) (*Composite, error) {
	w, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return NewCompositeFromWeights(w, opts...), nil
}

// NewCompositeFromWeights wraps weights that were already validated.
func NewCompositeFromWeights(w Weights, opts ...Option) *Composite {
	c := &Composite{
		weights:  w,
		strongAt: DefaultStrongThreshold,
		nearAt:   DefaultNearThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weights returns the weight set in use.
func (c *Composite) Weights() Weights {
	return c.weights
}

// Evaluate runs every registered primitive exactly once, in registry order,
// and accumulates the weighted sum in the same order.
func (c *Composite) Evaluate(a *model.Assignment, cand *model.CandidateProfile) Evaluation {
	var sub, contrib [model.NumScorers]float64
	var total float64
	for i, reg := range registry {
		s := clamp01(reg.Fn(a, cand))
		sub[i] = s
		contrib[i] = c.weights.values[i] * s
		total += contrib[i]
	}
	total = clamp01(total)
	return Evaluation{
		Score:         total,
		Breakdown:     model.BreakdownFromValues(sub),
		Contributions: model.BreakdownFromValues(contrib),
		Tier:          c.TierFor(total),
	}
}

// TierFor buckets score using the composite's thresholds.
func (c *Composite) TierFor(score float64) model.Tier {
	switch {
	case score >= c.strongAt:
		return model.TierStrong
	case score >= c.nearAt:
		return model.TierNear
	default:
		return model.TierWeak
	}
}

// Score validates weights and scores one pairing.
func Score(a *model.Assignment, cand *model.CandidateProfile, weights WeightConfig) (float64, model.SubscoreBreakdown, error) {
	c, err := NewComposite(weights)
	if err != nil {
		return 0, model.SubscoreBreakdown{}, err
	}
	ev := c.Evaluate(a, cand)
	return ev.Score, ev.Breakdown, nil
}

// TierFor buckets score with the default thresholds.
func TierFor(score float64) model.Tier {
	return (&Composite{strongAt: DefaultStrongThreshold, nearAt: DefaultNearThreshold}).TierFor(score)
}
