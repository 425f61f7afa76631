package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/matchcore/internal/domain/model"
)

// WeightTolerance is the accepted distance of a weight sum from 1.0.
const WeightTolerance = 1e-6

// sumSlack absorbs representation error in decimal weights such as 0.999999.
const sumSlack = 1e-12

// Registration binds a scorer name to its primitive.
type Registration struct {
	Name model.ScorerName
	Fn   Primitive
}

// registry lists the primitives in evaluation order. It must stay aligned
// with model.ScorerNames.
var registry = [model.NumScorers]Registration{
	{Name: model.ScorerSkillOverlap, Fn: SkillOverlap},
	{Name: model.ScorerExperienceFit, Fn: ExperienceFit},
	{Name: model.ScorerLocationFit, Fn: LocationFit},
	{Name: model.ScorerAvailabilityFit, Fn: AvailabilityFit},
	{Name: model.ScorerTrust, Fn: Trust},
}

// Registry returns the registered primitives in evaluation order.
func Registry() []Registration {
	out := make([]Registration, len(registry))
	copy(out, registry[:])
	return out
}

// WeightConfig maps scorer names to weights as supplied by callers.
// Missing names weigh 0.
type WeightConfig map[string]float64

// Weights is a validated weight configuration indexed in evaluation order.
// The zero value is not valid; obtain one from WeightConfig.Validate.
type Weights struct {
	values [model.NumScorers]float64
}

// Validate checks that every name is registered, every weight is finite and
// non-negative, and the weights sum to 1 within WeightTolerance.
func (w WeightConfig) Validate() (Weights, error) {
	var out Weights

	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := w[name]
		i, ok := model.ScorerIndex(model.ScorerName(name))
		if !ok {
			return Weights{}, &ConfigError{Field: name, Reason: "unknown scorer"}
		}
		if !finite(v) {
			return Weights{}, &ConfigError{Field: name, Reason: "weight is not finite"}
		}
		if v < 0 {
			return Weights{}, &ConfigError{Field: name, Reason: fmt.Sprintf("negative weight %g", v)}
		}
		out.values[i] = v
	}

	sum := out.Sum()
	if math.Abs(sum-1) > WeightTolerance+sumSlack {
		return Weights{}, &ConfigError{Field: "sum", Reason: fmt.Sprintf("weights sum to %.9f, want 1.0", sum)}
	}
	return out, nil
}

// Sum adds the weights in evaluation order.
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum
}

// Get returns the weight for name.
func (w Weights) Get(name model.ScorerName) float64 {
	i, ok := model.ScorerIndex(name)
	if !ok {
		return 0
	}
	return w.values[i]
}

// Values returns the weights in evaluation order.
func (w Weights) Values() [model.NumScorers]float64 {
	return w.values
}

// Config converts the weights back to a name-keyed map with every
// registered name present.
func (w Weights) Config() WeightConfig {
	out := make(WeightConfig, model.NumScorers)
	for i, reg := range registry {
		out[string(reg.Name)] = w.values[i]
	}
	return out
}

// Normalize rescales non-negative weights so they sum to 1. All-zero input
// yields the balanced preset. Unknown names and negative or non-finite
// weights are rejected exactly like Validate.
func Normalize(raw WeightConfig) (WeightConfig, error) {
	var vals [model.NumScorers]float64
	for name, v := range raw {
		i, ok := model.ScorerIndex(model.ScorerName(name))
		if !ok {
			return nil, &ConfigError{Field: name, Reason: "unknown scorer"}
		}
		if !finite(v) || v < 0 {
			return nil, &ConfigError{Field: name, Reason: fmt.Sprintf("invalid weight %g", v)}
		}
		vals[i] = v
	}

	var sum float64
	for _, v := range vals {
		sum += v
	}
	if sum == 0 {
		return Preset(PresetBalanced)
	}

	out := make(WeightConfig, model.NumScorers)
	for i, reg := range registry {
		out[string(reg.Name)] = vals[i] / sum
	}
	return out, nil
}
