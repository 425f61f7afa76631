package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/matchcore/internal/domain/model"
)

// Preset names.
const (
	PresetBalanced       = "balanced"
	PresetSkillsFirst    = "skills-first"
	PresetLogisticsFirst = "logistics-first"
)

var presets = map[string]WeightConfig{
	PresetBalanced: {
		string(model.ScorerSkillOverlap):    0.35,
		string(model.ScorerExperienceFit):   0.20,
		string(model.ScorerLocationFit):     0.15,
		string(model.ScorerAvailabilityFit): 0.15,
		string(model.ScorerTrust):           0.15,
	},
	PresetSkillsFirst: {
		string(model.ScorerSkillOverlap):    0.50,
		string(model.ScorerExperienceFit):   0.25,
		string(model.ScorerLocationFit):     0.10,
		string(model.ScorerAvailabilityFit): 0.05,
		string(model.ScorerTrust):           0.10,
	},
	PresetLogisticsFirst: {
		string(model.ScorerSkillOverlap):    0.20,
		string(model.ScorerExperienceFit):   0.10,
		string(model.ScorerLocationFit):     0.30,
		string(model.ScorerAvailabilityFit): 0.30,
		string(model.ScorerTrust):           0.10,
	},
}

// Preset returns a copy of the named weight preset.
func Preset(name string) (WeightConfig, error) {
	p, ok := presets[name]
	if !ok {
		return nil, &ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
	out := make(WeightConfig, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}

// PresetNames lists the available presets in lexical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultWeights returns the validated balanced preset.
func DefaultWeights() Weights {
	w, err := presets[PresetBalanced].Validate()
	if err != nil {
		panic(fmt.Sprintf("balanced preset is invalid: %v", err))
	}
	return w
}

// Resolve picks the weights a request asks for: explicit weights win, then a
// named preset, then the fallback.
func Resolve(weights WeightConfig, preset string, fallback WeightConfig) (WeightConfig, error) {
	switch {
	case len(weights) > 0:
		return weights, nil
	case preset != "":
		return Preset(preset)
	case len(fallback) > 0:
		return fallback, nil
	default:
		return Preset(PresetBalanced)
	}
}
