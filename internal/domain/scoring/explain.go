package scoring

import (
	"sort"

	"github.com/okian/matchcore/internal/domain/model"
)

const (
	strengthThreshold = 0.8
	gapThreshold      = 0.5
	highImpactWeight  = 0.25
)

// Gap impact levels.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
)

// Strength is a facet the candidate scores well on.
type Strength struct {
	Scorer model.ScorerName `json:"scorer"`
	Score  float64          `json:"score"`
}

// Gap is a weighted facet the candidate scores poorly on.
type Gap struct {
	Scorer model.ScorerName `json:"scorer"`
	Score  float64          `json:"score"`
	Impact string           `json:"impact"`
}

// Explanation is a human-oriented reading of an Evaluation.
type Explanation struct {
	AssignmentID  string                  `json:"assignment_id"`
	CandidateID   string                  `json:"candidate_id"`
	Score         float64                 `json:"score"`
	Tier          model.Tier              `json:"tier"`
	Breakdown     model.SubscoreBreakdown `json:"breakdown"`
	Contributions model.SubscoreBreakdown `json:"contributions"`
	Strengths     []Strength              `json:"strengths"`
	Gaps          []Gap                   `json:"gaps"`
	MissingSkills []string                `json:"missing_skills"`
}

// Explain evaluates the pairing and lists strengths, gaps and missing skills.
// Facets with zero weight are never reported as gaps.
func (c *Composite) Explain(a *model.Assignment, cand *model.CandidateProfile) Explanation {
	ev := c.Evaluate(a, cand)
	out := Explanation{
		AssignmentID:  a.ID,
		CandidateID:   cand.ID,
		Score:         ev.Score,
		Tier:          ev.Tier,
		Breakdown:     ev.Breakdown,
		Contributions: ev.Contributions,
		Strengths:     []Strength{},
		Gaps:          []Gap{},
		MissingSkills: missingSkills(a, cand),
	}

	sub := ev.Breakdown.Values()
	for i, reg := range registry {
		s, w := sub[i], c.weights.values[i]
		switch {
		case s >= strengthThreshold:
			out.Strengths = append(out.Strengths, Strength{Scorer: reg.Name, Score: s})
		case s < gapThreshold && w > 0:
			impact := ImpactMedium
			if w >= highImpactWeight {
				impact = ImpactHigh
			}
			out.Gaps = append(out.Gaps, Gap{Scorer: reg.Name, Score: s, Impact: impact})
		}
	}
	return out
}

// Explain validates weights and explains one pairing.
func Explain(a *model.Assignment, cand *model.CandidateProfile, weights WeightConfig) (Explanation, error) {
	c, err := NewComposite(weights)
	if err != nil {
		return Explanation{}, err
	}
	return c.Explain(a, cand), nil
}

func missingSkills(a *model.Assignment, cand *model.CandidateProfile) []string {
	levels := cand.SkillLevels()
	missing := []string{}
	for _, tag := range a.SkillSet() {
		if _, ok := levels[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	sort.Strings(missing)
	return missing
}
