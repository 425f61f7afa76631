package model

import "time"

// ScorerName identifies a registered scorer primitive.
type ScorerName string

// Registered scorer primitives.
const (
	ScorerSkillOverlap    ScorerName = "skill_overlap"
	ScorerExperienceFit   ScorerName = "experience_fit"
	ScorerLocationFit     ScorerName = "location_fit"
	ScorerAvailabilityFit ScorerName = "availability_fit"
	ScorerTrust           ScorerName = "trust"
)

// NumScorers is the number of registered primitives.
const NumScorers = 5

// scorerOrder is the fixed evaluation and accumulation order.
var scorerOrder = [NumScorers]ScorerName{
	ScorerSkillOverlap,
	ScorerExperienceFit,
	ScorerLocationFit,
	ScorerAvailabilityFit,
	ScorerTrust,
}

// ScorerNames returns the registered names in evaluation order.
func ScorerNames() []ScorerName {
	out := make([]ScorerName, NumScorers)
	copy(out, scorerOrder[:])
	return out
}

// ScorerIndex returns the position of name in evaluation order.
func ScorerIndex(name ScorerName) (int, bool) {
	for i, n := range scorerOrder {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// SubscoreBreakdown holds one value per registered primitive. Field order
// matches evaluation order, which is also the JSON key order.
type SubscoreBreakdown struct {
	SkillOverlap    float64 `json:"skill_overlap" yaml:"skill_overlap"`
	ExperienceFit   float64 `json:"experience_fit" yaml:"experience_fit"`
	LocationFit     float64 `json:"location_fit" yaml:"location_fit"`
	AvailabilityFit float64 `json:"availability_fit" yaml:"availability_fit"`
	Trust           float64 `json:"trust" yaml:"trust"`
}

// BreakdownFromValues builds a breakdown from values in evaluation order.
func BreakdownFromValues(v [NumScorers]float64) SubscoreBreakdown {
	return SubscoreBreakdown{
		SkillOverlap:    v[0],
		ExperienceFit:   v[1],
		LocationFit:     v[2],
		AvailabilityFit: v[3],
		Trust:           v[4],
	}
}

// Values returns the breakdown in evaluation order.
func (b SubscoreBreakdown) Values() [NumScorers]float64 {
	return [NumScorers]float64{
		b.SkillOverlap,
		b.ExperienceFit,
		b.LocationFit,
		b.AvailabilityFit,
		b.Trust,
	}
}

// Get returns the value recorded for name.
func (b SubscoreBreakdown) Get(name ScorerName) (float64, bool) {
	i, ok := ScorerIndex(name)
	if !ok {
		return 0, false
	}
	return b.Values()[i], true
}

// Tier buckets a composite score for presentation.
type Tier string

// Match tiers.
const (
	TierStrong Tier = "strong"
	TierNear   Tier = "near"
	TierWeak   Tier = "weak"
)

// MatchResult is one ranked pairing. It is a value; nothing in the engine
// keeps or mutates it after the batch returns.
type MatchResult struct {
	AssignmentID  string            `json:"assignment_id" yaml:"assignment_id"`
	CandidateID   string            `json:"candidate_id" yaml:"candidate_id"`
	Score         float64           `json:"score" yaml:"score"`
	Breakdown     SubscoreBreakdown `json:"breakdown" yaml:"breakdown"`
	Contributions SubscoreBreakdown `json:"contributions" yaml:"contributions"`
	Tier          Tier              `json:"tier" yaml:"tier"`
	Rank          int               `json:"rank" yaml:"rank"`
	ComputedAt    time.Time         `json:"computed_at" yaml:"computed_at"`
}

// Direction selects which side of the match is the pool.
type Direction string

// Ranking directions.
const (
	// DirectionCandidates ranks a candidate pool for one assignment.
	DirectionCandidates Direction = "candidates"
	// DirectionAssignments ranks an assignment pool for one candidate.
	DirectionAssignments Direction = "assignments"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionCandidates || d == DirectionAssignments
}

// MatchBatch is the output of one ranking call.
type MatchBatch struct {
	BatchID        string         `json:"batch_id" yaml:"batch_id"`
	Direction      Direction      `json:"direction" yaml:"direction"`
	SubjectID      string         `json:"subject_id" yaml:"subject_id"`
	Results        []MatchResult  `json:"results" yaml:"results"`
	PoolSize       int            `json:"pool_size" yaml:"pool_size"`
	Evaluated      int            `json:"evaluated" yaml:"evaluated"`
	Skipped        int            `json:"skipped" yaml:"skipped"`
	SkipReasons    map[string]int `json:"skip_reasons,omitempty" yaml:"skip_reasons,omitempty"`
	BelowThreshold int            `json:"below_threshold" yaml:"below_threshold"`
	Partial        bool           `json:"partial" yaml:"partial"`
	ComputedAt     time.Time      `json:"computed_at" yaml:"computed_at"`
}

// PoolID returns the identifier of the pool-side record in r.
func (r *MatchResult) PoolID(d Direction) string {
	if d == DirectionAssignments {
		return r.AssignmentID
	}
	return r.CandidateID
}
