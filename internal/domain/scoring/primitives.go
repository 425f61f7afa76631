// Package scoring computes deterministic compatibility scores between an
// assignment and a candidate profile.
//
// Every primitive is a total function returning a value in [0,1]. Primitives
// have no side effects and never read the clock; missing or malformed input
// yields the primitive's documented neutral or minimum value instead of an
// error.
package scoring

import (
	"math"

	"github.com/okian/matchcore/internal/domain/model"
)

// Primitive scoring constants.
const (
	noviceMultiplier       = 0.5
	intermediateMultiplier = 0.75
	expertMultiplier       = 1.0

	// Years below the minimum at which experience fit reaches zero.
	underqualifiedFalloffYears = 5.0
	// Years above the maximum at which experience fit reaches zero.
	overqualifiedFalloffYears = 10.0

	regionMismatchRemoteScore = 0.4
	identityVerifiedBonus     = 0.1
)

// Primitive scores one facet of a pairing.
type Primitive func(a *model.Assignment, c *model.CandidateProfile) float64

// ProficiencyMultiplier maps a level to its skill overlap contribution.
func ProficiencyMultiplier(p model.Proficiency) float64 {
	switch p {
	case model.ProficiencyNovice:
		return noviceMultiplier
	case model.ProficiencyIntermediate:
		return intermediateMultiplier
	case model.ProficiencyExpert:
		return expertMultiplier
	default:
		return 0
	}
}

// SkillOverlap is the sum of proficiency multipliers over matched required
// skills divided by the number of required skills.
func SkillOverlap(a *model.Assignment, c *model.CandidateProfile) float64 {
	required := a.SkillSet()
	if len(required) == 0 {
		return 0
	}
	levels := c.SkillLevels()
	var sum float64
	for _, tag := range required {
		if p, ok := levels[tag]; ok {
			sum += ProficiencyMultiplier(p)
		}
	}
	return clamp01(sum / float64(len(required)))
}

// ExperienceFit is 1 inside the accepted range and falls off linearly
// outside it: to zero at min-5 years below, to zero at max+10 years above.
func ExperienceFit(a *model.Assignment, c *model.CandidateProfile) float64 {
	years := c.YearsExperience
	lo, hi := a.Experience.MinYears, a.Experience.MaxYears
	if !finite(years) || years < 0 || !finite(lo) || !finite(hi) || lo < 0 || lo > hi {
		return 0
	}
	switch {
	case years < lo:
		return clamp01(1 - (lo-years)/underqualifiedFalloffYears)
	case years > hi:
		return clamp01(1 - (years-hi)/overqualifiedFalloffYears)
	default:
		return 1
	}
}

// LocationFit compares the assignment's location mode with the candidate region.
func LocationFit(a *model.Assignment, c *model.CandidateProfile) float64 {
	switch a.Location.Mode {
	case model.LocationRemoteAny:
		return 1
	case model.LocationRemoteRegion:
		if sameRegion(a.Location.Region, c.Region) {
			return 1
		}
		return regionMismatchRemoteScore
	case model.LocationOnsite:
		if sameRegion(a.Location.Region, c.Region) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AvailabilityFit is the candidate's weekly capacity over the required hours,
// capped at 1. An assignment that requires no hours is fully satisfied.
func AvailabilityFit(a *model.Assignment, c *model.CandidateProfile) float64 {
	required := a.Commitment.RequiredHours()
	if !finite(required) || required < 0 {
		return 0
	}
	if required == 0 {
		return 1
	}
	capacity := c.AvailabilityHours
	if !finite(capacity) || capacity <= 0 {
		return 0
	}
	return math.Min(capacity/required, 1)
}

// Trust passes the supplied trust score through, adding a bonus for
// identity-verified candidates.
func Trust(_ *model.Assignment, c *model.CandidateProfile) float64 {
	t := clamp01(c.TrustScore)
	if c.HasVerification(model.VerificationIdentity) {
		t += identityVerifiedBonus
	}
	return math.Min(t, 1)
}

func sameRegion(want, have string) bool {
	w, h := model.NormalizeTag(want), model.NormalizeTag(have)
	return w != "" && w == h
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// clamp01 bounds x to [0,1]; NaN maps to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
