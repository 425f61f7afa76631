package ranking

import (
	"math"

	"github.com/okian/matchcore/internal/domain/model"
)

// Skip reasons reported in MatchBatch.SkipReasons.
const (
	ReasonMissingID           = "missing_id"
	ReasonDuplicateID         = "duplicate_id"
	ReasonNoRequiredSkills    = "no_required_skills"
	ReasonInvalidExperience   = "invalid_experience"
	ReasonInvalidLocation     = "invalid_location"
	ReasonInvalidCommitment   = "invalid_commitment"
	ReasonInvalidYears        = "invalid_years"
	ReasonInvalidAvailability = "invalid_availability"
	ReasonInvalidTrust        = "invalid_trust"
)

// ValidateAssignment returns the first reason a is unusable, or "".
func ValidateAssignment(a *model.Assignment) string {
	switch {
	case a.ID == "":
		return ReasonMissingID
	case len(a.SkillSet()) == 0:
		return ReasonNoRequiredSkills
	case !finite(a.Experience.MinYears) || !finite(a.Experience.MaxYears) ||
		a.Experience.MinYears < 0 || a.Experience.MinYears > a.Experience.MaxYears:
		return ReasonInvalidExperience
	case !a.Location.Mode.Valid() ||
		(a.Location.Mode.NeedsRegion() && model.NormalizeTag(a.Location.Region) == ""):
		return ReasonInvalidLocation
	case !finite(a.Commitment.HoursPerWeek) || a.Commitment.HoursPerWeek < 0:
		return ReasonInvalidCommitment
	}
	return ""
}

// ValidateCandidate returns the first reason c is unusable, or "".
// Unknown proficiency levels are tolerated; they score nothing.
func ValidateCandidate(c *model.CandidateProfile) string {
	switch {
	case c.ID == "":
		return ReasonMissingID
	case !finite(c.YearsExperience) || c.YearsExperience < 0:
		return ReasonInvalidYears
	case !finite(c.AvailabilityHours) || c.AvailabilityHours < 0:
		return ReasonInvalidAvailability
	case !finite(c.TrustScore) || c.TrustScore < 0 || c.TrustScore > 1:
		return ReasonInvalidTrust
	}
	return ""
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
