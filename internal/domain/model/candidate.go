package model

import (
	"fmt"
	"strings"
)

// Proficiency is an ordered skill level.
type Proficiency int

// Proficiency levels, lowest first. ProficiencyUnknown is what an unparseable
// level decodes to. Such records are still ranked; the skill just scores 0.
const (
	ProficiencyUnknown Proficiency = iota
	ProficiencyNovice
	ProficiencyIntermediate
	ProficiencyExpert
)

var proficiencyNames = map[Proficiency]string{
	ProficiencyNovice:       "novice",
	ProficiencyIntermediate: "intermediate",
	ProficiencyExpert:       "expert",
}

// ParseProficiency parses a level name case-insensitively.
func ParseProficiency(s string) (Proficiency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "novice":
		return ProficiencyNovice, nil
	case "intermediate":
		return ProficiencyIntermediate, nil
	case "expert":
		return ProficiencyExpert, nil
	default:
		return ProficiencyUnknown, fmt.Errorf("unknown proficiency %q", s)
	}
}

// Valid reports whether p is a known level.
func (p Proficiency) Valid() bool {
	return p >= ProficiencyNovice && p <= ProficiencyExpert
}

func (p Proficiency) String() string {
	if name, ok := proficiencyNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p Proficiency) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// ProficiencyUnknown instead of failing so a single bad record does not break
// decoding of a whole pool.
func (p *Proficiency) UnmarshalText(b []byte) error {
	v, err := ParseProficiency(string(b))
	if err != nil {
		*p = ProficiencyUnknown
		return nil
	}
	*p = v
	return nil
}

// VerificationKind names a verification a candidate holds.
type VerificationKind string

// Known verification kinds.
const (
	VerificationIdentity   VerificationKind = "identity_verified"
	VerificationEmployment VerificationKind = "employment_verified"
	VerificationEducation  VerificationKind = "education_verified"
)

// CandidateProfile is the matching-relevant view of an individual.
type CandidateProfile struct {
	ID                string                 `json:"id" yaml:"id"`
	Skills            map[string]Proficiency `json:"skills" yaml:"skills"`
	YearsExperience   float64                `json:"years_experience" yaml:"years_experience"`
	Region            string                 `json:"region,omitempty" yaml:"region,omitempty"`
	AvailabilityHours float64                `json:"availability_hours" yaml:"availability_hours"`
	Verifications     []VerificationKind     `json:"verifications,omitempty" yaml:"verifications,omitempty"`
	TrustScore        float64                `json:"trust_score" yaml:"trust_score"`
}

// HasVerification reports whether kind is present.
func (c *CandidateProfile) HasVerification(kind VerificationKind) bool {
	for _, v := range c.Verifications {
		if VerificationKind(NormalizeTag(string(v))) == kind {
			return true
		}
	}
	return false
}

// SkillLevels returns the skills keyed by normalized tag. When several raw
// names collapse onto one tag the highest level wins, so the result does not
// depend on map iteration order.
func (c *CandidateProfile) SkillLevels() map[string]Proficiency {
	out := make(map[string]Proficiency, len(c.Skills))
	for name, p := range c.Skills {
		tag := NormalizeTag(name)
		if tag == "" {
			continue
		}
		if cur, ok := out[tag]; !ok || p > cur {
			out[tag] = p
		}
	}
	return out
}
