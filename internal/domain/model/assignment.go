// Package model contains domain models passed between layers.
package model

import "strings"

// FullTimeHours is the weekly hour requirement implied by a full-time commitment.
const FullTimeHours = 40.0

// LocationMode describes where an assignment can be carried out.
type LocationMode string

// Supported location modes.
const (
	LocationRemoteAny    LocationMode = "remote_any"
	LocationRemoteRegion LocationMode = "remote_region"
	LocationOnsite       LocationMode = "onsite"
)

// Valid reports whether m is one of the known modes.
func (m LocationMode) Valid() bool {
	switch m {
	case LocationRemoteAny, LocationRemoteRegion, LocationOnsite:
		return true
	default:
		return false
	}
}

// NeedsRegion reports whether the mode is bound to a region code.
func (m LocationMode) NeedsRegion() bool {
	return m == LocationRemoteRegion || m == LocationOnsite
}

// LocationRequirement is an assignment's location constraint.
type LocationRequirement struct {
	Mode   LocationMode `json:"mode" yaml:"mode"`
	Region string       `json:"region,omitempty" yaml:"region,omitempty"`
}

// ExperienceRange is the accepted span of years of experience, inclusive.
type ExperienceRange struct {
	MinYears float64 `json:"min_years" yaml:"min_years"`
	MaxYears float64 `json:"max_years" yaml:"max_years"`
}

// TimeCommitment is the weekly effort an assignment asks for.
type TimeCommitment struct {
	HoursPerWeek float64 `json:"hours_per_week,omitempty" yaml:"hours_per_week,omitempty"`
	FullTime     bool    `json:"full_time,omitempty" yaml:"full_time,omitempty"`
}

// RequiredHours resolves the commitment to hours per week.
// A full-time flag wins over an explicit hour count.
func (t TimeCommitment) RequiredHours() float64 {
	if t.FullTime {
		return FullTimeHours
	}
	return t.HoursPerWeek
}

// Assignment is an opportunity posted by an organization.
type Assignment struct {
	ID             string              `json:"id" yaml:"id"`
	OrganizationID string              `json:"organization_id" yaml:"organization_id"`
	RequiredSkills []string            `json:"required_skills" yaml:"required_skills"`
	Experience     ExperienceRange     `json:"experience" yaml:"experience"`
	Location       LocationRequirement `json:"location" yaml:"location"`
	Commitment     TimeCommitment      `json:"commitment" yaml:"commitment"`
}

// SkillSet returns the distinct, normalized required skill tags.
// Empty tags are dropped.
func (a *Assignment) SkillSet() []string {
	seen := make(map[string]struct{}, len(a.RequiredSkills))
	out := make([]string, 0, len(a.RequiredSkills))
	for _, s := range a.RequiredSkills {
		tag := NormalizeTag(s)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// NormalizeTag canonicalizes skill tags and region codes for comparison.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
