// Package pool builds synthetic assignment and candidate pools and reads and
// writes them as YAML or JSON files.
package pool

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/matchcore/internal/domain/model"
)

var (
	defaultSkills  = []string{"go", "sql", "kubernetes", "terraform", "react", "python", "grpc", "kafka", "postgres", "aws"}
	defaultRegions = []string{"eu-west", "eu-central", "us-east", "us-west", "ap-south"}
)

var proficiencies = []model.Proficiency{
	model.ProficiencyNovice,
	model.ProficiencyIntermediate,
	model.ProficiencyExpert,
}

var verifications = []model.VerificationKind{
	model.VerificationIdentity,
	model.VerificationEmployment,
	model.VerificationEducation,
}

// Generator produces reproducible records: the same seed and options yield
// the same records, ids included. It is not safe for concurrent use.
type Generator struct {
	rng     *rand.Rand
	skills  []string
	regions []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSkills sets the skill vocabulary.
func WithSkills(skills ...string) Option {
	return func(g *Generator) {
		if len(skills) > 0 {
			g.skills = append([]string(nil), skills...)
		}
	}
}

// WithRegions sets the region vocabulary.
func WithRegions(regions ...string) Option {
	return func(g *Generator) {
		if len(regions) > 0 {
			g.regions = append([]string(nil), regions...)
		}
	}
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed int64, opts ...Option) *Generator {
	g := &Generator{
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible fixtures
		skills:  defaultSkills,
		regions: defaultRegions,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) id(prefix string) string {
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		// rand.Rand never fails to read
		panic(fmt.Sprintf("generate id: %v", err))
	}
	return prefix + "-" + u.String()
}

// Assignment returns one valid assignment.
func (g *Generator) Assignment() model.Assignment {
	minYears := float64(g.rng.Intn(8))
	a := model.Assignment{
		ID:             g.id("asg"),
		OrganizationID: fmt.Sprintf("org-%03d", g.rng.Intn(100)),
		RequiredSkills: g.pickSkills(1 + g.rng.Intn(4)),
		Experience:     model.ExperienceRange{MinYears: minYears, MaxYears: minYears + float64(1+g.rng.Intn(6))},
	}

	switch g.rng.Intn(3) {
	case 0:
		a.Location = model.LocationRequirement{Mode: model.LocationRemoteAny}
	case 1:
		a.Location = model.LocationRequirement{Mode: model.LocationRemoteRegion, Region: g.pickRegion()}
	default:
		a.Location = model.LocationRequirement{Mode: model.LocationOnsite, Region: g.pickRegion()}
	}

	if g.rng.Intn(4) == 0 {
		a.Commitment = model.TimeCommitment{FullTime: true}
	} else {
		a.Commitment = model.TimeCommitment{HoursPerWeek: float64(5 * (1 + g.rng.Intn(8)))}
	}
	return a
}

// Candidate returns one valid candidate profile.
func (g *Generator) Candidate() model.CandidateProfile {
	tags := g.pickSkills(1 + g.rng.Intn(5))
	skills := make(map[string]model.Proficiency, len(tags))
	for _, tag := range tags {
		skills[tag] = proficiencies[g.rng.Intn(len(proficiencies))]
	}

	var verified []model.VerificationKind
	for _, v := range verifications {
		if g.rng.Intn(2) == 0 {
			verified = append(verified, v)
		}
	}

	return model.CandidateProfile{
		ID:                g.id("cand"),
		Skills:            skills,
		YearsExperience:   float64(g.rng.Intn(25)),
		Region:            g.pickRegion(),
		AvailabilityHours: float64(g.rng.Intn(9) * 5),
		Verifications:     verified,
		TrustScore:        float64(g.rng.Intn(101)) / 100,
	}
}

// Candidates returns n candidate profiles.
func (g *Generator) Candidates(n int) []model.CandidateProfile {
	out := make([]model.CandidateProfile, max(n, 0))
	for i := range out {
		out[i] = g.Candidate()
	}
	return out
}

// Assignments returns n assignments.
func (g *Generator) Assignments(n int) []model.Assignment {
	out := make([]model.Assignment, max(n, 0))
	for i := range out {
		out[i] = g.Assignment()
	}
	return out
}

// Request returns a ranking request with a subject and a pool of n records
// for direction.
func (g *Generator) Request(direction model.Direction, n int) (model.RankRequest, error) {
	switch direction {
	case model.DirectionCandidates:
		a := g.Assignment()
		return model.RankRequest{Direction: direction, Assignment: &a, Candidates: g.Candidates(n)}, nil
	case model.DirectionAssignments:
		c := g.Candidate()
		return model.RankRequest{Direction: direction, Candidate: &c, Assignments: g.Assignments(n)}, nil
	default:
		return model.RankRequest{}, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}
}

// pickSkills draws n distinct skills.
func (g *Generator) pickSkills(n int) []string {
	n = min(n, len(g.skills))
	perm := g.rng.Perm(len(g.skills))
	out := make([]string, n)
	for i := range out {
		out[i] = g.skills[perm[i]]
	}
	return out
}

func (g *Generator) pickRegion() string {
	return g.regions[g.rng.Intn(len(g.regions))]
}
