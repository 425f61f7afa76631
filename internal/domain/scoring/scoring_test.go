package scoring_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func assignment() *model.Assignment {
	return &model.Assignment{
		ID:             "asg-1",
		OrganizationID: "org-1",
		RequiredSkills: []string{"go", "sql"},
		Experience:     model.ExperienceRange{MinYears: 3, MaxYears: 5},
		Location:       model.LocationRequirement{Mode: model.LocationRemoteRegion, Region: "US-CA"},
		Commitment:     model.TimeCommitment{HoursPerWeek: 20},
	}
}

func candidate() *model.CandidateProfile {
	return &model.CandidateProfile{
		ID: "cand-1",
		Skills: map[string]model.Proficiency{
			"Go":  model.ProficiencyExpert,
			"SQL": model.ProficiencyNovice,
		},
		YearsExperience:   4,
		Region:            "US-CA",
		AvailabilityHours: 20,
		TrustScore:        0.5,
	}
}

func TestSkillOverlap(t *testing.T) {
	Convey("Given an assignment requiring go and sql", t, func() {
		a, c := assignment(), candidate()

		Convey("Then matched skills are weighted by proficiency", func() {
			So(scoring.SkillOverlap(a, c), ShouldEqual, 0.75)
		})

		Convey("Then raising a matched level never lowers the score", func() {
			before := scoring.SkillOverlap(a, c)
			c.Skills["SQL"] = model.ProficiencyIntermediate
			after := scoring.SkillOverlap(a, c)
			So(after, ShouldBeGreaterThanOrEqualTo, before)
			So(after, ShouldEqual, 0.875)
		})

		Convey("Then unknown levels and unmatched skills contribute nothing", func() {
			c.Skills = map[string]model.Proficiency{"go": model.ProficiencyUnknown}
			So(scoring.SkillOverlap(a, c), ShouldEqual, 0)
		})

		Convey("Then an assignment without required skills scores zero", func() {
			a.RequiredSkills = nil
			So(scoring.SkillOverlap(a, c), ShouldEqual, 0)
		})
	})
}

func TestExperienceFit(t *testing.T) {
	Convey("Given an accepted range of 3 to 5 years", t, func() {
		a, c := assignment(), candidate()
		fit := func(years float64) float64 {
			c.YearsExperience = years
			return scoring.ExperienceFit(a, c)
		}

		Convey("Then years inside the range score 1", func() {
			So(fit(3), ShouldEqual, 1)
			So(fit(4), ShouldEqual, 1)
			So(fit(5), ShouldEqual, 1)
		})

		Convey("Then underqualified candidates fall off over five years", func() {
			So(fit(0), ShouldAlmostEqual, 0.4, 1e-12)
			So(fit(2), ShouldAlmostEqual, 0.8, 1e-12)
		})

		Convey("Then overqualified candidates fall off over ten years", func() {
			So(fit(15), ShouldEqual, 0)
			So(fit(14), ShouldBeGreaterThan, 0)
			So(fit(14), ShouldBeLessThan, 1)
			So(fit(30), ShouldEqual, 0)
		})

		Convey("Then malformed input scores zero", func() {
			So(fit(-1), ShouldEqual, 0)
			So(fit(math.NaN()), ShouldEqual, 0)
			So(fit(math.Inf(1)), ShouldEqual, 0)
			c.YearsExperience = 4
			a.Experience = model.ExperienceRange{MinYears: 6, MaxYears: 2}
			So(scoring.ExperienceFit(a, c), ShouldEqual, 0)
		})
	})
}

func TestLocationFit(t *testing.T) {
	Convey("Given a remote assignment bound to US-CA", t, func() {
		a, c := assignment(), candidate()

		Convey("Then a matching region scores 1 regardless of case", func() {
			c.Region = " us-ca "
			So(scoring.LocationFit(a, c), ShouldEqual, 1)
		})

		Convey("Then another region scores 0.4", func() {
			c.Region = "US-NY"
			So(scoring.LocationFit(a, c), ShouldEqual, 0.4)
		})

		Convey("Then a missing region scores 0.4", func() {
			c.Region = ""
			So(scoring.LocationFit(a, c), ShouldEqual, 0.4)
		})
	})

	Convey("Given an onsite assignment in US-CA", t, func() {
		a, c := assignment(), candidate()
		a.Location.Mode = model.LocationOnsite

		So(scoring.LocationFit(a, c), ShouldEqual, 1)
		c.Region = "US-NY"
		So(scoring.LocationFit(a, c), ShouldEqual, 0)
	})

	Convey("Given other location modes", t, func() {
		a, c := assignment(), candidate()
		a.Location = model.LocationRequirement{Mode: model.LocationRemoteAny}
		So(scoring.LocationFit(a, c), ShouldEqual, 1)
		a.Location.Mode = "hybrid"
		So(scoring.LocationFit(a, c), ShouldEqual, 0)
	})
}

func TestAvailabilityFit(t *testing.T) {
	Convey("Given a full-time assignment", t, func() {
		a, c := assignment(), candidate()
		a.Commitment = model.TimeCommitment{FullTime: true}

		c.AvailabilityHours = 20
		So(scoring.AvailabilityFit(a, c), ShouldEqual, 0.5)
		c.AvailabilityHours = 60
		So(scoring.AvailabilityFit(a, c), ShouldEqual, 1)
		c.AvailabilityHours = 0
		So(scoring.AvailabilityFit(a, c), ShouldEqual, 0)
	})

	Convey("Given an assignment without an hour requirement", t, func() {
		a, c := assignment(), candidate()
		a.Commitment = model.TimeCommitment{}
		c.AvailabilityHours = 0
		So(scoring.AvailabilityFit(a, c), ShouldEqual, 1)
	})
}

func TestTrust(t *testing.T) {
	Convey("Given candidates with different trust signals", t, func() {
		a, c := assignment(), candidate()

		So(scoring.Trust(a, c), ShouldEqual, 0.5)

		c.Verifications = []model.VerificationKind{model.VerificationIdentity}
		So(scoring.Trust(a, c), ShouldAlmostEqual, 0.6, 1e-12)

		c.TrustScore = 0.95
		So(scoring.Trust(a, c), ShouldEqual, 1)

		c.Verifications = []model.VerificationKind{model.VerificationEmployment}
		c.TrustScore = 1.5
		So(scoring.Trust(a, c), ShouldEqual, 1)
		c.TrustScore = -0.2
		So(scoring.Trust(a, c), ShouldEqual, 0)
		c.TrustScore = math.NaN()
		So(scoring.Trust(a, c), ShouldEqual, 0)
	})
}

func TestWeightValidation(t *testing.T) {
	Convey("Given weight sums around 1.0", t, func() {
		Convey("Then 0.9 and 1.1 are rejected", func() {
			_, err := scoring.WeightConfig{"skill_overlap": 0.9}.Validate()
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
			_, err = scoring.WeightConfig{"skill_overlap": 0.6, "trust": 0.5}.Validate()
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
		})

		Convey("Then 1.0 and 0.999999 are accepted", func() {
			_, err := scoring.WeightConfig{"skill_overlap": 1.0}.Validate()
			So(err, ShouldBeNil)
			_, err = scoring.WeightConfig{"skill_overlap": 0.999999}.Validate()
			So(err, ShouldBeNil)
		})
	})

	Convey("Given malformed weights", t, func() {
		Convey("Then unknown names are reported by name", func() {
			_, err := scoring.WeightConfig{"skill_overlap": 0.5, "mission": 0.5}.Validate()
			var cfgErr *scoring.ConfigError
			So(errors.As(err, &cfgErr), ShouldBeTrue)
			So(cfgErr.Field, ShouldEqual, "mission")
		})

		Convey("Then negative weights fail even when the sum is 1", func() {
			_, err := scoring.WeightConfig{"skill_overlap": 1.2, "trust": -0.2}.Validate()
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
		})

		Convey("Then non-finite weights fail", func() {
			_, err := scoring.WeightConfig{"skill_overlap": math.NaN()}.Validate()
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
		})

		Convey("Then an empty config fails", func() {
			_, err := scoring.WeightConfig{}.Validate()
			So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
		})
	})

	Convey("Validated weights convert back to a full config", t, func() {
		w, err := scoring.WeightConfig{"trust": 1}.Validate()
		So(err, ShouldBeNil)
		cfg := w.Config()
		So(len(cfg), ShouldEqual, model.NumScorers)
		So(cfg["trust"], ShouldEqual, 1)
		So(cfg["skill_overlap"], ShouldEqual, 0)
		So(w.Get(model.ScorerTrust), ShouldEqual, 1)
	})
}

func TestPresetsAndNormalize(t *testing.T) {
	Convey("Every preset is a valid weight config", t, func() {
		names := scoring.PresetNames()
		So(names, ShouldResemble, []string{"balanced", "logistics-first", "skills-first"})
		for _, name := range names {
			p, err := scoring.Preset(name)
			So(err, ShouldBeNil)
			_, err = p.Validate()
			So(err, ShouldBeNil)
		}
	})

	Convey("Preset returns a copy", t, func() {
		p, _ := scoring.Preset(scoring.PresetBalanced)
		p["trust"] = 9
		q, _ := scoring.Preset(scoring.PresetBalanced)
		So(q["trust"], ShouldEqual, 0.15)
	})

	Convey("Unknown presets are config errors", t, func() {
		_, err := scoring.Preset("mission-first")
		So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
	})

	Convey("Normalize rescales to a unit sum", t, func() {
		out, err := scoring.Normalize(scoring.WeightConfig{"skill_overlap": 3, "trust": 1})
		So(err, ShouldBeNil)
		So(out["skill_overlap"], ShouldEqual, 0.75)
		So(out["trust"], ShouldEqual, 0.25)
		_, err = out.Validate()
		So(err, ShouldBeNil)
	})

	Convey("Normalize maps all-zero weights to the balanced preset", t, func() {
		out, err := scoring.Normalize(scoring.WeightConfig{"trust": 0})
		So(err, ShouldBeNil)
		balanced, _ := scoring.Preset(scoring.PresetBalanced)
		So(out, ShouldResemble, balanced)
	})

	Convey("Normalize rejects negative weights", t, func() {
		_, err := scoring.Normalize(scoring.WeightConfig{"trust": -1, "skill_overlap": 2})
		So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)
	})

	Convey("Resolve prefers explicit weights, then presets, then the fallback", t, func() {
		explicit := scoring.WeightConfig{"trust": 1}
		got, err := scoring.Resolve(explicit, scoring.PresetSkillsFirst, nil)
		So(err, ShouldBeNil)
		So(got, ShouldResemble, explicit)

		got, err = scoring.Resolve(nil, scoring.PresetSkillsFirst, explicit)
		So(err, ShouldBeNil)
		So(got["skill_overlap"], ShouldEqual, 0.5)

		got, err = scoring.Resolve(nil, "", explicit)
		So(err, ShouldBeNil)
		So(got, ShouldResemble, explicit)
	})
}

func TestComposite(t *testing.T) {
	Convey("Given the balanced preset", t, func() {
		weights, _ := scoring.Preset(scoring.PresetBalanced)
		c, err := scoring.NewComposite(weights)
		So(err, ShouldBeNil)

		Convey("Then contributions add up to the composite score", func() {
			ev := c.Evaluate(assignment(), candidate())
			var sum float64
			for _, v := range ev.Contributions.Values() {
				sum += v
			}
			So(ev.Score, ShouldAlmostEqual, sum, 1e-12)
			So(ev.Breakdown.SkillOverlap, ShouldEqual, 0.75)
			So(ev.Breakdown.ExperienceFit, ShouldEqual, 1)
		})

		Convey("Then identical inputs give identical results", func() {
			first := c.Evaluate(assignment(), candidate())
			for i := 0; i < 50; i++ {
				So(c.Evaluate(assignment(), candidate()), ShouldResemble, first)
			}
		})

		Convey("Then scores stay in bounds for arbitrary input", func() {
			rng := rand.New(rand.NewSource(42))
			specials := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3, 0, 1e9}
			pick := func() float64 {
				if rng.Intn(4) == 0 {
					return specials[rng.Intn(len(specials))]
				}
				return rng.Float64() * 60
			}
			for i := 0; i < 500; i++ {
				a := assignment()
				a.Experience = model.ExperienceRange{MinYears: pick(), MaxYears: pick()}
				a.Commitment.HoursPerWeek = pick()
				cand := candidate()
				cand.YearsExperience = pick()
				cand.AvailabilityHours = pick()
				cand.TrustScore = pick()
				ev := c.Evaluate(a, cand)
				So(ev.Score, ShouldBeBetweenOrEqual, 0, 1)
				for _, v := range ev.Breakdown.Values() {
					So(v, ShouldBeBetweenOrEqual, 0, 1)
				}
			}
		})
	})

	Convey("Score fails only on invalid weights", t, func() {
		_, _, err := scoring.Score(assignment(), candidate(), scoring.WeightConfig{"trust": 0.5})
		So(errors.Is(err, scoring.ErrConfig), ShouldBeTrue)

		score, breakdown, err := scoring.Score(assignment(), candidate(), scoring.WeightConfig{"skill_overlap": 1})
		So(err, ShouldBeNil)
		So(score, ShouldEqual, 0.75)
		So(breakdown.SkillOverlap, ShouldEqual, 0.75)
	})

	Convey("Tiers follow the thresholds", t, func() {
		So(scoring.TierFor(0.75), ShouldEqual, model.TierStrong)
		So(scoring.TierFor(0.6), ShouldEqual, model.TierNear)
		So(scoring.TierFor(0.59), ShouldEqual, model.TierWeak)

		c := scoring.NewCompositeFromWeights(scoring.DefaultWeights(), scoring.WithTierThresholds(0.9, 0.5))
		So(c.TierFor(0.8), ShouldEqual, model.TierNear)
		So(c.TierFor(0.9), ShouldEqual, model.TierStrong)
	})

	Convey("The registry follows the model's scorer order", t, func() {
		reg := scoring.Registry()
		names := model.ScorerNames()
		So(len(reg), ShouldEqual, len(names))
		for i := range reg {
			So(reg[i].Name, ShouldEqual, names[i])
		}
	})
}

func TestExplain(t *testing.T) {
	Convey("Given a candidate missing one skill in a remote region elsewhere", t, func() {
		a := assignment()
		a.RequiredSkills = []string{"sql", "kafka", "go"}
		c := candidate()
		c.Region = "US-NY"
		c.TrustScore = 0.9

		exp, err := scoring.Explain(a, c, scoring.WeightConfig{
			"skill_overlap": 0.3, "experience_fit": 0.2, "location_fit": 0.2,
			"availability_fit": 0.2, "trust": 0.1,
		})
		So(err, ShouldBeNil)

		Convey("Then missing skills are listed sorted", func() {
			So(exp.MissingSkills, ShouldResemble, []string{"kafka"})
		})

		Convey("Then strong facets are strengths", func() {
			var names []model.ScorerName
			for _, s := range exp.Strengths {
				names = append(names, s.Scorer)
			}
			So(names, ShouldResemble, []model.ScorerName{
				model.ScorerExperienceFit, model.ScorerAvailabilityFit, model.ScorerTrust,
			})
		})

		Convey("Then weak weighted facets are gaps with impact by weight", func() {
			So(len(exp.Gaps), ShouldEqual, 1)
			So(exp.Gaps[0].Scorer, ShouldEqual, model.ScorerLocationFit)
			So(exp.Gaps[0].Impact, ShouldEqual, scoring.ImpactMedium)
		})

		Convey("Then ids and tier are reported", func() {
			So(exp.AssignmentID, ShouldEqual, "asg-1")
			So(exp.CandidateID, ShouldEqual, "cand-1")
			So(exp.Tier, ShouldEqual, scoring.TierFor(exp.Score))
		})
	})
}
