package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/matchcore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssignmentSkillSet(t *testing.T) {
	Convey("Given an assignment with messy skill tags", t, func() {
		a := &model.Assignment{RequiredSkills: []string{" Go ", "go", "", "SQL", "Kafka", "sql"}}

		Convey("Then SkillSet collapses duplicates and keeps first-seen order", func() {
			So(a.SkillSet(), ShouldResemble, []string{"go", "sql", "kafka"})
		})
	})

	Convey("Given a full-time commitment with explicit hours", t, func() {
		c := model.TimeCommitment{HoursPerWeek: 10, FullTime: true}

		Convey("Then the full-time flag wins", func() {
			So(c.RequiredHours(), ShouldEqual, model.FullTimeHours)
		})
	})

	Convey("Location modes", t, func() {
		So(model.LocationRemoteAny.Valid(), ShouldBeTrue)
		So(model.LocationMode("hybrid").Valid(), ShouldBeFalse)
		So(model.LocationRemoteAny.NeedsRegion(), ShouldBeFalse)
		So(model.LocationOnsite.NeedsRegion(), ShouldBeTrue)
		So(model.LocationRemoteRegion.NeedsRegion(), ShouldBeTrue)
	})
}

func TestProficiency(t *testing.T) {
	Convey("Given proficiency names", t, func() {
		Convey("Then parsing is case-insensitive", func() {
			p, err := model.ParseProficiency(" Expert ")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, model.ProficiencyExpert)
		})

		Convey("Then levels are ordered", func() {
			So(int(model.ProficiencyNovice), ShouldBeLessThan, int(model.ProficiencyIntermediate))
			So(int(model.ProficiencyIntermediate), ShouldBeLessThan, int(model.ProficiencyExpert))
		})

		Convey("Then unknown names fail to parse", func() {
			_, err := model.ParseProficiency("guru")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a candidate decoded from JSON", t, func() {
		raw := `{"id":"cand-1","skills":{"Go":"expert","rust":"guru"},"trust_score":0.5}`
		var c model.CandidateProfile
		err := json.Unmarshal([]byte(raw), &c)

		Convey("Then unknown levels decode to unknown without failing", func() {
			So(err, ShouldBeNil)
			So(c.Skills["Go"], ShouldEqual, model.ProficiencyExpert)
			So(c.Skills["rust"], ShouldEqual, model.ProficiencyUnknown)
			So(c.Skills["rust"].Valid(), ShouldBeFalse)
		})

		Convey("Then levels encode back to names", func() {
			b, err := json.Marshal(c.Skills["Go"])
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `"expert"`)
		})
	})
}

func TestCandidateHelpers(t *testing.T) {
	Convey("Given skills that collapse onto one tag", t, func() {
		c := &model.CandidateProfile{Skills: map[string]model.Proficiency{
			"Go":  model.ProficiencyNovice,
			"go ": model.ProficiencyExpert,
			"":    model.ProficiencyExpert,
		}}

		Convey("Then the highest level wins and empty tags are dropped", func() {
			levels := c.SkillLevels()
			So(len(levels), ShouldEqual, 1)
			So(levels["go"], ShouldEqual, model.ProficiencyExpert)
		})
	})

	Convey("Given verification tags in mixed case", t, func() {
		c := &model.CandidateProfile{Verifications: []model.VerificationKind{"Identity_Verified"}}
		So(c.HasVerification(model.VerificationIdentity), ShouldBeTrue)
		So(c.HasVerification(model.VerificationEmployment), ShouldBeFalse)
	})
}

func TestSubscoreBreakdown(t *testing.T) {
	Convey("Given a breakdown built from ordered values", t, func() {
		b := model.BreakdownFromValues([model.NumScorers]float64{0.1, 0.2, 0.3, 0.4, 0.5})

		Convey("Then values round-trip in registry order", func() {
			So(b.Values(), ShouldResemble, [model.NumScorers]float64{0.1, 0.2, 0.3, 0.4, 0.5})
			v, ok := b.Get(model.ScorerLocationFit)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0.3)
			_, ok = b.Get("mission")
			So(ok, ShouldBeFalse)
		})

		Convey("Then JSON keys follow registry order", func() {
			out, err := json.Marshal(b)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual,
				`{"skill_overlap":0.1,"experience_fit":0.2,"location_fit":0.3,"availability_fit":0.4,"trust":0.5}`)
		})
	})

	Convey("Scorer names are listed in evaluation order", t, func() {
		names := model.ScorerNames()
		So(len(names), ShouldEqual, model.NumScorers)
		for i, n := range names {
			idx, ok := model.ScorerIndex(n)
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, i)
		}
	})

	Convey("PoolID follows the direction", t, func() {
		r := &model.MatchResult{AssignmentID: "a-1", CandidateID: "c-1"}
		So(r.PoolID(model.DirectionCandidates), ShouldEqual, "c-1")
		So(r.PoolID(model.DirectionAssignments), ShouldEqual, "a-1")
		So(model.Direction("both").Valid(), ShouldBeFalse)
	})
}
