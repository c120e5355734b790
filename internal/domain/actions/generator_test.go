package actions_test

import (
	"testing"

	"github.com/okian/courtside/internal/domain/actions"
	"github.com/okian/courtside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator_Generate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := actions.NewGenerator(actions.WithSeed(99))

		Convey("When generating many blocks", func() {
			Convey("Then every block has 3 to 5 valid tags", func() {
				seen := map[int]bool{}
				for i := 0; i < 300; i++ {
					block := g.Generate()
					So(len(block), ShouldBeBetweenOrEqual, 3, 5)
					seen[len(block)] = true
					for _, a := range block {
						So(a.Valid(), ShouldBeTrue)
					}
				}
				So(seen[3] && seen[4] && seen[5], ShouldBeTrue)
			})
		})

		Convey("When sampling a large population", func() {
			counts := map[model.ActionTag]int{}
			total := 0
			for i := 0; i < 5000; i++ {
				for _, a := range g.Generate() {
					counts[a]++
					total++
				}
			}

			Convey("Then frequencies follow the weights", func() {
				share := func(a model.ActionTag) float64 { return float64(counts[a]) / float64(total) }
				So(share(model.ActionScorePoint), ShouldAlmostEqual, 0.30, 0.03)
				So(share(model.ActionAssist), ShouldAlmostEqual, 0.20, 0.03)
				So(share(model.ActionRebound), ShouldAlmostEqual, 0.20, 0.03)
				So(share(model.ActionTurnover), ShouldAlmostEqual, 0.10, 0.03)
				So(share(model.ActionGoodDecision), ShouldAlmostEqual, 0.10, 0.03)
				So(share(model.ActionBadDecision), ShouldAlmostEqual, 0.10, 0.03)
			})
		})

		Convey("Two generators with the same seed agree", func() {
			a := actions.NewGenerator(actions.WithSeed(5))
			b := actions.NewGenerator(actions.WithSeed(5))
			So(a.Generate(), ShouldResemble, b.Generate())
		})
	})
}

func TestGenerator_Pick(t *testing.T) {
	Convey("Given the default distribution", t, func() {
		g := actions.NewGenerator()

		Convey("Cumulative buckets map uniform samples to tags", func() {
			So(g.Pick(0.00), ShouldEqual, model.ActionScorePoint)
			So(g.Pick(0.29), ShouldEqual, model.ActionScorePoint)
			So(g.Pick(0.31), ShouldEqual, model.ActionAssist)
			So(g.Pick(0.55), ShouldEqual, model.ActionRebound)
			So(g.Pick(0.75), ShouldEqual, model.ActionTurnover)
			So(g.Pick(0.85), ShouldEqual, model.ActionGoodDecision)
			So(g.Pick(0.95), ShouldEqual, model.ActionBadDecision)
			So(g.Pick(0.999999), ShouldEqual, model.ActionBadDecision)
		})
	})

	Convey("Given a fixed draw range", t, func() {
		g := actions.NewGenerator(actions.WithDrawRange(4, 4))
		So(g.Generate(), ShouldHaveLength, 4)
	})
}
