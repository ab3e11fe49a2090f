package ranking

import (
	"math/rand"
	"testing"

	"github.com/okian/babellm/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given fr=8, es=6, de=9", t, func() {
		scored := []model.ScoredID{{ID: "fr", Score: 8}, {ID: "es", Score: 6}, {ID: "de", Score: 9}}

		Convey("When the player submits [fr es de]", func() {
			res := Compare(model.Ordering{"fr", "es", "de"}, scored)

			Convey("Then the truth order is [de fr es] and it is not a match", func() {
				So(res.TruthOrder, ShouldResemble, model.Ordering{"de", "fr", "es"})
				So(res.IsExactMatch, ShouldBeFalse)
			})
		})

		Convey("When the player submits the truth order", func() {
			res := Compare(model.Ordering{"de", "fr", "es"}, scored)
			So(res.IsExactMatch, ShouldBeTrue)
		})

		Convey("When the submission is shorter than the truth order", func() {
			res := Compare(model.Ordering{"de", "fr"}, scored)
			So(res.IsExactMatch, ShouldBeFalse)
		})

		Convey("Then the scored input is not reordered", func() {
			Compare(model.Ordering{"de"}, scored)
			So(scored[0].ID, ShouldEqual, "fr")
		})
	})
}

func TestTieBreaking(t *testing.T) {
	Convey("Given a fixture order and tied scores", t, func() {
		fixture := []string{"ar", "de", "es", "fr", "ja"}
		c := NewComparator(fixture)
		scored := []model.ScoredID{{ID: "ja", Score: 7}, {ID: "es", Score: 7}, {ID: "de", Score: 9}, {ID: "fr", Score: 7}}

		Convey("Then ties follow fixture order", func() {
			So(c.TruthOrder(scored), ShouldResemble, model.Ordering{"de", "es", "fr", "ja"})
		})

		Convey("Then unknown ids sort after known ones, by id", func() {
			got := c.TruthOrder([]model.ScoredID{{ID: "zz", Score: 5}, {ID: "yy", Score: 5}, {ID: "ar", Score: 5}})
			So(got, ShouldResemble, model.Ordering{"ar", "yy", "zz"})
		})

		Convey("When the package-level form is used", func() {
			got := Compare(nil, scored).TruthOrder

			Convey("Then ties keep the order they were passed in", func() {
				So(got, ShouldResemble, model.Ordering{"de", "ja", "es", "fr"})
			})
		})
	})
}

func TestCompareInputOrderInvariance(t *testing.T) {
	Convey("Given random scores with frequent ties", t, func() {
		rng := rand.New(rand.NewSource(7))
		fixture := []string{"ar", "de", "es", "fr", "hi", "ja", "ko", "pt", "ru", "zh"}
		c := NewComparator(fixture)

		for trial := 0; trial < 200; trial++ {
			scored := make([]model.ScoredID, 0, len(fixture))
			for _, id := range fixture[:3+rng.Intn(len(fixture)-3)] {
				scored = append(scored, model.ScoredID{ID: id, Score: float64(rng.Intn(4) + 6)})
			}
			base := c.Compare(nil, scored).TruthOrder

			shuffled := make([]model.ScoredID, len(scored))
			copy(shuffled, scored)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			res := c.Compare(base, shuffled)
			So(res.TruthOrder, ShouldResemble, base)
			So(res.IsExactMatch, ShouldBeTrue)

			for i := 1; i < len(base); i++ {
				prev, cur := scoreOf(scored, base[i-1]), scoreOf(scored, base[i])
				So(prev, ShouldBeGreaterThanOrEqualTo, cur)
			}
		}
	})
}

func TestPositions(t *testing.T) {
	Convey("Given a submission and the truth order", t, func() {
		pos := Positions(model.Ordering{"fr", "es", "de"}, model.Ordering{"de", "fr", "es"})

		Convey("Then each id reports predicted and actual ranks", func() {
			So(pos, ShouldResemble, []Position{
				{ID: "de", Predicted: 2, Actual: 0},
				{ID: "fr", Predicted: 0, Actual: 1},
				{ID: "es", Predicted: 1, Actual: 2},
			})
			So(pos[0].Correct(), ShouldBeFalse)
		})

		Convey("Then ids missing from the submission are marked", func() {
			p := Positions(model.Ordering{"de"}, model.Ordering{"de", "fr"})
			So(p[0].Correct(), ShouldBeTrue)
			So(p[1].Predicted, ShouldEqual, -1)
		})
	})
}

func scoreOf(scored []model.ScoredID, id string) float64 {
	for _, s := range scored {
		if s.ID == id {
			return s.Score
		}
	}
	return -1
}
