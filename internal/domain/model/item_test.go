package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOrdering(t *testing.T) {
	Convey("Given an ordering", t, func() {
		o := Ordering{"fr", "es", "de"}

		Convey("When cloning it", func() {
			c := o.Clone()
			c[0] = "it"

			Convey("Then the original is not aliased", func() {
				So(o[0], ShouldEqual, "fr")
				So(o.Equal(c), ShouldBeFalse)
			})
		})

		Convey("Then equality is element-wise and length-sensitive", func() {
			So(o.Equal(Ordering{"fr", "es", "de"}), ShouldBeTrue)
			So(o.Equal(Ordering{"fr", "es"}), ShouldBeFalse)
			So(Ordering(nil).Clone(), ShouldBeNil)
		})

		Convey("Then ids are extracted in slice order", func() {
			items := []Item{{ID: "de"}, {ID: "fr"}}
			So(IDs(items), ShouldResemble, Ordering{"de", "fr"})
		})
	})
}
