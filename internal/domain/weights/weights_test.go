package weights_test

import (
	"testing"

	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/weights"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a default weight table", t, func() {
		tbl := weights.New()

		Convey("Then the documented defaults apply", func() {
			So(tbl.Base(model.Mention), ShouldEqual, 30)
			So(tbl.Base(model.Reply), ShouldEqual, 20)
			So(tbl.Base(model.Retweet), ShouldEqual, 50)
			So(tbl.Base(model.Quote), ShouldEqual, 40)
			So(tbl.Base(model.Follow), ShouldEqual, 30)
			So(tbl.CommunityMultiplier(), ShouldEqual, 1.0)
		})

		Convey("Then community events are not boosted by default", func() {
			e := model.Event{Type: model.Reply, Source: "1", Target: "2", InCommunity: true}
			So(tbl.Weight(e), ShouldEqual, 20)
		})
	})

	Convey("Given configured overrides", t, func() {
		tbl := weights.New(
			weights.WithWeightsFromConfig(map[string]int{"Reply": 25, "retweet": 0, "like": 99}),
			weights.WithCommunityMultiplier(2),
		)

		Convey("Then valid overrides win and the rest keep defaults", func() {
			So(tbl.Base(model.Reply), ShouldEqual, 25)
			So(tbl.Base(model.Retweet), ShouldEqual, 50)
			So(tbl.Base(model.InteractionType("like")), ShouldEqual, 0)
		})

		Convey("Then the multiplier applies only to community events", func() {
			in := model.Event{Type: model.Quote, InCommunity: true}
			out := model.Event{Type: model.Quote}
			So(tbl.Weight(in), ShouldEqual, 80)
			So(tbl.Weight(out), ShouldEqual, 40)
		})
	})

	Convey("Given Defaults", t, func() {
		d := weights.Defaults()
		d["follow"] = 1

		Convey("Then callers get an independent copy", func() {
			So(weights.Defaults()["follow"], ShouldEqual, weights.DefaultFollow)
		})
	})
}
