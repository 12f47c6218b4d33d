package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	dedupe "github.com/okian/trustgraph/internal/domain/dedupe"
	"github.com/okian/trustgraph/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
				So(d.Len(model.FollowKey), ShouldEqual, 0)
				So(d.Len(model.PostKey), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithExpectedSize(16))

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, model.PostID("p1"))

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
					So(d.Len(model.PostKey), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, model.FollowPair("100", "200"))
				seen := d.SeenAndRecord(ctx, model.FollowPair("100", "200"))

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the reverse follow pair arrives", func() {
				d.SeenAndRecord(ctx, model.FollowPair("100", "200"))
				seen := d.SeenAndRecord(ctx, model.FollowPair("200", "100"))

				Convey("Then it is a distinct fact", func() {
					So(seen, ShouldBeFalse)
					So(d.Len(model.FollowKey), ShouldEqual, 2)
				})
			})

			Convey("And a post id matches a raw follow value", func() {
				follow := model.FollowPair("1", "2")
				d.SeenAndRecord(ctx, follow)
				seen := d.SeenAndRecord(ctx, model.DedupKey{Kind: model.PostKey, Value: follow.Value})

				Convey("Then the key sets stay separate", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When many keys are recorded", func() {
			d := dedupe.NewInMemoryDeduper()
			for i := range 10_000 {
				d.SeenAndRecord(ctx, model.PostID(fmt.Sprintf("p%d", i)))
			}

			Convey("Then none are evicted", func() {
				So(d.Size(), ShouldEqual, 10_000)
				So(d.SeenAndRecord(ctx, model.PostID("p0")), ShouldBeTrue)
			})
		})
	})
}
