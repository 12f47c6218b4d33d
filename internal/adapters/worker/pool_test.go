package worker_test

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/trustgraph/internal/adapters/worker"
	"github.com/okian/trustgraph/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestNewPool(t *testing.T) {
	Convey("Given pool construction", t, func() {
		Convey("When the worker count is not positive", func() {
			p := worker.NewPool(0)

			Convey("Then it defaults to a CPU multiple", func() {
				So(p.Workers(), ShouldEqual, runtime.NumCPU()*2)
			})
		})

		Convey("When options are passed", func() {
			p := worker.NewPool(3, worker.WithName("decode"), worker.WithLogger(logger.Get()))

			Convey("Then they are applied", func() {
				So(p.Workers(), ShouldEqual, 3)
			})
		})
	})
}

func TestMap(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool of two workers", t, func() {
		p := worker.NewPool(2, worker.WithName("test"))

		Convey("When tasks finish out of order", func() {
			items := []int{5, 1, 4, 2, 3}
			out, err := worker.Map(ctx, p, items, func(_ context.Context, n int) (int, error) {
				time.Sleep(time.Duration(n) * time.Millisecond)
				return n * 10, nil
			})

			Convey("Then results keep input order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []int{50, 10, 40, 20, 30})
			})
		})

		Convey("When counting concurrent tasks", func() {
			var running, peak atomic.Int32
			_, err := worker.Map(ctx, p, make([]struct{}, 12), func(_ context.Context, _ struct{}) (struct{}, error) {
				n := running.Add(1)
				for {
					cur := peak.Load()
					if n <= cur || peak.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			})

			Convey("Then the limit is respected", func() {
				So(err, ShouldBeNil)
				So(peak.Load(), ShouldBeLessThanOrEqualTo, 2)
			})
		})

		Convey("When a task fails", func() {
			boom := errors.New("boom")
			_, err := worker.Map(ctx, p, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
				if n == 2 {
					return 0, boom
				}
				return n, nil
			})

			Convey("Then the error is returned", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := worker.Map(cctx, p, []int{1, 2}, func(_ context.Context, n int) (int, error) { return n, nil })

			Convey("Then the cancellation surfaces", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When there is nothing to do", func() {
			out, err := worker.Map(ctx, p, []int(nil), func(_ context.Context, n int) (int, error) { return n, nil })
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}
