package testcorpus_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/trustgraph/internal/adapters/source"
	"github.com/okian/trustgraph/internal/testcorpus"
	"github.com/okian/trustgraph/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestGenerate(t *testing.T) {
	Convey("Given a corpus configuration", t, func() {
		ctx := context.Background()
		cfg := testcorpus.Config{Graph: "ai", Seeds: 2, Users: 12, PostsPerUser: 3, RandSeed: 7}

		Convey("When generating twice with the same seed", func() {
			dirA, dirB := t.TempDir(), t.TempDir()
			a, errA := testcorpus.Generate(ctx, dirA, cfg)
			b, errB := testcorpus.Generate(ctx, dirB, cfg)
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)

			Convey("Then both corpora are identical", func() {
				So(len(a.Files), ShouldEqual, len(b.Files))
				for i := range a.Files {
					dataA, err := os.ReadFile(a.Files[i])
					So(err, ShouldBeNil)
					dataB, err := os.ReadFile(b.Files[i])
					So(err, ShouldBeNil)
					So(string(dataA), ShouldEqual, string(dataB))
				}
			})

			Convey("Then every seed and community export is decodable", func() {
				specs := append(source.SeedSpecs(a.SeedDir, a.SeedIDs), source.CommunitySpecs(a.RawDir, a.CommunityID)...)
				for _, spec := range specs {
					doc, err := source.Open(spec)
					So(err, ShouldBeNil)
					So(doc.Kind(), ShouldEqual, spec.Kind)
				}
			})

			Convey("Then a range marker spans the user ids", func() {
				rng, err := source.RangeFromDir(a.SeedDir, "ai")
				So(err, ShouldBeNil)
				So(rng.Contains(a.Users[0].ID), ShouldBeTrue)
				So(rng.Contains(a.Users[len(a.Users)-1].ID), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := testcorpus.Generate(cctx, t.TempDir(), cfg)

			Convey("Then generation stops", func() {
				So(err, ShouldEqual, context.Canceled)
			})
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given a document", t, func() {
		dir := t.TempDir()
		doc := testcorpus.SeedFollowings{
			SeedUsers:  []testcorpus.User{{ID: "100", Username: "seed"}},
			MasterList: []testcorpus.User{{ID: "200", Username: "master"}},
		}

		Convey("When writing it", func() {
			path, err := testcorpus.Write(dir, "100", source.SeedFollowings, doc)

			Convey("Then it lands under the export name", func() {
				So(err, ShouldBeNil)
				So(filepath.Base(path), ShouldEqual, "100_seed_followings.json")
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), `"master_list"`), ShouldBeTrue)
			})
		})
	})
}
