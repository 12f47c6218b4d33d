package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/trustgraph/internal/domain/model"
	scoring "github.com/okian/trustgraph/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type lookup map[string]string

func (l lookup) Username(id string) (string, bool) {
	name, ok := l[id]
	return name, ok
}

func TestNormalizer_Log2(t *testing.T) {
	ctx := context.Background()

	Convey("Given raw scores 8, 2 and 32", t, func() {
		raw := []model.ScoreEntry{{ID: "u1", Score: 8}, {ID: "u2", Score: 2}, {ID: "u3", Score: 32}}

		Convey("When normalized with log2", func() {
			res, err := scoring.NewNormalizer().Normalize(ctx, raw)

			Convey("Then the output is u3 1.0, u1 0.5, u2 0.0", func() {
				So(err, ShouldBeNil)
				want := []model.ScoreEntry{{ID: "u3", Score: 1}, {ID: "u1", Score: 0.5}, {ID: "u2", Score: 0}}
				So(cmp.Diff(want, res.Entries, cmpopts.EquateApprox(0, 1e-12)), ShouldBeEmpty)
			})
		})

		Convey("When usernames are resolved", func() {
			res, err := scoring.NewNormalizer(scoring.WithUsernames(lookup{"u3": "carol", "u2": ""})).Normalize(ctx, raw)

			Convey("Then mapped ids are replaced and the rest fall back to the id", func() {
				So(err, ShouldBeNil)
				So(res.Entries[0].ID, ShouldEqual, "carol")
				So(res.Entries[1].ID, ShouldEqual, "u1")
				So(res.Entries[2].ID, ShouldEqual, "u2")
				So(res.Resolved, ShouldEqual, 1)
			})
		})
	})

	Convey("Given scores containing zero, negative and NaN values", t, func() {
		raw := []model.ScoreEntry{{ID: "a", Score: 0}, {ID: "b", Score: -1}, {ID: "c", Score: math.NaN()}, {ID: "d", Score: 4}}
		res, err := scoring.NewNormalizer().Normalize(ctx, raw)

		Convey("Then only positive scores survive", func() {
			So(err, ShouldBeNil)
			So(res.Discarded, ShouldEqual, 3)
			So(len(res.Entries), ShouldEqual, 1)
		})

		Convey("Then a single survivor gets the midpoint", func() {
			So(res.Entries[0].Score, ShouldEqual, scoring.Midpoint)
		})
	})

	Convey("Given all-equal scores", t, func() {
		raw := []model.ScoreEntry{{ID: "b", Score: 3}, {ID: "a", Score: 3}}
		res, err := scoring.NewNormalizer().Normalize(ctx, raw)

		Convey("Then every entry is 0.5 and ties are ordered by id", func() {
			So(err, ShouldBeNil)
			So(res.Entries, ShouldResemble, []model.ScoreEntry{{ID: "a", Score: 0.5}, {ID: "b", Score: 0.5}})
		})
	})

	Convey("Given no scores at all", t, func() {
		res, err := scoring.NewNormalizer().Normalize(ctx, nil)

		Convey("Then the result is empty without error", func() {
			So(err, ShouldBeNil)
			So(res.Entries, ShouldBeEmpty)
		})
	})

	Convey("Given increasing raw scores", t, func() {
		raw := []model.ScoreEntry{{ID: "a", Score: 0.001}, {ID: "b", Score: 0.5}, {ID: "c", Score: 0.51}, {ID: "d", Score: 7}, {ID: "e", Score: 1e6}}
		res, err := scoring.NewNormalizer().Normalize(ctx, raw)
		So(err, ShouldBeNil)

		Convey("Then normalization is monotonic", func() {
			byID := map[string]float64{}
			for _, e := range res.Entries {
				byID[e.ID] = e.Score
			}
			for i := 1; i < len(raw); i++ {
				So(byID[raw[i-1].ID], ShouldBeLessThanOrEqualTo, byID[raw[i].ID])
			}
		})
	})
}

func TestNormalizer_OtherTransforms(t *testing.T) {
	ctx := context.Background()
	raw := []model.ScoreEntry{{ID: "a", Score: 1}, {ID: "b", Score: 4}, {ID: "c", Score: 9}, {ID: "d", Score: 9}}

	Convey("Given the sqrt transform", t, func() {
		res, err := scoring.NewNormalizer(scoring.WithTransform(scoring.Sqrt)).Normalize(ctx, raw)

		Convey("Then sqrt values are min-max scaled", func() {
			So(err, ShouldBeNil)
			want := []model.ScoreEntry{{ID: "c", Score: 1}, {ID: "d", Score: 1}, {ID: "b", Score: 0.5}, {ID: "a", Score: 0}}
			So(cmp.Diff(want, res.Entries, cmpopts.EquateApprox(0, 1e-12)), ShouldBeEmpty)
		})
	})

	Convey("Given the quantile transform", t, func() {
		res, err := scoring.NewNormalizer(scoring.WithTransform(scoring.Quantile)).Normalize(ctx, raw)

		Convey("Then ranks over n are min-max scaled with ties sharing a rank", func() {
			So(err, ShouldBeNil)
			// ranks 1, 2, 3.5, 3.5 over 4 -> 0.25, 0.5, 0.875, 0.875
			want := []model.ScoreEntry{{ID: "c", Score: 1}, {ID: "d", Score: 1}, {ID: "b", Score: 0.4}, {ID: "a", Score: 0}}
			So(cmp.Diff(want, res.Entries, cmpopts.EquateApprox(0, 1e-12)), ShouldBeEmpty)
		})
	})

	Convey("Given transform names", t, func() {
		tr, err := scoring.ParseTransform("SQRT")
		So(err, ShouldBeNil)
		So(tr, ShouldEqual, scoring.Sqrt)

		tr, err = scoring.ParseTransform("")
		So(err, ShouldBeNil)
		So(tr, ShouldEqual, scoring.Log2)

		_, err = scoring.ParseTransform("zscore")
		So(errors.Is(err, scoring.ErrUnknownTransform), ShouldBeTrue)

		_, err = scoring.NewNormalizer(scoring.WithTransform("zscore")).Normalize(ctx, raw)
		So(errors.Is(err, scoring.ErrUnknownTransform), ShouldBeTrue)
	})
}

func TestScaleToRange(t *testing.T) {
	Convey("Given raw scores with a zero", t, func() {
		raw := []model.ScoreEntry{{ID: "a", Score: 0}, {ID: "b", Score: 1}, {ID: "c", Score: 3}, {ID: "d", Score: 1.00001}}
		got := scoring.ScaleToRange(raw, 100000)

		Convey("Then zeros are removed, the floor is 1 and max maps to the target", func() {
			want := []model.ScoreEntry{{ID: "c", Score: 100000}, {ID: "b", Score: 1}, {ID: "d", Score: 1}}
			So(cmp.Diff(want, got), ShouldBeEmpty)
		})
	})

	Convey("Given all-equal scores", t, func() {
		got := scoring.ScaleToRange([]model.ScoreEntry{{ID: "x", Score: 2}, {ID: "y", Score: 2}}, 100)

		Convey("Then each maps to the target max", func() {
			So(got, ShouldResemble, []model.ScoreEntry{{ID: "x", Score: 100}, {ID: "y", Score: 100}})
		})
	})

	Convey("Given only zero scores", t, func() {
		So(scoring.ScaleToRange([]model.ScoreEntry{{ID: "x", Score: 0}}, 10), ShouldBeEmpty)
	})

	Convey("Given a value landing exactly on a half step", t, func() {
		got := scoring.ScaleToRange([]model.ScoreEntry{{ID: "lo", Score: 1}, {ID: "mid", Score: 6}, {ID: "hi", Score: 9}}, 4)

		Convey("Then it rounds half to even", func() {
			// (6-1)/(9-1)*4 = 2.5
			So(got, ShouldResemble, []model.ScoreEntry{{ID: "hi", Score: 4}, {ID: "mid", Score: 2}, {ID: "lo", Score: 1}})
		})
	})
}

func TestFoldAndFilter(t *testing.T) {
	Convey("Given mixed-case identifiers", t, func() {
		folded := scoring.FoldIdentifiers([]model.ScoreEntry{{ID: "Alice", Score: 1}, {ID: "bob", Score: 2}, {ID: "ALICE", Score: 3}, {ID: " ", Score: 9}})

		Convey("Then they are lower-cased and the last duplicate wins", func() {
			So(folded, ShouldResemble, []model.ScoreEntry{{ID: "alice", Score: 3}, {ID: "bob", Score: 2}})
		})

		Convey("Then members filtering keeps only listed identifiers", func() {
			got := scoring.FilterMembers(folded, map[string]struct{}{"bob": {}})
			So(got, ShouldResemble, []model.ScoreEntry{{ID: "bob", Score: 2}})
		})

		Convey("Then an empty member set keeps everything", func() {
			So(scoring.FilterMembers(folded, nil), ShouldResemble, folded)
		})
	})
}
