// Package scoring turns the raw output of the external ranking algorithm into
// normalized, human-readable score tables.
package scoring

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
)

// Midpoint is assigned to every entry when all transformed values are equal.
const Midpoint = 0.5

// ErrUnknownTransform is returned for an unrecognized transform name.
var ErrUnknownTransform = errors.New("unknown score transform")

// Transform compresses raw scores before min-max normalization.
type Transform string

// Supported transforms.
const (
	Log2     Transform = "log2"
	Sqrt     Transform = "sqrt"
	Quantile Transform = "quantile"
)

// ParseTransform maps a case-insensitive name to a Transform.
func ParseTransform(name string) (Transform, error) {
	switch t := Transform(strings.ToLower(strings.TrimSpace(name))); t {
	case Log2, Sqrt, Quantile:
		return t, nil
	case "":
		return Log2, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransform, name)
}

// UsernameLookup resolves a user id to a display username.
type UsernameLookup interface {
	Username(id string) (string, bool)
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithTransform selects the compression applied before normalization.
func WithTransform(t Transform) Option {
	return func(n *Normalizer) {
		if t != "" {
			n.transform = t
		}
	}
}

// WithUsernames resolves output identifiers through lookup. Ids without a
// mapping are emitted unchanged.
func WithUsernames(lookup UsernameLookup) Option {
	return func(n *Normalizer) {
		n.usernames = lookup
	}
}

// Normalizer maps raw scores into [0, 1].
type Normalizer struct {
	transform Transform
	usernames UsernameLookup
}

// NewNormalizer returns a log2 Normalizer without username resolution unless opts say otherwise.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{transform: Log2}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Result is the output of one normalization.
type Result struct {
	Entries []model.ScoreEntry
	// Discarded counts raw entries removed for being non-positive or non-finite.
	Discarded int
	// Resolved counts identifiers replaced by a username.
	Resolved int
}

// Normalize discards non-positive scores, applies the transform, min-max
// scales into [0, 1] and sorts by score descending. Ties are ordered by
// identifier so output is deterministic. An empty input yields an empty result.
func (n *Normalizer) Normalize(_ context.Context, raw []model.ScoreEntry) (Result, error) {
	kept := make([]model.ScoreEntry, 0, len(raw))
	res := Result{}
	for _, e := range raw {
		if !(e.Score > 0) || math.IsInf(e.Score, 0) {
			res.Discarded++
			continue
		}
		kept = append(kept, e)
	}

	values, err := n.apply(kept)
	if err != nil {
		return Result{}, err
	}
	scaled := minMax(values)

	res.Entries = make([]model.ScoreEntry, len(kept))
	for i, e := range kept {
		id := e.ID
		if n.usernames != nil {
			if name, ok := n.usernames.Username(id); ok && name != "" {
				id = name
				res.Resolved++
			}
		}
		res.Entries[i] = model.ScoreEntry{ID: id, Score: scaled[i]}
	}
	SortDescending(res.Entries)
	return res, nil
}

func (n *Normalizer) apply(entries []model.ScoreEntry) ([]float64, error) {
	out := make([]float64, len(entries))
	switch n.transform {
	case Log2:
		for i, e := range entries {
			out[i] = math.Log2(e.Score)
		}
	case Sqrt:
		for i, e := range entries {
			out[i] = math.Sqrt(e.Score)
		}
	case Quantile:
		return quantiles(entries), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, n.transform)
	}
	return out, nil
}

// minMax scales values into [0, 1] using their own min and max.
func minMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := slices.Min(values), slices.Max(values)
	for i, v := range values {
		if hi == lo {
			out[i] = Midpoint
			continue
		}
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// quantiles returns average rank / n for each entry, so tied scores share a
// value and the highest score maps to 1.
func quantiles(entries []model.ScoreEntry) []float64 {
	n := len(entries)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(entries[a].Score, entries[b].Score)
	})
	out := make([]float64, n)
	for start := 0; start < n; {
		end := start
		for end+1 < n && entries[idx[end+1]].Score == entries[idx[start]].Score {
			end++
		}
		// ranks are 1-based; tied run [start, end] shares the mean rank
		rank := float64(start+end)/2 + 1
		for k := start; k <= end; k++ {
			out[idx[k]] = rank / float64(n)
		}
		start = end + 1
	}
	return out
}

// SortDescending orders entries by score descending, then identifier ascending.
func SortDescending(entries []model.ScoreEntry) {
	slices.SortFunc(entries, func(a, b model.ScoreEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
