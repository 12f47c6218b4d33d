// Package seed builds the uniform seed vector handed to the ranking algorithm.
package seed

import (
	"strconv"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
)

// Range is the inclusive numeric id span observed in an interaction corpus.
// The zero Range is unknown and contains nothing.
type Range struct {
	Lo    uint64
	Hi    uint64
	known bool
}

// NewRange returns the known range [lo, hi], swapping bounds if needed.
func NewRange(lo, hi uint64) Range {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Lo: lo, Hi: hi, known: true}
}

// Known reports whether at least one id was observed.
func (r Range) Known() bool { return r.known }

// Observe widens r to include id. Non-numeric ids are ignored and reported false.
func (r *Range) Observe(id string) bool {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return false
	}
	if !r.known {
		*r = Range{Lo: n, Hi: n, known: true}
		return true
	}
	r.Lo = min(r.Lo, n)
	r.Hi = max(r.Hi, n)
	return true
}

// Merge returns the smallest range covering r and o.
func (r Range) Merge(o Range) Range {
	switch {
	case !o.known:
		return r
	case !r.known:
		return o
	}
	return Range{Lo: min(r.Lo, o.Lo), Hi: max(r.Hi, o.Hi), known: true}
}

// Contains reports whether id is numeric and inside r.
func (r Range) Contains(id string) bool {
	if !r.known {
		return false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return false
	}
	return n >= r.Lo && n <= r.Hi
}

func (r Range) String() string {
	if !r.known {
		return "unknown"
	}
	return "[" + strconv.FormatUint(r.Lo, 10) + ", " + strconv.FormatUint(r.Hi, 10) + "]"
}

// Result is a built seed vector.
type Result struct {
	Entries []model.SeedEntry
	// Filtered counts configured seeds excluded by the range.
	Filtered int
}

// Build keeps the configured seeds that fall inside rng, in configured order
// and without repeats, and gives each an equal share of 1.0. When rng is
// unknown no filtering is applied. An empty result has no entries.
func Build(seeds []string, rng Range) Result {
	seen := make(map[string]struct{}, len(seeds))
	ids := make([]string, 0, len(seeds))
	res := Result{}
	for _, raw := range seeds {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if rng.Known() && !rng.Contains(id) {
			res.Filtered++
			continue
		}
		ids = append(ids, id)
	}

	res.Entries = make([]model.SeedEntry, len(ids))
	if len(ids) == 0 {
		return res
	}
	w := 1.0 / float64(len(ids))
	for i, id := range ids {
		res.Entries[i] = model.SeedEntry{ID: id, Weight: w}
	}
	return res
}
