package scoring

import (
	"math"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
)

// DefaultTargetMax is the upper bound used by the score filtering output.
const DefaultTargetMax = 100000

// ScaleToRange maps positive scores onto integers in [1, targetMax] by
// linear min-max scaling with half-to-even rounding and a floor of 1. When
// every score is equal, each maps to targetMax. Non-positive scores are
// removed. The result is sorted descending. It is not interchangeable with
// Normalizer: consumers of this table expect the integer range.
func ScaleToRange(raw []model.ScoreEntry, targetMax int) []model.ScoreEntry {
	if targetMax <= 0 {
		targetMax = DefaultTargetMax
	}
	kept := make([]model.ScoreEntry, 0, len(raw))
	for _, e := range raw {
		if e.Score > 0 && !math.IsInf(e.Score, 0) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return kept
	}

	lo, hi := kept[0].Score, kept[0].Score
	for _, e := range kept {
		lo = min(lo, e.Score)
		hi = max(hi, e.Score)
	}
	top := float64(targetMax)
	for i, e := range kept {
		if hi == lo {
			kept[i].Score = top
			continue
		}
		kept[i].Score = max(1, math.RoundToEven((e.Score-lo)/(hi-lo)*top))
	}
	SortDescending(kept)
	return kept
}

// FoldIdentifiers lower-cases identifiers, keeping the last score seen for a
// repeated identifier, the way username-keyed score tables are read.
func FoldIdentifiers(raw []model.ScoreEntry) []model.ScoreEntry {
	pos := make(map[string]int, len(raw))
	out := make([]model.ScoreEntry, 0, len(raw))
	for _, e := range raw {
		id := strings.ToLower(strings.TrimSpace(e.ID))
		if id == "" {
			continue
		}
		if i, ok := pos[id]; ok {
			out[i].Score = e.Score
			continue
		}
		pos[id] = len(out)
		out = append(out, model.ScoreEntry{ID: id, Score: e.Score})
	}
	return out
}

// FilterMembers keeps entries whose identifier is in members. An empty
// member set leaves the entries untouched.
func FilterMembers(entries []model.ScoreEntry, members map[string]struct{}) []model.ScoreEntry {
	if len(members) == 0 {
		return entries
	}
	out := make([]model.ScoreEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := members[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}
