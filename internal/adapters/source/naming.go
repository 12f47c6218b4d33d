package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/okian/trustgraph/internal/domain/seed"
)

// ErrMissing is returned by Open when the export file does not exist.
var ErrMissing = errors.New("source file missing")

// SeedKinds are the exports harvested per seed user, in processing order.
var SeedKinds = []Kind{SeedFollowings, ExtendedFollowings, SeedInteractions}

// CommunityKinds are the exports harvested per community, in processing order.
var CommunityKinds = []Kind{Members, FollowingNetwork, MembersInteractions, CommentGraph, InternalInteractions}

// Spec locates one export on disk.
type Spec struct {
	Path string
	Kind Kind
	// Group is the seed user id or community id the export belongs to.
	Group string
}

// FileName returns the export file name for kind under prefix.
func FileName(prefix string, kind Kind) string {
	return prefix + "_" + string(kind) + ".json"
}

// SeedSpecs lists every seed export for the given seed ids under dir.
func SeedSpecs(dir string, seedIDs []string) []Spec {
	out := make([]Spec, 0, len(seedIDs)*len(SeedKinds))
	for _, id := range seedIDs {
		for _, k := range SeedKinds {
			out = append(out, Spec{Path: filepath.Join(dir, FileName(id, k)), Kind: k, Group: id})
		}
	}
	return out
}

// CommunitySpecs lists every export of community cid under dir.
func CommunitySpecs(dir, cid string) []Spec {
	out := make([]Spec, 0, len(CommunityKinds))
	for _, k := range CommunityKinds {
		out = append(out, Spec{Path: filepath.Join(dir, FileName(cid, k)), Kind: k, Group: cid})
	}
	return out
}

// Open reads and decodes the export described by spec.
func Open(spec Spec) (Document, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, spec.Path)
		}
		return nil, fmt.Errorf("open %s: %w", spec.Path, err)
	}
	defer func() { _ = f.Close() }()
	doc, err := Decode(spec.Kind, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Path, err)
	}
	return doc, nil
}

// RangeFromDir scans dir for interaction exports named {graph}_{id1}_{id2}.json
// and returns the span of the ids encoded in their names.
func RangeFromDir(dir, graph string) (seed.Range, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return seed.Range{}, nil
		}
		return seed.Range{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(graph) + `_(\d+)_(\d+)\.json$`)
	var rng seed.Range
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		lo, errLo := strconv.ParseUint(m[1], 10, 64)
		hi, errHi := strconv.ParseUint(m[2], 10, 64)
		if errLo != nil || errHi != nil {
			continue
		}
		rng = rng.Merge(seed.NewRange(lo, hi))
	}
	return rng, nil
}
