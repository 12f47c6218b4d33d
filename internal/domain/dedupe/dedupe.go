// Package dedupe tracks which facts have already been counted during one pipeline run.
package dedupe

import (
	"context"

	"github.com/okian/trustgraph/internal/domain/model"
)

// Deduper records seen dedup keys so each fact is counted exactly once.
type Deduper interface {
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key model.DedupKey) bool

	// Len returns the number of keys recorded for kind.
	Len(kind model.KeyKind) int

	// Size returns the number of keys recorded across all kinds.
	Size() int64
}

// inMemoryDeduper keeps one unbounded set per key kind. Evicting a key would
// let a later redundant source count the same fact twice, so nothing is ever
// dropped for the lifetime of the run.
//
// Not safe for concurrent use: a single reducer owns it.
type inMemoryDeduper struct {
	sets map[model.KeyKind]map[string]struct{}
	size int64
	hint int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.sets = map[model.KeyKind]map[string]struct{}{
		model.FollowKey: make(map[string]struct{}, d.hint),
		model.PostKey:   make(map[string]struct{}, d.hint),
	}
	return d
}

func (d *inMemoryDeduper) set(kind model.KeyKind) map[string]struct{} {
	s, ok := d.sets[kind]
	if !ok {
		s = make(map[string]struct{})
		d.sets[kind] = s
	}
	return s
}

// SeenAndRecord checks and records key in the set for its kind.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key model.DedupKey) bool {
	s := d.set(key.Kind)
	if _, exists := s[key.Value]; exists {
		return true
	}
	s[key.Value] = struct{}{}
	d.size++
	return false
}

// Len returns the number of keys recorded for kind.
func (d *inMemoryDeduper) Len(kind model.KeyKind) int {
	return len(d.sets[kind])
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size
}
