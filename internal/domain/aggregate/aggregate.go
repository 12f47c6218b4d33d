// Package aggregate folds deduplicated interaction records into a weighted,
// directed trust graph.
package aggregate

import (
	"cmp"
	"context"
	"slices"

	"github.com/okian/trustgraph/internal/domain/dedupe"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/weights"
	"github.com/okian/trustgraph/pkg/metrics"
)

// Drop reasons reported to metrics.
const (
	DropSelfLoop   = "self_loop"
	DropIncomplete = "missing_endpoint"
)

type pair struct {
	source string
	target string
}

// Aggregator sums per-type weights into edges keyed by (source, target).
// It owns its deduper and is not safe for concurrent use.
type Aggregator struct {
	weights *weights.Table
	deduper dedupe.Deduper
	edges   map[pair]float64
	stats   Stats
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithDeduper replaces the default in-memory deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(a *Aggregator) {
		if d != nil {
			a.deduper = d
		}
	}
}

// New creates an empty Aggregator. A nil table falls back to the default weights.
func New(tbl *weights.Table, opts ...Option) *Aggregator {
	if tbl == nil {
		tbl = weights.New()
	}
	a := &Aggregator{
		weights: tbl,
		edges:   make(map[pair]float64),
		stats:   newStats(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.deduper == nil {
		a.deduper = dedupe.NewInMemoryDeduper()
	}
	return a
}

// Add counts rec unless its key was already seen. A record whose key is new
// consumes the key even if none of its events survive, matching the rule that
// a post is inspected once. Returns false for duplicates.
func (a *Aggregator) Add(ctx context.Context, rec model.Record) bool {
	if a.deduper.SeenAndRecord(ctx, rec.Key) {
		a.stats.Duplicates[rec.Key.Kind]++
		metrics.RecordDuplicate(string(rec.Key.Kind))
		return false
	}
	a.stats.Records[rec.Key.Kind]++
	for _, ev := range rec.Events {
		a.addEvent(ev)
	}
	return true
}

func (a *Aggregator) addEvent(ev model.Event) {
	if !ev.Complete() {
		a.stats.Dropped[DropIncomplete]++
		metrics.RecordEventDropped(DropIncomplete)
		return
	}
	if ev.SelfLoop() {
		a.stats.Dropped[DropSelfLoop]++
		metrics.RecordEventDropped(DropSelfLoop)
		return
	}
	a.edges[pair{source: ev.Source, target: ev.Target}] += a.weights.Weight(ev)
	a.stats.Events[ev.Type]++
	metrics.RecordEventAggregated(string(ev.Type))
}

// Len returns the number of distinct edges.
func (a *Aggregator) Len() int { return len(a.edges) }

// Weight returns the current aggregate for (source, target).
func (a *Aggregator) Weight(source, target string) float64 {
	return a.edges[pair{source: source, target: target}]
}

// Edges returns every edge sorted by (source, target) ascending.
func (a *Aggregator) Edges() []model.TrustEdge {
	out := make([]model.TrustEdge, 0, len(a.edges))
	for p, w := range a.edges {
		out = append(out, model.TrustEdge{Source: p.source, Target: p.target, Weight: w})
	}
	SortEdges(out)
	return out
}

// SortEdges orders edges by (source, target) ascending.
func SortEdges(edges []model.TrustEdge) {
	slices.SortFunc(edges, func(x, y model.TrustEdge) int {
		if c := cmp.Compare(x.Source, y.Source); c != 0 {
			return c
		}
		return cmp.Compare(x.Target, y.Target)
	})
}

// Stats returns a copy of the run counters.
func (a *Aggregator) Stats() Stats {
	return a.stats.clone()
}
