package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/trustgraph/internal/adapters/source"
	"github.com/okian/trustgraph/internal/adapters/worker"
	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/seed"
	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
)

type variant int

const (
	variantSeed variant = iota + 1
	variantCommunity
)

func (v variant) String() string {
	if v == variantCommunity {
		return "community"
	}
	return "seed"
}

// Skip reasons reported to metrics.
const (
	skipMissing     = "missing"
	skipUndecodable = "undecodable"
)

type loaded struct {
	spec source.Spec
	doc  source.Document
}

// corpus is every readable document of one graph, normalized.
type corpus struct {
	graph    string
	variant  variant
	docs     []loaded
	skipped  int
	resolver *identity.Resolver
	// records holds one slice per document, in document order.
	records  [][]model.Record
	observed seed.Range
}

// specs lists the exports of graph under the configured naming convention.
func (s *Service) specs(graph string) ([]source.Spec, variant, error) {
	if ids, ok := s.seedGraph[graph]; ok {
		seen := make(map[string]struct{}, len(ids))
		unique := make([]string, 0, len(ids))
		for _, id := range ids {
			id = identity.NormalizeID(id)
			if _, dup := seen[id]; dup || id == "" {
				continue
			}
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
		return source.SeedSpecs(s.dirs.SeedRaw, unique), variantSeed, nil
	}
	if _, ok := s.communities[graph]; ok {
		return source.CommunitySpecs(s.dirs.Raw, graph), variantCommunity, nil
	}
	return nil, 0, fmt.Errorf("%w: %q", ErrUnknownGraph, graph)
}

// load decodes specs in parallel. Missing or undecodable files are skipped
// with a warning; the returned documents keep input order.
func (s *Service) load(ctx context.Context, specs []source.Spec) ([]loaded, int, error) {
	results, err := worker.Map(ctx, s.pool, specs, func(ctx context.Context, sp source.Spec) (loaded, error) {
		doc, err := source.Open(sp)
		switch {
		case err == nil:
			return loaded{spec: sp, doc: doc}, nil
		case errors.Is(err, source.ErrMissing):
			metrics.RecordSourceSkipped(skipMissing)
			s.logger.Warn(ctx, "source file missing, skipping",
				logger.String("path", sp.Path),
				logger.String("kind", string(sp.Kind)),
			)
		default:
			metrics.RecordSourceSkipped(skipUndecodable)
			s.logger.Warn(ctx, "source file unreadable, skipping",
				logger.String("path", sp.Path),
				logger.String("kind", string(sp.Kind)),
				logger.Error(err),
			)
		}
		return loaded{spec: sp}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	docs := make([]loaded, 0, len(results))
	for _, r := range results {
		if r.doc != nil {
			docs = append(docs, r)
		}
	}
	return docs, len(results) - len(docs), nil
}

// resolve freezes every id+username pair of docs into a Resolver and notes
// the numeric ids they carry.
func resolve(docs []loaded, observed *seed.Range) *identity.Resolver {
	b := identity.NewBuilder()
	for _, d := range docs {
		d.doc.Identities(func(tier identity.Tier, id, username string) {
			b.Add(tier, id, username)
			observed.Observe(id)
		})
	}
	return b.Build()
}

// masterLists returns the master list of every seed group whose followings
// export defines one. A defined but empty list admits no extended follow.
func masterLists(docs []loaded) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, d := range docs {
		ml, ok := d.doc.(source.MasterLister)
		if !ok {
			continue
		}
		ids := ml.MasterIDs()
		if ids == nil {
			continue
		}
		set := out[d.spec.Group]
		if set == nil {
			set = make(map[string]struct{})
			out[d.spec.Group] = set
		}
		for id := range ids {
			set[id] = struct{}{}
		}
	}
	return out
}

// collect loads and normalizes every document of graph. Normalization runs
// on the pool; each task only produces its own record slice.
func (s *Service) collect(ctx context.Context, graph string) (*corpus, error) {
	specs, v, err := s.specs(graph)
	if err != nil {
		return nil, err
	}
	docs, skipped, err := s.load(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", graph, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: graph %q (%d files looked up)", ErrNoSources, graph, len(specs))
	}

	c := &corpus{graph: graph, variant: v, docs: docs, skipped: skipped}
	c.resolver = resolve(docs, &c.observed)

	base := source.Scope{Resolver: c.resolver}
	if v == variantCommunity {
		base.CommunityID = graph
	}
	masters := masterLists(docs)

	c.records, err = worker.Map(ctx, s.pool, docs, func(ctx context.Context, d loaded) ([]model.Record, error) {
		scope := base
		if v == variantSeed {
			scope.MasterIDs = masters[d.spec.Group]
		}
		var out []model.Record
		for rec := range d.doc.Records(scope) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", graph, err)
	}

	for _, recs := range c.records {
		for _, rec := range recs {
			for _, ev := range rec.Events {
				c.observed.Observe(ev.Source)
				c.observed.Observe(ev.Target)
			}
		}
	}

	s.logger.Info(ctx, "sources loaded",
		logger.String("graph", graph),
		logger.String("variant", v.String()),
		logger.Int("documents", len(docs)),
		logger.Int("skipped", skipped),
		logger.Int("identities", c.resolver.Len()),
	)
	return c, nil
}
