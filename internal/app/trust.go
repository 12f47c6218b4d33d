package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/okian/trustgraph/internal/domain/aggregate"
	"github.com/okian/trustgraph/internal/domain/dedupe"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/logger"
)

// TrustReport describes one written trust edge list.
type TrustReport struct {
	Graph     string
	Path      string
	Documents int
	Skipped   int
	Edges     []model.TrustEdge
	Stats     aggregate.Stats
	Summary   aggregate.Summary
}

// TrustPath returns where the edge list of graph is written.
func (s *Service) TrustPath(graph string) string {
	return filepath.Join(s.dirs.Trust, graph+".csv")
}

// BuildTrust builds and writes the trust edge list of a seed graph or a
// community. Missing source files are skipped; it fails with ErrNoSources
// when none can be read.
func (s *Service) BuildTrust(ctx context.Context, graph string) (rep TrustReport, err error) {
	start := time.Now()
	defer func() { s.stage("trust", start, err) }()

	c, err := s.collect(ctx, graph)
	if err != nil {
		return TrustReport{}, err
	}
	return s.writeTrust(ctx, c)
}

// writeTrust reduces the corpus through a single aggregator, in document
// then record order, and writes the sorted edges.
func (s *Service) writeTrust(ctx context.Context, c *corpus) (TrustReport, error) {
	total := 0
	for _, recs := range c.records {
		total += len(recs)
	}
	agg := aggregate.New(s.weights,
		aggregate.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithExpectedSize(total))),
	)
	for _, recs := range c.records {
		for _, rec := range recs {
			agg.Add(ctx, rec)
		}
	}

	edges := agg.Edges()
	path := s.TrustPath(c.graph)
	if err := s.store.WriteEdges(ctx, path, edges); err != nil {
		return TrustReport{}, err
	}

	rep := TrustReport{
		Graph:     c.graph,
		Path:      path,
		Documents: len(c.docs),
		Skipped:   c.skipped,
		Edges:     edges,
		Stats:     agg.Stats(),
		Summary:   aggregate.Summarize(edges),
	}
	s.logStats(ctx, rep)
	return rep, nil
}

func (s *Service) logStats(ctx context.Context, rep TrustReport) {
	fields := []logger.Field{
		logger.String("graph", rep.Graph),
		logger.Int("edges", rep.Summary.Edges),
		logger.Float64("weight_min", rep.Summary.Min),
		logger.Float64("weight_max", rep.Summary.Max),
		logger.Float64("weight_mean", rep.Summary.Mean),
		logger.Float64("weight_total", rep.Summary.Total),
	}
	for _, t := range model.InteractionTypes {
		fields = append(fields, logger.Int("events_"+string(t), rep.Stats.Events[t]))
	}
	fields = append(fields,
		logger.Int("duplicate_follows", rep.Stats.Duplicates[model.FollowKey]),
		logger.Int("duplicate_posts", rep.Stats.Duplicates[model.PostKey]),
		logger.Int("dropped_self_loops", rep.Stats.Dropped[aggregate.DropSelfLoop]),
		logger.Int("dropped_incomplete", rep.Stats.Dropped[aggregate.DropIncomplete]),
	)
	s.logger.Info(ctx, "trust graph built", fields...)
}
