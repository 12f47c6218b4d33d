package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/okian/trustgraph/internal/adapters/source"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/seed"
	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
)

// SeedReport describes one written seed vector.
type SeedReport struct {
	Graph    string
	Path     string
	Range    seed.Range
	Entries  []model.SeedEntry
	Filtered int
}

// SeedPath returns where the seed vector of graph is written.
func (s *Service) SeedPath(graph string) string {
	return filepath.Join(s.dirs.Seed, graph+".csv")
}

// BuildSeed writes the uniform seed vector of a seed graph, restricted to
// the numeric id range observed in its source documents and range files.
func (s *Service) BuildSeed(ctx context.Context, graph string) (rep SeedReport, err error) {
	start := time.Now()
	defer func() { s.stage("seed", start, err) }()

	if _, ok := s.seedGraph[graph]; !ok {
		return SeedReport{}, fmt.Errorf("%w: %q is not a seed graph", ErrUnknownGraph, graph)
	}
	c, err := s.collect(ctx, graph)
	if err != nil {
		return SeedReport{}, err
	}
	return s.writeSeed(ctx, c)
}

func (s *Service) writeSeed(ctx context.Context, c *corpus) (SeedReport, error) {
	fromFiles, err := source.RangeFromDir(s.dirs.SeedRaw, c.graph)
	if err != nil {
		s.logger.Warn(ctx, "range files unreadable, using observed ids only",
			logger.String("graph", c.graph), logger.Error(err))
	}
	rng := c.observed.Merge(fromFiles)
	if !rng.Known() {
		s.logger.Warn(ctx, "no numeric ids observed, seeds are not range filtered",
			logger.String("graph", c.graph))
	}

	res := seed.Build(s.seedGraph[c.graph], rng)
	path := s.SeedPath(c.graph)
	if err := s.store.WriteSeed(ctx, path, res.Entries); err != nil {
		return SeedReport{}, err
	}
	metrics.RecordSeedsFiltered(res.Filtered)
	if len(res.Entries) == 0 {
		s.logger.Warn(ctx, "seed vector is empty", logger.String("graph", c.graph), logger.String("range", rng.String()))
	}
	s.logger.Info(ctx, "seed vector built",
		logger.String("graph", c.graph),
		logger.String("range", rng.String()),
		logger.Int("seeds", len(res.Entries)),
		logger.Int("filtered", res.Filtered),
	)
	return SeedReport{
		Graph:    c.graph,
		Path:     path,
		Range:    rng,
		Entries:  res.Entries,
		Filtered: res.Filtered,
	}, nil
}
