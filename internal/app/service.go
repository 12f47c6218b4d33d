// Package service runs the trust graph pipeline: it turns harvested source
// documents into trust edge lists and seed vectors for the external ranking
// engine, and post-processes the raw scores that engine writes back.
package service

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/trustgraph/internal/adapters/repository"
	"github.com/okian/trustgraph/internal/adapters/worker"
	"github.com/okian/trustgraph/internal/domain/scoring"
	"github.com/okian/trustgraph/internal/domain/weights"
	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
)

// Dirs locates the pipeline's inputs and outputs.
type Dirs struct {
	// Raw holds community exports.
	Raw string
	// SeedRaw holds seed exports and graph range files.
	SeedRaw string
	Trust   string
	Seed    string
	// Scores holds raw tables written by the ranking engine.
	Scores string
	Output string
}

// Service runs pipeline stages. Stages are independent batch runs; a Service
// may run several, one after another.
type Service struct {
	store   repository.Store
	pool    *worker.Pool
	weights *weights.Table
	dirs    Dirs

	seedGraph   map[string][]string
	communities map[string]struct{}

	transform        scoring.Transform
	resolveUsernames bool
	targetMax        int
	metricsTextfile  string

	workerCount int
	runID       string
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the CSV table store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount bounds concurrent document decoding.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithWeights sets the interaction weight table.
func WithWeights(tbl *weights.Table) Option {
	return func(s *Service) {
		if tbl != nil {
			s.weights = tbl
		}
	}
}

// WithDirs sets input and output directories. Empty fields keep their defaults.
func WithDirs(d Dirs) Option {
	return func(s *Service) {
		set := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		set(&s.dirs.Raw, d.Raw)
		set(&s.dirs.SeedRaw, d.SeedRaw)
		set(&s.dirs.Trust, d.Trust)
		set(&s.dirs.Seed, d.Seed)
		set(&s.dirs.Scores, d.Scores)
		set(&s.dirs.Output, d.Output)
	}
}

// WithSeedGraph registers seed graphs by name.
func WithSeedGraph(graphs map[string][]string) Option {
	return func(s *Service) {
		for name, ids := range graphs {
			s.seedGraph[name] = slices.Clone(ids)
		}
	}
}

// WithCommunities registers community ids.
func WithCommunities(ids []string) Option {
	return func(s *Service) {
		for _, id := range ids {
			s.communities[id] = struct{}{}
		}
	}
}

// WithTransform selects the score transform used by ProcessScores.
func WithTransform(t scoring.Transform) Option {
	return func(s *Service) {
		if t != "" {
			s.transform = t
		}
	}
}

// WithUsernameResolution toggles username output in ProcessScores.
func WithUsernameResolution(enabled bool) Option {
	return func(s *Service) {
		s.resolveUsernames = enabled
	}
}

// WithTargetMax sets the upper bound of FilterScores tables.
func WithTargetMax(targetMax int) Option {
	return func(s *Service) {
		if targetMax > 0 {
			s.targetMax = targetMax
		}
	}
}

// WithMetricsTextfile makes Run dump the metrics registry to path.
func WithMetricsTextfile(path string) Option {
	return func(s *Service) {
		s.metricsTextfile = path
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dirs: Dirs{
			Raw:     "raw",
			SeedRaw: filepath.Join("raw", "seed"),
			Trust:   "trust",
			Seed:    "seed",
			Scores:  "scores",
			Output:  "output",
		},
		seedGraph:        make(map[string][]string),
		communities:      make(map[string]struct{}),
		transform:        scoring.Log2,
		resolveUsernames: true,
		targetMax:        scoring.DefaultTargetMax,
		runID:            uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	if s.weights == nil {
		s.weights = weights.New()
	}
	if s.store == nil {
		s.store = repository.NewCSVStore(repository.WithLogger(s.logger.Named("repository")))
	}
	s.pool = worker.NewPool(s.workerCount,
		worker.WithName("parse"),
		worker.WithLogger(s.logger.Named("worker")),
	)
	return s
}

// RunID identifies this Service's log lines.
func (s *Service) RunID() string { return s.runID }

// Graphs returns every configured seed graph and community, sorted.
func (s *Service) Graphs() []string {
	names := slices.Collect(maps.Keys(s.seedGraph))
	for cid := range s.communities {
		if _, dup := s.seedGraph[cid]; !dup {
			names = append(names, cid)
		}
	}
	slices.Sort(names)
	return names
}

// Run builds the trust edge list of every configured graph, plus the seed
// vector of every seed graph, and then writes the metrics textfile if one is
// configured. It stops at the first failing graph.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	graphs := s.Graphs()
	if len(graphs) == 0 {
		return fmt.Errorf("%w: no seed graphs or communities configured", ErrUnknownGraph)
	}
	for _, g := range graphs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := s.collect(ctx, g)
		if err != nil {
			return err
		}
		if _, err := s.writeTrust(ctx, c); err != nil {
			return err
		}
		if c.variant == variantSeed {
			if _, err := s.writeSeed(ctx, c); err != nil {
				return err
			}
		}
	}
	s.logger.Info(ctx, "pipeline run finished",
		logger.Int("graphs", len(graphs)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return s.FlushMetrics(ctx)
}

// FlushMetrics writes the metrics registry to the configured textfile. It
// is a no-op when none is configured.
func (s *Service) FlushMetrics(ctx context.Context) error {
	if s.metricsTextfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(s.metricsTextfile); err != nil {
		return err
	}
	s.logger.Debug(ctx, "metrics textfile written", logger.String("path", s.metricsTextfile))
	return nil
}

// stage records duration and outcome of one pipeline stage.
func (s *Service) stage(name string, start time.Time, err error) {
	if err != nil {
		metrics.RecordStageError(name)
		return
	}
	metrics.RecordStageDuration(name, time.Since(start).Seconds())
}
