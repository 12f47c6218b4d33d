package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/okian/trustgraph/internal/adapters/repository"
	"github.com/okian/trustgraph/internal/adapters/source"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/scoring"
	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
)

// ScoreReport describes one written normalized score table.
type ScoreReport struct {
	Graph     string
	Path      string
	Transform scoring.Transform
	Entries   []model.ScoreEntry
	Discarded int
	Resolved  int
}

// FilterReport describes the tables written by FilterScores.
type FilterReport struct {
	Community string
	// NormalizedPath holds every positive score.
	NormalizedPath string
	Normalized     []model.ScoreEntry
	// MembersPath holds members and moderators only. It is empty when the
	// roster is missing or empty.
	MembersPath string
	Members     []model.ScoreEntry
}

// RawScoresPath returns where the ranking engine writes the scores of graph.
func (s *Service) RawScoresPath(graph string) string {
	return filepath.Join(s.dirs.Scores, graph+".csv")
}

// ScoresPath returns where ProcessScores writes graph's table.
func (s *Service) ScoresPath(graph string) string {
	return filepath.Join(s.dirs.Output, graph+"_users_"+string(s.transform)+".csv")
}

// readScores reads the raw score table of graph. Its absence is fatal, an
// empty table is not.
func (s *Service) readScores(ctx context.Context, graph string) ([]model.ScoreEntry, error) {
	path := s.RawScoresPath(graph)
	raw, err := s.store.ReadScores(ctx, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrMalformed) {
			return nil, fmt.Errorf("%w: %w", ErrMissingInput, err)
		}
		return nil, err
	}
	if len(raw) == 0 {
		s.logger.Warn(ctx, "raw score table has no rows", logger.String("graph", graph), logger.String("path", path))
	}
	return raw, nil
}

// ProcessScores compresses the raw scores of graph with the configured
// transform into [0, 1] and writes them sorted descending, keyed by
// username when resolution is enabled.
func (s *Service) ProcessScores(ctx context.Context, graph string) (rep ScoreReport, err error) {
	start := time.Now()
	defer func() { s.stage("scores", start, err) }()

	raw, err := s.readScores(ctx, graph)
	if err != nil {
		return ScoreReport{}, err
	}

	opts := []scoring.Option{scoring.WithTransform(s.transform)}
	header := repository.UserIDHeader
	if s.resolveUsernames {
		header = repository.UsernameHeader
		if c, cerr := s.collect(ctx, graph); cerr == nil {
			opts = append(opts, scoring.WithUsernames(c.resolver))
		} else {
			s.logger.Warn(ctx, "no usernames available, writing ids",
				logger.String("graph", graph), logger.Error(cerr))
		}
	}

	res, err := scoring.NewNormalizer(opts...).Normalize(ctx, raw)
	if err != nil {
		return ScoreReport{}, err
	}
	path := s.ScoresPath(graph)
	if err := s.store.WriteScores(ctx, path, header, res.Entries); err != nil {
		return ScoreReport{}, err
	}
	metrics.RecordScoresNormalized(string(s.transform), len(res.Entries))
	metrics.RecordScoresDiscarded(res.Discarded)
	s.logger.Info(ctx, "scores normalized",
		logger.String("graph", graph),
		logger.String("transform", string(s.transform)),
		logger.Int("entries", len(res.Entries)),
		logger.Int("discarded", res.Discarded),
		logger.Int("resolved", res.Resolved),
	)
	return ScoreReport{
		Graph:     graph,
		Path:      path,
		Transform: s.transform,
		Entries:   res.Entries,
		Discarded: res.Discarded,
		Resolved:  res.Resolved,
	}, nil
}

// FilterScores writes two integer-scaled tables for a community: every
// positive score, and the scores of members and moderators only. Each is
// scaled into [1, target max] on its own.
func (s *Service) FilterScores(ctx context.Context, cid string) (rep FilterReport, err error) {
	start := time.Now()
	defer func() { s.stage("filter", start, err) }()

	raw, err := s.readScores(ctx, cid)
	if err != nil {
		return FilterReport{}, err
	}
	folded := scoring.FoldIdentifiers(raw)

	rep = FilterReport{Community: cid}
	rep.Normalized = scoring.ScaleToRange(folded, s.targetMax)
	if len(rep.Normalized) == 0 {
		s.logger.Warn(ctx, "no positive scores to normalize", logger.String("community", cid))
	} else {
		rep.NormalizedPath = filepath.Join(s.dirs.Output, cid+"_normalized.csv")
		if err := s.store.WriteScores(ctx, rep.NormalizedPath, repository.FilteredHeader, rep.Normalized); err != nil {
			return FilterReport{}, err
		}
	}

	members := s.roster(ctx, cid)
	if len(members) == 0 {
		s.logger.Warn(ctx, "no members or moderators known, skipping member table", logger.String("community", cid))
		return rep, nil
	}
	rep.Members = scoring.ScaleToRange(scoring.FilterMembers(folded, members), s.targetMax)
	if len(rep.Members) == 0 {
		s.logger.Warn(ctx, "no member scores found", logger.String("community", cid))
		return rep, nil
	}
	rep.MembersPath = filepath.Join(s.dirs.Output, cid+"_members_and_mods.csv")
	if err := s.store.WriteScores(ctx, rep.MembersPath, repository.FilteredHeader, rep.Members); err != nil {
		return FilterReport{}, err
	}
	s.logger.Info(ctx, "scores filtered",
		logger.String("community", cid),
		logger.Int("normalized", len(rep.Normalized)),
		logger.Int("members", len(rep.Members)),
	)
	return rep, nil
}

// roster returns the normalized usernames of a community's members and
// moderators, or nil when the roster cannot be read.
func (s *Service) roster(ctx context.Context, cid string) map[string]struct{} {
	spec := source.Spec{
		Path:  filepath.Join(s.dirs.Raw, source.FileName(cid, source.Members)),
		Kind:  source.Members,
		Group: cid,
	}
	doc, err := source.Open(spec)
	if err != nil {
		s.logger.Warn(ctx, "members file unavailable", logger.String("path", spec.Path), logger.Error(err))
		return nil
	}
	lister, ok := doc.(source.UsernameLister)
	if !ok {
		return nil
	}
	return lister.Usernames()
}
