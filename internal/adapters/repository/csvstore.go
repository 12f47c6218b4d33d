package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
)

const defaultFileMode fs.FileMode = 0o644

// CSVStore implements Store on comma-separated files. Every write goes to a
// temporary file in the destination directory and is renamed into place,
// so readers never observe a partial table.
type CSVStore struct {
	mode   fs.FileMode
	logger logger.Logger
}

// NewCSVStore creates a CSVStore.
func NewCSVStore(opts ...Option) *CSVStore {
	s := &CSVStore{mode: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	return s
}

// FormatValue renders a number in its shortest exact decimal form, so
// integral weights print without a fraction.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteEdges writes edges under the i,j,v header.
func (s *CSVStore) WriteEdges(ctx context.Context, path string, edges []model.TrustEdge) error {
	err := s.writeAtomic(ctx, path, func(w *csv.Writer) error {
		if err := w.Write(EdgeHeader); err != nil {
			return err
		}
		for _, e := range edges {
			if err := w.Write([]string{e.Source, e.Target, FormatValue(e.Weight)}); err != nil {
				return err
			}
			metrics.RecordEdgeEmitted(e.Weight)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "trust edges written", logger.String("path", path), logger.Int("rows", len(edges)))
	return nil
}

// WriteSeed writes entries under the i,v header.
func (s *CSVStore) WriteSeed(ctx context.Context, path string, entries []model.SeedEntry) error {
	err := s.writeAtomic(ctx, path, func(w *csv.Writer) error {
		if err := w.Write(SeedHeader); err != nil {
			return err
		}
		for _, e := range entries {
			if err := w.Write([]string{e.ID, FormatValue(e.Weight)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordSeedsEmitted(len(entries))
	s.logger.Info(ctx, "seed vector written", logger.String("path", path), logger.Int("rows", len(entries)))
	return nil
}

// WriteScores writes entries under header, which must have two columns.
func (s *CSVStore) WriteScores(ctx context.Context, path string, header []string, entries []model.ScoreEntry) error {
	if len(header) != 2 {
		return fmt.Errorf("%w: score header needs 2 columns, got %d", ErrWrite, len(header))
	}
	err := s.writeAtomic(ctx, path, func(w *csv.Writer) error {
		if err := w.Write(header); err != nil {
			return err
		}
		for _, e := range entries {
			if err := w.Write([]string{e.ID, FormatValue(e.Score)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "score table written", logger.String("path", path), logger.Int("rows", len(entries)))
	return nil
}

// ReadScores reads a table with i and v columns in any position. Rows with
// an empty identifier or an unparsable value are skipped; a missing file or
// a missing column is an error.
func (s *CSVStore) ReadScores(ctx context.Context, path string) ([]model.ScoreEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: header: %w", ErrMalformed, path, err)
	}
	iCol, vCol := -1, -1
	for idx, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case RawScoreHeader[0]:
			iCol = idx
		case RawScoreHeader[1]:
			vCol = idx
		}
	}
	if iCol < 0 || vCol < 0 {
		return nil, fmt.Errorf("%w: %s: want columns i,v, got %v", ErrMalformed, path, header)
	}

	var (
		out     []model.ScoreEntry
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
		}
		if iCol >= len(row) || vCol >= len(row) {
			skipped++
			continue
		}
		id := strings.TrimSpace(row[iCol])
		v, perr := strconv.ParseFloat(strings.TrimSpace(row[vCol]), 64)
		if id == "" || perr != nil {
			skipped++
			continue
		}
		out = append(out, model.ScoreEntry{ID: id, Score: v})
	}
	if skipped > 0 {
		s.logger.Warn(ctx, "skipped unreadable score rows", logger.String("path", path), logger.Int("rows", skipped))
	}
	return out, nil
}

// writeAtomic renders a table into a temp file next to path and renames it over path.
func (s *CSVStore) writeAtomic(ctx context.Context, path string, fill func(*csv.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = fill(w); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Chmod(s.mode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}
