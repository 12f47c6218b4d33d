// Package repository persists the pipeline's tables: trust edge lists,
// seed vectors and score tables.
package repository

import (
	"context"

	"github.com/okian/trustgraph/internal/domain/model"
)

// Table headers.
var (
	EdgeHeader     = []string{"i", "j", "v"}
	SeedHeader     = []string{"i", "v"}
	RawScoreHeader = []string{"i", "v"}
	UsernameHeader = []string{"username", "score"}
	UserIDHeader   = []string{"user_id", "score"}
	FilteredHeader = []string{"i", "v"}
)

// Store reads and writes pipeline tables by path.
type Store interface {
	// WriteEdges writes a trust edge list in the given row order.
	WriteEdges(ctx context.Context, path string, edges []model.TrustEdge) error
	// WriteSeed writes a seed vector. An empty vector yields a header-only table.
	WriteSeed(ctx context.Context, path string, entries []model.SeedEntry) error
	// ReadScores reads a raw i,v score table.
	ReadScores(ctx context.Context, path string) ([]model.ScoreEntry, error)
	// WriteScores writes a two-column score table under header.
	WriteScores(ctx context.Context, path string, header []string, entries []model.ScoreEntry) error
}
