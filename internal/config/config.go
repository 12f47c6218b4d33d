// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and TRUSTGRAPH_ env vars.
// - External errors must be wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/internal/domain/scoring"
	"github.com/okian/trustgraph/internal/domain/weights"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RawDir holds community source documents ({cid}_{kind}.json).
	RawDir string `koanf:"raw_dir"`
	// SeedRawDir holds seed source documents and graph range files.
	SeedRawDir string `koanf:"seed_raw_dir"`
	// TrustDir receives trust edge lists.
	TrustDir string `koanf:"trust_dir"`
	// SeedDir receives seed vectors.
	SeedDir string `koanf:"seed_dir"`
	// ScoresDir holds raw score tables written by the ranking engine.
	ScoresDir string `koanf:"scores_dir"`
	// OutputDir receives normalized and filtered score tables.
	OutputDir string `koanf:"output_dir"`

	// ParseWorkers bounds concurrent document decoding.
	ParseWorkers int `koanf:"parse_workers"`

	// TrustWeights maps interaction type names to positive weights.
	// Absent types keep their defaults.
	TrustWeights map[string]int `koanf:"trust_weights"`

	// CommunityPostMultiplier scales events made inside the community being
	// built. 1 disables it.
	CommunityPostMultiplier float64 `koanf:"community_post_multiplier"`

	// SeedGraph maps a graph name to its configured seed ids.
	SeedGraph map[string][]string `koanf:"seed_graph"`

	// Communities lists the community ids built by the community variant.
	Communities []string `koanf:"communities"`

	// ResolveUsernames writes username,score instead of user_id,score.
	ResolveUsernames bool `koanf:"resolve_usernames"`

	// ScoreTransform is one of log2, sqrt, quantile.
	ScoreTransform string `koanf:"score_transform"`

	// FilterTargetMax is the upper bound of the filter range scale.
	FilterTargetMax int `koanf:"filter_target_max"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after each run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		RawDir:                  "raw",
		SeedRawDir:              "raw/seed",
		TrustDir:                "trust",
		SeedDir:                 "seed",
		ScoresDir:               "scores",
		OutputDir:               "output",
		ParseWorkers:            runtime.NumCPU() * 2,
		TrustWeights:            weights.Defaults(),
		CommunityPostMultiplier: weights.DefaultCommunityMultiplier,
		SeedGraph:               map[string][]string{},
		ResolveUsernames:        true,
		ScoreTransform:          string(scoring.Log2),
		FilterTargetMax:         scoring.DefaultTargetMax,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	for name, w := range c.TrustWeights {
		if _, err := model.ParseInteractionType(name); err != nil {
			return fmt.Errorf("%w: trust_weights: %w", ErrInvalidConfig, err)
		}
		if w <= 0 {
			return fmt.Errorf("%w: trust_weights.%s must be positive, got %d", ErrInvalidConfig, name, w)
		}
	}
	if c.CommunityPostMultiplier <= 0 {
		return fmt.Errorf("%w: community_post_multiplier must be positive, got %g", ErrInvalidConfig, c.CommunityPostMultiplier)
	}
	if c.ParseWorkers <= 0 {
		return fmt.Errorf("%w: parse_workers must be positive, got %d", ErrInvalidConfig, c.ParseWorkers)
	}
	if _, err := scoring.ParseTransform(c.ScoreTransform); err != nil {
		return fmt.Errorf("%w: score_transform: %w", ErrInvalidConfig, err)
	}
	if c.FilterTargetMax < 1 {
		return fmt.Errorf("%w: filter_target_max must be at least 1, got %d", ErrInvalidConfig, c.FilterTargetMax)
	}
	for graph := range c.SeedGraph {
		if strings.TrimSpace(graph) == "" {
			return fmt.Errorf("%w: seed_graph has an empty graph name", ErrInvalidConfig)
		}
	}
	for _, cid := range c.Communities {
		if strings.TrimSpace(cid) == "" {
			return fmt.Errorf("%w: communities has an empty id", ErrInvalidConfig)
		}
	}
	return nil
}
