package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	app "github.com/okian/trustgraph/internal/app"
	"github.com/okian/trustgraph/internal/config"
	"github.com/okian/trustgraph/internal/domain/scoring"
	"github.com/okian/trustgraph/internal/domain/weights"
	"github.com/okian/trustgraph/internal/testcorpus"
	"github.com/okian/trustgraph/pkg/logger"
)

var cfgFile string

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trustgraph",
		Short:         "Build trust graphs from harvested exports and normalize ranking scores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $"+config.EnvConfigPath+")")

	root.AddCommand(trustCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(scoresCmd())
	root.AddCommand(filterCmd())
	root.AddCommand(runCmd())
	root.AddCommand(synthCmd())

	return root
}

func trustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust [graph...]",
		Short: "Write trust edge lists (default: every seed graph and community)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, svc, err := setup(ctx)
			if err != nil {
				return err
			}
			for _, g := range orDefault(args, svc.Graphs()) {
				if _, err := svc.BuildTrust(ctx, g); err != nil {
					return err
				}
			}
			return svc.FlushMetrics(ctx)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [graph...]",
		Short: "Write seed vectors (default: every seed graph)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, svc, err := setup(ctx)
			if err != nil {
				return err
			}
			for _, g := range orDefault(args, seedGraphs(cfg)) {
				if _, err := svc.BuildSeed(ctx, g); err != nil {
					return err
				}
			}
			return svc.FlushMetrics(ctx)
		},
	}
}

func scoresCmd() *cobra.Command {
	var transform string

	cmd := &cobra.Command{
		Use:   "scores [graph...]",
		Short: "Normalize raw ranking scores into [0, 1] (default: every graph)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var extra []app.Option
			if transform != "" {
				t, err := scoring.ParseTransform(transform)
				if err != nil {
					return err
				}
				extra = append(extra, app.WithTransform(t))
			}
			_, svc, err := setup(ctx, extra...)
			if err != nil {
				return err
			}
			for _, g := range orDefault(args, svc.Graphs()) {
				if _, err := svc.ProcessScores(ctx, g); err != nil {
					return err
				}
			}
			return svc.FlushMetrics(ctx)
		},
	}

	cmd.Flags().StringVar(&transform, "transform", "", "log2, sqrt or quantile (default: from config)")
	return cmd
}

func filterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter [community...]",
		Short: "Write range-scaled and members-only score tables (default: every community)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, svc, err := setup(ctx)
			if err != nil {
				return err
			}
			for _, cid := range orDefault(args, cfg.Communities) {
				if _, err := svc.FilterScores(ctx, cid); err != nil {
					return err
				}
			}
			return svc.FlushMetrics(ctx)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Write trust edge lists and seed vectors for every configured graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, svc, err := setup(ctx)
			if err != nil {
				return err
			}
			return svc.Run(ctx)
		},
	}
}

func synthCmd() *cobra.Command {
	var (
		out string
		gc  testcorpus.Config
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a reproducible synthetic export corpus for local runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gen, err := testcorpus.Generate(ctx, out, gc)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "seed_raw_dir: %s\nraw_dir: %s\nseed_graph:\n  %s:\n", gen.SeedDir, gen.RawDir, gen.Graph)
			for _, id := range gen.SeedIDs {
				fmt.Fprintf(w, "    - %q\n", id)
			}
			fmt.Fprintf(w, "communities:\n  - %q\n", gen.CommunityID)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", ".", "directory to write raw/ into")
	cmd.Flags().StringVar(&gc.Graph, "graph", "synthetic", "seed graph name")
	cmd.Flags().IntVar(&gc.Seeds, "seeds", testcorpus.DefaultSeeds, "number of seed users")
	cmd.Flags().IntVar(&gc.Users, "users", testcorpus.DefaultUsers, "number of users")
	cmd.Flags().IntVar(&gc.PostsPerUser, "posts", testcorpus.DefaultPostsPerUser, "posts per user")
	cmd.Flags().Uint64Var(&gc.RandSeed, "rand-seed", testcorpus.DefaultRandSeed, "random seed")
	return cmd
}

// setup loads configuration, applies the log level and builds the service.
func setup(ctx context.Context, extra ...app.Option) (*config.Config, *app.Service, error) {
	cfg, err := config.Load(ctx, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	transform, err := scoring.ParseTransform(cfg.ScoreTransform)
	if err != nil {
		return nil, nil, err
	}

	opts := []app.Option{
		app.WithLogger(logger.Named("trustgraph")),
		app.WithWorkerCount(cfg.ParseWorkers),
		app.WithDirs(app.Dirs{
			Raw:     cfg.RawDir,
			SeedRaw: cfg.SeedRawDir,
			Trust:   cfg.TrustDir,
			Seed:    cfg.SeedDir,
			Scores:  cfg.ScoresDir,
			Output:  cfg.OutputDir,
		}),
		app.WithWeights(weights.New(
			weights.WithWeightsFromConfig(cfg.TrustWeights),
			weights.WithCommunityMultiplier(cfg.CommunityPostMultiplier),
		)),
		app.WithSeedGraph(cfg.SeedGraph),
		app.WithCommunities(cfg.Communities),
		app.WithTransform(transform),
		app.WithUsernameResolution(cfg.ResolveUsernames),
		app.WithTargetMax(cfg.FilterTargetMax),
		app.WithMetricsTextfile(cfg.MetricsTextfile),
	}
	return cfg, app.New(append(opts, extra...)...), nil
}

func seedGraphs(cfg *config.Config) []string {
	return slices.Sorted(maps.Keys(cfg.SeedGraph))
}

func orDefault(args, fallback []string) []string {
	if len(args) > 0 {
		return args
	}
	return fallback
}
