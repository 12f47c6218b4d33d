package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/trustgraph/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func execute(ctx context.Context, args ...string) (string, error) {
	cfgFile = ""
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := rootCmd()

		convey.Convey("Then every pipeline stage is a subcommand", func() {
			names := make([]string, 0)
			for _, c := range root.Commands() {
				names = append(names, c.Name())
			}
			for _, want := range []string{"trust", "seed", "scores", "filter", "run", "synth"} {
				convey.So(names, convey.ShouldContain, want)
			}
			convey.So(root.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
		})
	})
}

func TestEndToEnd(t *testing.T) {
	convey.Convey("Given a synthetic corpus and a config file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		synthOut, err := execute(ctx, "synth", "--out", dir, "--graph", "ai", "--seeds", "2", "--users", "10")
		convey.So(err, convey.ShouldBeNil)
		convey.So(synthOut, convey.ShouldContainSubstring, "seed_graph:")

		cfgPath := filepath.Join(dir, "trustgraph.yaml")
		yaml := synthOut +
			"trust_dir: " + filepath.Join(dir, "trust") + "\n" +
			"seed_dir: " + filepath.Join(dir, "seed") + "\n" +
			"scores_dir: " + filepath.Join(dir, "scores") + "\n" +
			"output_dir: " + filepath.Join(dir, "output") + "\n"
		convey.So(os.WriteFile(cfgPath, []byte(yaml), 0o644), convey.ShouldBeNil)

		convey.Convey("When running the pipeline", func() {
			_, err := execute(ctx, "--config", cfgPath, "run")

			convey.Convey("Then trust edge lists and the seed vector are written", func() {
				convey.So(err, convey.ShouldBeNil)
				trust, readErr := os.ReadFile(filepath.Join(dir, "trust", "ai.csv"))
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(strings.HasPrefix(string(trust), "i,j,v\n"), convey.ShouldBeTrue)
				seed, readErr := os.ReadFile(filepath.Join(dir, "seed", "ai.csv"))
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(strings.HasPrefix(string(seed), "i,v\n"), convey.ShouldBeTrue)
			})

			convey.Convey("And scores written by the ranking engine can be normalized", func() {
				convey.So(os.MkdirAll(filepath.Join(dir, "scores"), 0o755), convey.ShouldBeNil)
				raw := "i,v\n1000000,8\n1000001,2\n1000002,32\n"
				convey.So(os.WriteFile(filepath.Join(dir, "scores", "ai.csv"), []byte(raw), 0o644), convey.ShouldBeNil)

				_, err := execute(ctx, "--config", cfgPath, "scores", "ai")
				convey.So(err, convey.ShouldBeNil)
				out, readErr := os.ReadFile(filepath.Join(dir, "output", "ai_users_log2.csv"))
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(out), convey.ShouldEqual, "username,score\nuser0002,1\nuser0000,0.5\nuser0001,0\n")
			})
		})

		convey.Convey("When asking for an unknown transform", func() {
			_, err := execute(ctx, "--config", cfgPath, "scores", "--transform", "cbrt", "ai")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_, err := execute(ctx, "--config", filepath.Join(dir, "nope.yaml"), "trust")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
