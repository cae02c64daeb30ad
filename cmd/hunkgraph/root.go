package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agusespa/hunkgraph/internal/git"
	"github.com/agusespa/hunkgraph/internal/render"
	"github.com/agusespa/hunkgraph/pkg/config"
)

var (
	cfgFile   string
	verbose   bool
	baseRef   string
	headRef   string
	staged    bool
	formatArg string
	inputFile string
)

var (
	errStagedWithHead = errors.New("--staged cannot be combined with --head")
	errDefsInput      = errors.New("--input cannot be combined with defs")
)

var rootCmd = &cobra.Command{
	Use:   "hunkgraph",
	Short: "Link the hunks of a diff through the symbols they change",
	Long: `hunkgraph reads a git diff, finds the symbols each hunk defines or uses,
and reports how the changed files and hunks depend on each other.

With no refs it compares the working tree against HEAD.

Examples:
  hunkgraph graph                        # working tree vs HEAD
  hunkgraph links --staged               # index vs HEAD
  hunkgraph graph --base main --format dot | dot -Tsvg > graph.svg
  hunkgraph symbols --input review.json --format json`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("hunkgraph version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (JSON, YAML or TOML)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	flags.StringVar(&baseRef, "base", "", "old side of the comparison (default HEAD)")
	flags.StringVar(&headRef, "head", "", "new side of the comparison (default working tree)")
	flags.BoolVar(&staged, "staged", false, "compare the index against HEAD")
	flags.StringVarP(&formatArg, "format", "f", "text", "output format: text, json or dot")
	flags.StringVar(&inputFile, "input", "", "read a saved {files, hunks} JSON payload instead of running git")
}

// settings is what every command needs before it can run.
type settings struct {
	cfg    *config.Config
	logger *slog.Logger
	format render.Format
}

func loadSettings() (*settings, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	format, err := render.ParseFormat(formatArg)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return &settings{cfg: cfg, logger: logger, format: format}, nil
}

func comparisonFromFlags() (git.Comparison, error) {
	if staged && headRef != "" {
		return git.Comparison{}, errStagedWithHead
	}
	return git.Comparison{Base: baseRef, Head: headRef, Staged: staged}, nil
}
