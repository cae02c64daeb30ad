package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agusespa/hunkgraph/internal/git"
	"github.com/agusespa/hunkgraph/internal/linking"
	"github.com/agusespa/hunkgraph/internal/pipeline"
	"github.com/agusespa/hunkgraph/internal/render"
	"github.com/agusespa/hunkgraph/internal/types"
	"github.com/agusespa/hunkgraph/pkg/spinner"
)

var errUnsupportedView = errors.New("format not supported for this view")

// inputPayload is the saved form of a review accepted by --input.
type inputPayload struct {
	Files []types.FileSymbolDiff `json:"files"`
	Hunks []types.Hunk           `json:"hunks"`
}

func loadInput(path string) (*inputPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	var payload inputPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse input %s: %w", path, err)
	}
	return &payload, nil
}

// session owns the long-lived pieces a command uses: the memoizing analyzer
// and, when reading from git, the client and pipeline.
type session struct {
	*settings
	analyzer *linking.Analyzer
	pipeline *pipeline.Pipeline
	client   *git.Client
}

// newSession opens the repository containing dir, so commands work from any
// subdirectory. With --input set no repository is needed.
func newSession(ctx context.Context, s *settings, dir string) (*session, error) {
	analyzer, err := linking.NewAnalyzer(s.cfg.Analysis.CacheSize, s.logger)
	if err != nil {
		return nil, err
	}
	sess := &session{settings: s, analyzer: analyzer}
	if inputFile != "" {
		return sess, nil
	}

	client, err := git.Open(ctx, dir)
	if err != nil {
		analyzer.Close()
		return nil, err
	}
	sess.client = client
	sess.pipeline = pipeline.New(client, analyzer, pipeline.Options{
		Workers: s.cfg.Pipeline.Workers,
		Exclude: s.cfg.Pipeline.Exclude,
		Logger:  s.logger,
	})
	s.logger.Debug("repository opened", "root", client.Dir())
	return sess, nil
}

func (s *session) Close() {
	if s.pipeline != nil {
		s.pipeline.Close()
	}
	s.analyzer.Close()
}

func (s *session) run(ctx context.Context, cmp git.Comparison) (*pipeline.Result, error) {
	if inputFile != "" {
		payload, err := loadInput(inputFile)
		if err != nil {
			return nil, err
		}
		analysis, err := s.analyzer.Analyze(payload.Files, payload.Hunks)
		if err != nil {
			return nil, err
		}
		return &pipeline.Result{
			Comparison: inputFile,
			Files:      payload.Files,
			Hunks:      payload.Hunks,
			Analysis:   analysis,
		}, nil
	}

	if isTerminal(os.Stderr) && !verbose {
		spin := spinner.New("Analyzing " + cmp.Key())
		spin.Start()
		defer spin.Stop()
	}
	return s.pipeline.Run(ctx, cmp)
}

// view renders one aspect of a result.
type view func(w io.Writer, format render.Format, result *pipeline.Result) error

var views = map[string]view{
	"graph":     writeGraph,
	"links":     writeLinks,
	"identical": writeIdentical,
	"symbols":   writeSymbols,
	"moves":     writeMoves,
}

func writeGraph(w io.Writer, format render.Format, result *pipeline.Result) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, result.Analysis.Graph)
	case render.FormatDOT:
		return render.WriteDOT(w, result.Analysis.Graph)
	default:
		return render.WriteGraphText(w, result.Analysis.Graph)
	}
}

func writeLinks(w io.Writer, format render.Format, result *pipeline.Result) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, result.Analysis.Links)
	case render.FormatDOT:
		return fmt.Errorf("links: %w: %s", errUnsupportedView, format)
	default:
		return render.WriteLinksText(w, result.Analysis.Links)
	}
}

func writeIdentical(w io.Writer, format render.Format, result *pipeline.Result) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, result.Analysis.Identical)
	case render.FormatDOT:
		return fmt.Errorf("identical: %w: %s", errUnsupportedView, format)
	default:
		return render.WriteIdenticalText(w, result.Analysis.Identical)
	}
}

func writeMoves(w io.Writer, format render.Format, result *pipeline.Result) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, result.Analysis.Moves)
	case render.FormatDOT:
		return fmt.Errorf("moves: %w: %s", errUnsupportedView, format)
	default:
		return render.WriteMovesText(w, result.Analysis.Moves)
	}
}

// writeSymbols emits the full result as JSON so it can be fed back in with
// --input.
func writeSymbols(w io.Writer, format render.Format, result *pipeline.Result) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, result)
	case render.FormatDOT:
		return fmt.Errorf("symbols: %w: %s", errUnsupportedView, format)
	default:
		return render.WriteSymbolsText(w, result.Files, result.Hunks)
	}
}

func newViewCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			cmp, err := comparisonFromFlags()
			if err != nil {
				return err
			}

			sess, err := newSession(cmd.Context(), s, ".")
			if err != nil {
				return err
			}
			defer sess.Close()

			result, err := sess.run(cmd.Context(), cmp)
			if err != nil {
				return err
			}
			return views[name](cmd.OutOrStdout(), s.format, result)
		},
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func init() {
	rootCmd.AddCommand(
		newViewCmd("graph", "Show changed files clustered by the symbols they share"),
		newViewCmd("links", "Show, per hunk, the hunks it defines for or references"),
		newViewCmd("identical", "Show groups of hunks with identical content"),
		newViewCmd("symbols", "Show the changed symbols of each file"),
		newViewCmd("moves", "Show hunks whose content moved to another file"),
	)
}
