package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agusespa/hunkgraph/internal/watch"
)

var (
	watchView     string
	errWatchInput = errors.New("--input cannot be combined with watch")
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run a view whenever the working tree or index changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchView, "view", "graph", "view to print: graph, links, identical, symbols or moves")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	write, ok := views[watchView]
	if !ok {
		return fmt.Errorf("unknown view %q", watchView)
	}
	if inputFile != "" {
		return errWatchInput
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	cmp, err := comparisonFromFlags()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, s, ".")
	if err != nil {
		return err
	}
	defer sess.Close()
	root := sess.client.Dir()

	out := cmd.OutOrStdout()
	refresh := func(ctx context.Context, changed []string) {
		if len(changed) > 0 {
			fmt.Fprintf(out, "\n--- %s: %s\n", time.Now().Format(time.TimeOnly), strings.Join(changed, ", "))
		}
		result, err := sess.pipeline.Run(ctx, cmp)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error("analysis failed", "error", err)
			}
			return
		}
		if err := write(out, s.format, result); err != nil {
			s.logger.Error("render failed", "error", err)
		}
	}

	w, err := watch.New(root, s.cfg.Watch.Debounce, s.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	s.logger.Info("watching", "root", root, "dirs", w.WatchedCount(), "comparison", cmp.Key())
	refresh(ctx, nil)
	w.Start(ctx, refresh)

	<-ctx.Done()
	hits, misses := sess.analyzer.Stats()
	s.logger.Debug("watch stopped", "cache_hits", hits, "cache_misses", misses)
	return nil
}
