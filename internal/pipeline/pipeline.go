// Package pipeline turns a git comparison into symbol diffs, references and
// the linking analysis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/agusespa/hunkgraph/internal/diff"
	"github.com/agusespa/hunkgraph/internal/git"
	"github.com/agusespa/hunkgraph/internal/linking"
	"github.com/agusespa/hunkgraph/internal/symbols"
	"github.com/agusespa/hunkgraph/internal/types"
)

// Source supplies the diff and both versions of each changed file.
// *git.Client satisfies it.
type Source interface {
	Diff(ctx context.Context, cmp git.Comparison) (string, error)
	OldContent(ctx context.Context, cmp git.Comparison, path string) ([]byte, error)
	NewContent(ctx context.Context, cmp git.Comparison, path string) ([]byte, error)
}

// Options tunes a Pipeline. Zero values pick defaults.
type Options struct {
	Workers int
	Exclude []string
	Logger  *slog.Logger
}

// Result is everything one run produced.
type Result struct {
	Comparison string                 `json:"comparison"`
	Files      []types.FileSymbolDiff `json:"files"`
	Hunks      []types.Hunk           `json:"hunks"`
	Analysis   *linking.Analysis      `json:"analysis"`
}

// Pipeline runs comparisons against a Source. It is safe for concurrent use.
type Pipeline struct {
	source   Source
	analyzer *linking.Analyzer
	exclude  []string
	workers  int
	logger   *slog.Logger
	pool     *registryPool
}

// New returns a pipeline reading from source and analysing with analyzer.
func New(source Source, analyzer *linking.Analyzer, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   source,
		analyzer: analyzer,
		exclude:  opts.Exclude,
		workers:  workers,
		logger:   logger,
		pool:     newRegistryPool(),
	}
}

// Close releases the tree-sitter parsers held by the pipeline.
func (p *Pipeline) Close() {
	p.pool.close()
}

// Run diffs cmp and analyses the result. Only a failure to obtain or parse
// the diff fails the run; per-file problems degrade that file to hunks
// without symbols.
func (p *Pipeline) Run(ctx context.Context, cmp git.Comparison) (*Result, error) {
	diffText, err := p.source.Diff(ctx, cmp)
	if err != nil {
		return nil, err
	}

	hunks, err := diff.ParseMultiFileDiff(diffText)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("diff parsed", "comparison", cmp.Key(), "hunks", len(hunks))
	return p.RunHunks(ctx, cmp, hunks)
}

// fileState is what pass one learned about a file and pass two needs.
type fileState struct {
	path       string
	hunks      []types.Hunk
	oldContent []byte
	newContent []byte
}

// RunHunks analyses already parsed hunks, fetching file contents for cmp.
func (p *Pipeline) RunHunks(ctx context.Context, cmp git.Comparison, hunks []types.Hunk) (*Result, error) {
	byFile, order := diff.GroupByFile(hunks)

	states := make([]fileState, len(order))
	files := make([]types.FileSymbolDiff, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range order {
		g.Go(func() error {
			state, fsd, err := p.diffFile(gctx, cmp, path, byFile[path])
			if err != nil {
				return err
			}
			states[i] = state
			files[i] = fsd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets := symbols.ChangedNames(files)
	if len(targets) > 0 {
		g, gctx = errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i := range files {
			if !files[i].HasGrammar {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				refs, err := p.findReferences(states[i], files[i], targets)
				if err != nil {
					p.logger.Warn("reference search failed", "file", states[i].path, "error", err)
					return nil
				}
				files[i].SymbolReferences = refs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	analysis, err := p.analyzer.Analyze(files, hunks)
	if err != nil {
		return nil, err
	}

	return &Result{
		Comparison: cmp.Key(),
		Files:      files,
		Hunks:      hunks,
		Analysis:   analysis,
	}, nil
}

func (p *Pipeline) diffFile(ctx context.Context, cmp git.Comparison, path string, hunks []types.Hunk) (fileState, types.FileSymbolDiff, error) {
	state := fileState{path: path, hunks: hunks}

	if p.Excluded(path) {
		p.logger.Debug("file excluded", "file", path)
		return state, symbols.NoGrammar(path, hunks), nil
	}

	reg, err := p.pool.get()
	if err != nil {
		return state, types.FileSymbolDiff{}, err
	}
	defer p.pool.put(reg)

	if !reg.HasGrammar(path) {
		return state, symbols.NoGrammar(path, hunks), nil
	}

	created, deleted := fileLifecycle(hunks)
	if !created {
		state.oldContent, err = p.readSide(path, func() ([]byte, error) {
			return p.source.OldContent(ctx, cmp, path)
		})
		if err != nil {
			return p.degrade(ctx, state, err)
		}
	}
	if !deleted {
		state.newContent, err = p.readSide(path, func() ([]byte, error) {
			return p.source.NewContent(ctx, cmp, path)
		})
		if err != nil {
			return p.degrade(ctx, state, err)
		}
	}

	fsd, err := reg.DiffFile(path, state.oldContent, state.newContent, hunks)
	if err != nil {
		return p.degrade(ctx, state, err)
	}
	return state, fsd, nil
}

// readSide treats a missing blob as an absent side.
func (p *Pipeline) readSide(path string, read func() ([]byte, error)) ([]byte, error) {
	content, err := read()
	if errors.Is(err, git.ErrNotFound) {
		p.logger.Debug("file absent on one side", "file", path)
		return nil, nil
	}
	return content, err
}

func (p *Pipeline) degrade(ctx context.Context, state fileState, err error) (fileState, types.FileSymbolDiff, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return state, types.FileSymbolDiff{}, ctxErr
	}
	p.logger.Warn("symbol extraction failed, keeping hunks only", "file", state.path, "error", err)
	state.oldContent, state.newContent = nil, nil
	return state, symbols.NoGrammar(state.path, state.hunks), nil
}

// findReferences searches the new content first, then the old content for
// pairs the new side did not produce.
func (p *Pipeline) findReferences(state fileState, file types.FileSymbolDiff, targets map[string]bool) ([]types.SymbolReference, error) {
	reg, err := p.pool.get()
	if err != nil {
		return nil, err
	}
	defer p.pool.put(reg)

	newRefs, err := reg.FindReferences(state.path, state.newContent, state.hunks, targets, symbols.DefinitionRanges(file, true), true)
	if err != nil {
		return nil, err
	}
	oldRefs, err := reg.FindReferences(state.path, state.oldContent, state.hunks, targets, symbols.DefinitionRanges(file, false), false)
	if err != nil {
		return nil, err
	}
	return symbols.MergeReferences(newRefs, oldRefs), nil
}

// Excluded reports whether path matches one of the exclude globs.
func (p *Pipeline) Excluded(path string) bool {
	for _, pattern := range p.exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// fileLifecycle detects created and deleted files from their hunk headers.
func fileLifecycle(hunks []types.Hunk) (created, deleted bool) {
	if len(hunks) == 0 {
		return false, false
	}
	created, deleted = true, true
	for _, h := range hunks {
		if h.OldStart != 0 || h.OldCount != 0 {
			created = false
		}
		if h.NewStart != 0 || h.NewCount != 0 {
			deleted = false
		}
	}
	return created, deleted
}

// registryPool hands out parser registries so that no two goroutines share
// tree-sitter state. Registries are reused across runs.
type registryPool struct {
	mu   sync.Mutex
	free []*symbols.ParserRegistry
	all  []*symbols.ParserRegistry
}

func newRegistryPool() *registryPool {
	return &registryPool{}
}

func (rp *registryPool) get() (*symbols.ParserRegistry, error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if n := len(rp.free); n > 0 {
		reg := rp.free[n-1]
		rp.free = rp.free[:n-1]
		return reg, nil
	}

	reg, err := symbols.NewParserRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to create parsers: %w", err)
	}
	rp.all = append(rp.all, reg)
	return reg, nil
}

func (rp *registryPool) put(reg *symbols.ParserRegistry) {
	rp.mu.Lock()
	rp.free = append(rp.free, reg)
	rp.mu.Unlock()
}

func (rp *registryPool) close() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	for _, reg := range rp.all {
		reg.Close()
	}
	rp.all, rp.free = nil, nil
}
