package pipeline

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/agusespa/hunkgraph/internal/types"
)

// MaxDefinitionCandidates bounds how many files a definition lookup parses.
const MaxDefinitionCandidates = 50

// DefinitionSource finds files mentioning a name and reads them from the
// working tree. *git.Client satisfies it.
type DefinitionSource interface {
	GrepFiles(ctx context.Context, text string) ([]string, error)
	ReadWorkingFile(path string) ([]byte, error)
}

// FindDefinitions looks up declarations named name across the repository.
// Candidates come from a fixed-string search, are narrowed to files with a
// grammar and capped at MaxDefinitionCandidates. Unreadable or unparsable
// files are skipped.
func (p *Pipeline) FindDefinitions(ctx context.Context, src DefinitionSource, name string) ([]types.SymbolDefinition, error) {
	found, err := src.GrepFiles(ctx, name)
	if err != nil {
		return nil, err
	}

	reg, err := p.pool.get()
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, path := range found {
		if len(candidates) == MaxDefinitionCandidates {
			break
		}
		if reg.HasGrammar(path) && !p.Excluded(path) {
			candidates = append(candidates, path)
		}
	}
	p.pool.put(reg)

	p.logger.Debug("definition candidates", "name", name, "matched", len(found), "parsed", len(candidates))

	results := make([][]types.SymbolDefinition, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := src.ReadWorkingFile(path)
			if err != nil {
				p.logger.Debug("definition candidate unreadable", "file", path, "error", err)
				return nil
			}

			reg, err := p.pool.get()
			if err != nil {
				return err
			}
			defer p.pool.put(reg)

			defs, err := reg.FindDefinitions(path, content, name)
			if err != nil {
				p.logger.Warn("definition lookup failed", "file", path, "error", err)
				return nil
			}
			results[i] = defs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	defs := []types.SymbolDefinition{}
	for _, r := range results {
		defs = append(defs, r...)
	}
	slices.SortStableFunc(defs, func(a, b types.SymbolDefinition) int {
		if a.FilePath != b.FilePath {
			if a.FilePath < b.FilePath {
				return -1
			}
			return 1
		}
		return a.StartLine - b.StartLine
	})
	return defs, nil
}
