package symbols

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agusespa/hunkgraph/internal/types"
)

// summarize flattens a symbol tree into "parent/kind name start-end" lines.
func summarize(symbols []types.Symbol) []string {
	var out []string
	var walk func(prefix string, syms []types.Symbol)
	walk = func(prefix string, syms []types.Symbol) {
		for _, s := range syms {
			out = append(out, fmt.Sprintf("%s%s %s %d-%d", prefix, s.Kind, s.Name, s.StartLine, s.EndLine))
			walk(prefix+s.Name+"/", s.Children)
		}
	}
	walk("", symbols)
	return out
}

func parseWith(t *testing.T, newParser func() (*TreeSitterParser, error), path, src string) []types.Symbol {
	t.Helper()
	p, err := newParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)

	symbols, err := p.ParseFile(path, []byte(src))
	require.NoError(t, err)
	return symbols
}

func addedHunk(file string, seq string, newStart int, lines ...string) types.Hunk {
	h := types.Hunk{
		ID:       types.HunkID{File: file, Key: seq},
		FilePath: file,
		NewStart: newStart,
		NewCount: len(lines),
	}
	for i, l := range lines {
		h.Lines = append(h.Lines, types.DiffLine{Type: types.LineAdded, Content: l, NewLineNumber: newStart + i})
	}
	return h
}

func removedHunk(file string, seq string, oldStart int, lines ...string) types.Hunk {
	h := types.Hunk{
		ID:       types.HunkID{File: file, Key: seq},
		FilePath: file,
		OldStart: oldStart,
		OldCount: len(lines),
	}
	for i, l := range lines {
		h.Lines = append(h.Lines, types.DiffLine{Type: types.LineRemoved, Content: l, OldLineNumber: oldStart + i})
	}
	return h
}
