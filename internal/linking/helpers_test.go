package linking

import (
	"github.com/agusespa/hunkgraph/internal/types"
)

func hid(s string) types.HunkID {
	return types.ParseHunkID(s)
}

func fileDiff(path string, symbols []types.SymbolDiff, refs []types.SymbolReference) types.FileSymbolDiff {
	return types.FileSymbolDiff{
		FilePath:         path,
		HasGrammar:       true,
		Symbols:          symbols,
		SymbolReferences: refs,
	}
}

func symbol(name string, hunkIDs ...string) types.SymbolDiff {
	ids := make([]types.HunkID, 0, len(hunkIDs))
	for _, id := range hunkIDs {
		ids = append(ids, hid(id))
	}
	return types.SymbolDiff{
		Name:       name,
		ChangeType: types.ChangeModified,
		HunkIDs:    ids,
	}
}

func ref(name, hunkID string, lines ...int) types.SymbolReference {
	return types.SymbolReference{
		SymbolName:  name,
		HunkID:      hid(hunkID),
		LineNumbers: lines,
	}
}

func hunk(id string, lines ...types.DiffLine) types.Hunk {
	h := hid(id)
	return types.Hunk{ID: h, FilePath: h.File, Lines: lines}
}

func added(content string) types.DiffLine {
	return types.DiffLine{Type: types.LineAdded, Content: content}
}

func removed(content string) types.DiffLine {
	return types.DiffLine{Type: types.LineRemoved, Content: content}
}

func contextLine(content string) types.DiffLine {
	return types.DiffLine{Type: types.LineContext, Content: content}
}
