package linking

import (
	"slices"
	"sort"

	"github.com/agusespa/hunkgraph/internal/types"
)

// SymbolIndex maps changed symbol names to where they are defined.
//
// Names are the only identity: two unrelated symbols that share a name in
// different files land in the same entry.
type SymbolIndex struct {
	filesBySymbol map[string]map[string]struct{}
	hunksBySymbol map[string][]types.HunkID
}

// BuildSymbolIndex walks every file's symbol forest, parents before children.
func BuildSymbolIndex(files []types.FileSymbolDiff) *SymbolIndex {
	idx := &SymbolIndex{
		filesBySymbol: make(map[string]map[string]struct{}),
		hunksBySymbol: make(map[string][]types.HunkID),
	}
	for i := range files {
		idx.collect(files[i].Symbols, files[i].FilePath)
	}
	return idx
}

func (idx *SymbolIndex) collect(symbols []types.SymbolDiff, filePath string) {
	for i := range symbols {
		sym := &symbols[i]

		fileSet := idx.filesBySymbol[sym.Name]
		if fileSet == nil {
			fileSet = make(map[string]struct{})
			idx.filesBySymbol[sym.Name] = fileSet
		}
		fileSet[filePath] = struct{}{}

		for _, id := range sym.HunkIDs {
			if !slices.Contains(idx.hunksBySymbol[sym.Name], id) {
				idx.hunksBySymbol[sym.Name] = append(idx.hunksBySymbol[sym.Name], id)
			}
		}

		idx.collect(sym.Children, filePath)
	}
}

// DefiningFiles returns the sorted paths of files whose symbol tree contains name.
func (idx *SymbolIndex) DefiningFiles(name string) []string {
	set := idx.filesBySymbol[name]
	if len(set) == 0 {
		return nil
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// DefiningHunks returns the hunks owned by any symbol named name, in first-seen order.
func (idx *SymbolIndex) DefiningHunks(name string) []types.HunkID {
	return idx.hunksBySymbol[name]
}
