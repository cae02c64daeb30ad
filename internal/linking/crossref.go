package linking

import (
	"slices"

	"github.com/agusespa/hunkgraph/internal/types"
)

// BuildSymbolLinks connects hunks across files through shared symbol names.
//
// For every hunk that references a changed symbol, each hunk owning that
// symbol gets a pair of links: referencing hunk -> defining hunk marked
// RelDefines, and defining hunk -> referencing hunk marked RelReferences
// carrying the reference line numbers. Pairs in the same hunk, in the same
// file, or already listed in identical are skipped.
func BuildSymbolLinks(files []types.FileSymbolDiff, identical types.IdenticalHunkIndex) map[types.HunkID][]types.SymbolLinkedHunk {
	return buildSymbolLinks(files, BuildSymbolIndex(files), identical)
}

type hunkRef struct {
	symbolName  string
	lineNumbers []int
}

type linkKey struct {
	source, target types.HunkID
	symbol         string
}

func buildSymbolLinks(files []types.FileSymbolDiff, idx *SymbolIndex, identical types.IdenticalHunkIndex) map[types.HunkID][]types.SymbolLinkedHunk {
	refsByHunk := make(map[types.HunkID][]hunkRef)
	var hunkOrder []types.HunkID
	for i := range files {
		for _, ref := range files[i].SymbolReferences {
			if _, ok := refsByHunk[ref.HunkID]; !ok {
				hunkOrder = append(hunkOrder, ref.HunkID)
			}
			refsByHunk[ref.HunkID] = append(refsByHunk[ref.HunkID], hunkRef{
				symbolName:  ref.SymbolName,
				lineNumbers: ref.LineNumbers,
			})
		}
	}

	identicalPairs := make(map[[2]types.HunkID]struct{})
	for a, siblings := range identical {
		for _, b := range siblings {
			identicalPairs[[2]types.HunkID{a, b}] = struct{}{}
			identicalPairs[[2]types.HunkID{b, a}] = struct{}{}
		}
	}

	links := make(map[types.HunkID][]types.SymbolLinkedHunk)
	seen := make(map[linkKey]struct{})
	emit := func(source types.HunkID, link types.SymbolLinkedHunk) {
		key := linkKey{source: source, target: link.HunkID, symbol: link.SymbolName}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links[source] = append(links[source], link)
	}

	for _, refHunk := range hunkOrder {
		for _, ref := range refsByHunk[refHunk] {
			for _, defHunk := range idx.DefiningHunks(ref.symbolName) {
				if defHunk == refHunk {
					continue
				}
				if sameFile(defHunk, refHunk) {
					continue
				}
				if _, dup := identicalPairs[[2]types.HunkID{refHunk, defHunk}]; dup {
					continue
				}

				emit(refHunk, types.SymbolLinkedHunk{
					HunkID:       defHunk,
					SymbolName:   ref.symbolName,
					Relationship: types.RelDefines,
				})
				emit(defHunk, types.SymbolLinkedHunk{
					HunkID:               refHunk,
					SymbolName:           ref.symbolName,
					Relationship:         types.RelReferences,
					ReferenceLineNumbers: slices.Clone(ref.lineNumbers),
				})
			}
		}
	}

	return links
}

// sameFile compares the file portion of two hunk IDs. A key-less ID counts as
// its own file, so malformed IDs only match themselves.
func sameFile(a, b types.HunkID) bool {
	if a.Key == "" || b.Key == "" {
		return a == b
	}
	return a.File == b.File
}
