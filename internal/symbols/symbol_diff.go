package symbols

import (
	"github.com/agusespa/hunkgraph/internal/types"
)

// DiffSymbols compares the declarations of two versions of filePath. Symbols
// are matched by name and kind; a matched pair is reported as modified when a
// hunk overlaps either version or one of its children changed. Hunks that
// touch no symbol are reported as top-level.
func DiffSymbols(filePath string, oldSymbols, newSymbols []types.Symbol, hunks []types.Hunk) types.FileSymbolDiff {
	fileHunks := hunksForFile(filePath, hunks)
	consumed := make(map[types.HunkID]bool)

	symbols := diffSymbolLists(oldSymbols, newSymbols, fileHunks, consumed)

	topLevel := []types.HunkID{}
	for _, h := range fileHunks {
		if !consumed[h.ID] {
			topLevel = append(topLevel, h.ID)
		}
	}

	return types.FileSymbolDiff{
		FilePath:         filePath,
		HasGrammar:       true,
		Symbols:          symbols,
		TopLevelHunkIDs:  topLevel,
		SymbolReferences: []types.SymbolReference{},
	}
}

// NoGrammar is the symbol view of a file that could not be analysed: every
// hunk is top-level.
func NoGrammar(filePath string, hunks []types.Hunk) types.FileSymbolDiff {
	topLevel := []types.HunkID{}
	for _, h := range hunksForFile(filePath, hunks) {
		topLevel = append(topLevel, h.ID)
	}
	return types.FileSymbolDiff{
		FilePath:         filePath,
		HasGrammar:       false,
		Symbols:          []types.SymbolDiff{},
		TopLevelHunkIDs:  topLevel,
		SymbolReferences: []types.SymbolReference{},
	}
}

func hunksForFile(filePath string, hunks []types.Hunk) []types.Hunk {
	var out []types.Hunk
	for _, h := range hunks {
		if h.FilePath == filePath {
			out = append(out, h)
		}
	}
	return out
}

type symbolKey struct {
	name string
	kind types.SymbolKind
}

func keyOf(s types.Symbol) symbolKey {
	return symbolKey{name: s.Name, kind: s.Kind}
}

// diffSymbolLists emits modified symbols in new order, then added, then
// removed. Repeated keys pair up in declaration order.
func diffSymbolLists(oldSymbols, newSymbols []types.Symbol, hunks []types.Hunk, consumed map[types.HunkID]bool) []types.SymbolDiff {
	pending := make(map[symbolKey][]int)
	for i, s := range oldSymbols {
		k := keyOf(s)
		pending[k] = append(pending[k], i)
	}
	usedOld := make([]bool, len(oldSymbols))

	result := []types.SymbolDiff{}
	var added []types.SymbolDiff

	for _, ns := range newSymbols {
		k := keyOf(ns)
		queue := pending[k]
		if len(queue) == 0 {
			if d, ok := wholeSymbolDiff(ns, types.ChangeAdded, hunks, consumed); ok {
				added = append(added, d)
			}
			continue
		}

		i := queue[0]
		pending[k] = queue[1:]
		usedOld[i] = true
		prev := oldSymbols[i]

		oldRange, newRange := prev.Range(), ns.Range()
		var ids []types.HunkID
		for _, h := range hunks {
			if overlapsOld(h, oldRange) || overlapsNew(h, newRange) {
				ids = append(ids, h.ID)
			}
		}
		children := diffSymbolLists(prev.Children, ns.Children, hunks, consumed)
		if len(ids) == 0 && len(children) == 0 {
			continue
		}
		for _, id := range ids {
			consumed[id] = true
		}

		result = append(result, types.SymbolDiff{
			Name:       ns.Name,
			Kind:       types.KindPtr(ns.Kind),
			ChangeType: types.ChangeModified,
			HunkIDs:    nonNilIDs(ids),
			Children:   children,
			OldRange:   &oldRange,
			NewRange:   &newRange,
		})
	}
	result = append(result, added...)

	for i, prev := range oldSymbols {
		if usedOld[i] {
			continue
		}
		if d, ok := wholeSymbolDiff(prev, types.ChangeRemoved, hunks, consumed); ok {
			result = append(result, d)
		}
	}

	return result
}

// wholeSymbolDiff reports a symbol that exists on one side only, together
// with its children.
func wholeSymbolDiff(sym types.Symbol, change types.ChangeType, hunks []types.Hunk, consumed map[types.HunkID]bool) (types.SymbolDiff, bool) {
	r := sym.Range()
	overlaps := overlapsNew
	if change == types.ChangeRemoved {
		overlaps = overlapsOld
	}

	var ids []types.HunkID
	for _, h := range hunks {
		if overlaps(h, r) {
			ids = append(ids, h.ID)
		}
	}

	children := []types.SymbolDiff{}
	for _, child := range sym.Children {
		if d, ok := wholeSymbolDiff(child, change, hunks, consumed); ok {
			children = append(children, d)
		}
	}

	if len(ids) == 0 && len(children) == 0 {
		return types.SymbolDiff{}, false
	}
	for _, id := range ids {
		consumed[id] = true
	}

	d := types.SymbolDiff{
		Name:       sym.Name,
		Kind:       types.KindPtr(sym.Kind),
		ChangeType: change,
		HunkIDs:    nonNilIDs(ids),
		Children:   children,
	}
	if change == types.ChangeRemoved {
		d.OldRange = &r
	} else {
		d.NewRange = &r
	}
	return d, true
}

func overlapsOld(h types.Hunk, r types.LineRange) bool {
	hr, ok := h.OldRange()
	return ok && hr.Overlaps(r)
}

func overlapsNew(h types.Hunk, r types.LineRange) bool {
	hr, ok := h.NewRange()
	return ok && hr.Overlaps(r)
}

func nonNilIDs(ids []types.HunkID) []types.HunkID {
	if ids == nil {
		return []types.HunkID{}
	}
	return ids
}

// ChangedNames collects the names of every changed symbol, children included.
func ChangedNames(files []types.FileSymbolDiff) map[string]bool {
	names := make(map[string]bool)
	var walk func([]types.SymbolDiff)
	walk = func(diffs []types.SymbolDiff) {
		for _, d := range diffs {
			names[d.Name] = true
			walk(d.Children)
		}
	}
	for _, f := range files {
		walk(f.Symbols)
	}
	return names
}

// DefinitionRanges maps each changed symbol of a file to where it is defined
// on the new side (newSide) or the old side.
func DefinitionRanges(file types.FileSymbolDiff, newSide bool) map[string][]types.LineRange {
	ranges := make(map[string][]types.LineRange)
	var walk func([]types.SymbolDiff)
	walk = func(diffs []types.SymbolDiff) {
		for _, d := range diffs {
			r := d.OldRange
			if newSide {
				r = d.NewRange
			}
			if r != nil {
				ranges[d.Name] = append(ranges[d.Name], *r)
			}
			walk(d.Children)
		}
	}
	walk(file.Symbols)
	return ranges
}
