package symbols

import (
	"slices"
	"sort"

	"github.com/agusespa/hunkgraph/internal/types"
)

// FindReferences reports, per hunk, the changed lines of content that mention
// one of targets. With newSide the added lines are checked against the new
// content, otherwise the removed lines against the old content. Mentions that
// fall inside one of exclude[name], the symbol's own definition, are ignored.
func FindReferences(parser LanguageParser, content []byte, hunks []types.Hunk, targets map[string]bool, exclude map[string][]types.LineRange, newSide bool) ([]types.SymbolReference, error) {
	lineHunk := changedLineIndex(hunks, newSide)
	if len(lineHunk) == 0 || len(targets) == 0 {
		return nil, nil
	}

	ids, err := parser.FindIdentifiers(content)
	if err != nil {
		return nil, err
	}

	type refKey struct {
		hunk int
		name string
	}
	lines := make(map[refKey][]int)
	var keys []refKey

	for _, id := range ids {
		if !targets[id.Name] {
			continue
		}
		hunkIdx, ok := lineHunk[id.Line]
		if !ok || withinAny(exclude[id.Name], id.Line) {
			continue
		}
		k := refKey{hunk: hunkIdx, name: id.Name}
		if _, seen := lines[k]; !seen {
			keys = append(keys, k)
		}
		if !slices.Contains(lines[k], id.Line) {
			lines[k] = append(lines[k], id.Line)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].hunk != keys[j].hunk {
			return keys[i].hunk < keys[j].hunk
		}
		return keys[i].name < keys[j].name
	})

	refs := make([]types.SymbolReference, 0, len(keys))
	for _, k := range keys {
		lineNumbers := lines[k]
		slices.Sort(lineNumbers)
		refs = append(refs, types.SymbolReference{
			SymbolName:  k.name,
			HunkID:      hunks[k.hunk].ID,
			LineNumbers: lineNumbers,
		})
	}
	return refs, nil
}

func changedLineIndex(hunks []types.Hunk, newSide bool) map[int]int {
	index := make(map[int]int)
	for i, h := range hunks {
		for _, l := range h.Lines {
			switch {
			case newSide && l.Type == types.LineAdded:
				index[l.NewLineNumber] = i
			case !newSide && l.Type == types.LineRemoved:
				index[l.OldLineNumber] = i
			}
		}
	}
	return index
}

func withinAny(ranges []types.LineRange, line int) bool {
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// MergeReferences appends the secondary references whose (symbol, hunk) pair
// is not already present in primary.
func MergeReferences(primary, secondary []types.SymbolReference) []types.SymbolReference {
	type refKey struct {
		name string
		hunk types.HunkID
	}
	seen := make(map[refKey]bool, len(primary))
	merged := make([]types.SymbolReference, 0, len(primary)+len(secondary))
	for _, r := range primary {
		seen[refKey{r.SymbolName, r.HunkID}] = true
		merged = append(merged, r)
	}
	for _, r := range secondary {
		k := refKey{r.SymbolName, r.HunkID}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, r)
	}
	return merged
}
