// Package linking builds the cross-file symbol dependency graph and the
// hunk-to-hunk navigation links of a change set.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// goroutines, no shared state. Callers that recompute often should go through
// Analyzer, which memoizes results by input content.
package linking

import (
	"slices"
	"strings"

	"github.com/agusespa/hunkgraph/internal/types"
)

// FindIdenticalHunks groups hunks whose changed lines match exactly in type,
// content and order. Context lines are ignored. Only groups of two or more
// hunks appear in the result, and each hunk maps to its siblings in input order.
func FindIdenticalHunks(hunks []types.Hunk) types.IdenticalHunkIndex {
	groups := make(map[string][]types.HunkID)
	var order []string

	for _, h := range hunks {
		key := changeKey(h)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		if !slices.Contains(groups[key], h.ID) {
			groups[key] = append(groups[key], h.ID)
		}
	}

	index := make(types.IdenticalHunkIndex)
	for _, key := range order {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}
		for i, id := range ids {
			siblings := make([]types.HunkID, 0, len(ids)-1)
			for j, other := range ids {
				if i != j {
					siblings = append(siblings, other)
				}
			}
			index[id] = append(index[id], siblings...)
		}
	}
	return index
}

func changeKey(h types.Hunk) string {
	var b strings.Builder
	for _, l := range h.ChangedLines() {
		b.WriteString(string(l.Type))
		b.WriteByte(':')
		b.WriteString(l.Content)
	}
	return b.String()
}
