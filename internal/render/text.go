package render

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agusespa/hunkgraph/internal/types"
)

// WriteGraphText prints each cluster with its files and the edges inside it.
func WriteGraphText(w io.Writer, graph types.DependencyGraph) error {
	bw := bufio.NewWriter(w)

	fileCount := 0
	for _, c := range graph.Clusters {
		fileCount += len(c.Files)
	}
	fmt.Fprintf(bw, "%s in %s, %s\n",
		plural(fileCount, "file", "files"),
		plural(len(graph.Clusters), "cluster", "clusters"),
		plural(len(graph.Edges), "edge", "edges"))

	for i, c := range graph.Clusters {
		fmt.Fprintf(bw, "\ncluster %d (%s)\n", i+1, plural(len(c.Files), "file", "files"))
		for _, f := range c.Files {
			fmt.Fprintf(bw, "  %s\n", f)
		}
		for _, e := range c.Edges {
			fmt.Fprintf(bw, "  %s -> %s [%s]\n", e.DefinesFile, e.ReferencesFile, strings.Join(e.Symbols, ", "))
		}
	}

	return bw.Flush()
}

// WriteLinksText prints, per hunk, the hunks it is linked to.
func WriteLinksText(w io.Writer, links map[types.HunkID][]types.SymbolLinkedHunk) error {
	bw := bufio.NewWriter(w)

	if len(links) == 0 {
		fmt.Fprintln(bw, "no linked hunks")
		return bw.Flush()
	}

	for _, id := range sortedIDs(links) {
		fmt.Fprintln(bw, id)
		for _, link := range links[id] {
			fmt.Fprintf(bw, "  %-10s %s  %s", link.Relationship, link.HunkID, link.SymbolName)
			if len(link.ReferenceLineNumbers) > 0 {
				fmt.Fprintf(bw, " (lines %s)", joinInts(link.ReferenceLineNumbers))
			}
			fmt.Fprintln(bw)
		}
	}

	return bw.Flush()
}

// WriteIdenticalText prints each group of identical hunks once.
func WriteIdenticalText(w io.Writer, identical types.IdenticalHunkIndex) error {
	bw := bufio.NewWriter(w)

	seen := make(map[types.HunkID]bool)
	groups := 0
	for _, id := range sortedIDs(identical) {
		if seen[id] {
			continue
		}
		group := append([]types.HunkID{id}, identical[id]...)
		slices.SortFunc(group, types.HunkID.Compare)
		group = slices.Compact(group)
		for _, member := range group {
			seen[member] = true
		}

		groups++
		names := make([]string, len(group))
		for i, member := range group {
			names[i] = member.String()
		}
		fmt.Fprintf(bw, "%s identical: %s\n", plural(len(group), "hunk", "hunks"), strings.Join(names, ", "))
	}

	if groups == 0 {
		fmt.Fprintln(bw, "no identical hunks")
	}
	return bw.Flush()
}

// WriteMovesText prints one line per moved hunk, source first.
func WriteMovesText(w io.Writer, moves []types.MovePair) error {
	bw := bufio.NewWriter(w)

	if len(moves) == 0 {
		fmt.Fprintln(bw, "no moved hunks")
		return bw.Flush()
	}
	for _, m := range moves {
		fmt.Fprintf(bw, "%s -> %s\n", m.SourceHunkID, m.DestHunkID)
	}
	return bw.Flush()
}

// WriteDefinitionsText prints one line per definition as path:start-end.
func WriteDefinitionsText(w io.Writer, defs []types.SymbolDefinition) error {
	bw := bufio.NewWriter(w)

	if len(defs) == 0 {
		fmt.Fprintln(bw, "no definitions found")
		return bw.Flush()
	}
	for _, d := range defs {
		fmt.Fprintf(bw, "%s:%d-%d  %s %s\n", d.FilePath, d.StartLine, d.EndLine, d.Kind, d.Name)
	}
	return bw.Flush()
}

// WriteSymbolsText lists each file's changed symbols with the lines their
// hunks add and remove.
func WriteSymbolsText(w io.Writer, files []types.FileSymbolDiff, hunks []types.Hunk) error {
	bw := bufio.NewWriter(w)

	byID := make(map[types.HunkID]types.Hunk, len(hunks))
	for _, h := range hunks {
		byID[h.ID] = h
	}

	for _, f := range files {
		if f.HasGrammar {
			fmt.Fprintln(bw, f.FilePath)
		} else {
			fmt.Fprintf(bw, "%s (no grammar)\n", f.FilePath)
		}
		writeSymbolDiffs(bw, f.Symbols, byID, 1)
		for _, id := range f.TopLevelHunkIDs {
			added, removed := lineStats([]types.HunkID{id}, byID)
			fmt.Fprintf(bw, "  top-level %s  +%d -%d\n", id, added, removed)
		}
		for _, ref := range f.SymbolReferences {
			fmt.Fprintf(bw, "  uses %s in %s (lines %s)\n", ref.SymbolName, ref.HunkID, joinInts(ref.LineNumbers))
		}
	}

	return bw.Flush()
}

func writeSymbolDiffs(w io.Writer, diffs []types.SymbolDiff, byID map[types.HunkID]types.Hunk, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, d := range diffs {
		kind := "symbol"
		if d.Kind != nil {
			kind = string(*d.Kind)
		}
		added, removed := lineStats(d.HunkIDs, byID)
		fmt.Fprintf(w, "%s%s %s %s  +%d -%d\n", indent, changeMarker(d.ChangeType), kind, d.Name, added, removed)
		writeSymbolDiffs(w, d.Children, byID, depth+1)
	}
}

func changeMarker(c types.ChangeType) string {
	switch c {
	case types.ChangeAdded:
		return "+"
	case types.ChangeRemoved:
		return "-"
	default:
		return "~"
	}
}

func lineStats(ids []types.HunkID, byID map[types.HunkID]types.Hunk) (added, removed int) {
	for _, id := range ids {
		a, r := byID[id].LineStats()
		added += a
		removed += r
	}
	return added, removed
}

func sortedIDs[V any](m map[types.HunkID]V) []types.HunkID {
	ids := make([]types.HunkID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, types.HunkID.Compare)
	return ids
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
