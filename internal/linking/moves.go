package linking

import (
	"slices"
	"strings"

	"github.com/agusespa/hunkgraph/internal/types"
)

// FindMovePairs pairs each deletion-only hunk with each addition-only hunk in
// a different file whose changed lines have the same content. Context lines
// are ignored. Pairs are sorted by source hunk, then destination hunk.
func FindMovePairs(hunks []types.Hunk) []types.MovePair {
	deletions := make(map[string][]types.Hunk)
	additions := make(map[string][]types.Hunk)

	for _, h := range hunks {
		switch added, removed := h.LineStats(); {
		case removed > 0 && added == 0:
			key := movedContent(h)
			deletions[key] = append(deletions[key], h)
		case added > 0 && removed == 0:
			key := movedContent(h)
			additions[key] = append(additions[key], h)
		}
	}

	pairs := []types.MovePair{}
	seen := make(map[[2]types.HunkID]bool)
	for key, sources := range deletions {
		for _, src := range sources {
			for _, dst := range additions[key] {
				if src.ID.File == dst.ID.File {
					continue
				}
				k := [2]types.HunkID{src.ID, dst.ID}
				if seen[k] {
					continue
				}
				seen[k] = true
				pairs = append(pairs, types.MovePair{
					SourceHunkID:   src.ID,
					DestHunkID:     dst.ID,
					SourceFilePath: src.FilePath,
					DestFilePath:   dst.FilePath,
				})
			}
		}
	}

	slices.SortFunc(pairs, func(a, b types.MovePair) int {
		if c := a.SourceHunkID.Compare(b.SourceHunkID); c != 0 {
			return c
		}
		return a.DestHunkID.Compare(b.DestHunkID)
	})
	return pairs
}

func movedContent(h types.Hunk) string {
	changed := h.ChangedLines()
	lines := make([]string, len(changed))
	for i, l := range changed {
		lines[i] = l.Content
	}
	return strings.Join(lines, "\n")
}
