package diff

import (
	"fmt"
	"strconv"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/agusespa/hunkgraph/internal/types"
)

const devNull = "/dev/null"

// ParseMultiFileDiff parses `git diff` output covering any number of files.
// Hunks are returned in diff order and identified by file path plus their
// position within that file.
func ParseMultiFileDiff(diffText string) ([]types.Hunk, error) {
	if strings.TrimSpace(diffText) == "" {
		return []types.Hunk{}, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	var hunks []types.Hunk
	for _, fd := range fileDiffs {
		path := FilePath(fd)
		if path == "" {
			continue
		}
		hunks = append(hunks, convertHunks(path, fd.Hunks)...)
	}
	return hunks, nil
}

// ParseFileDiff parses the hunks of a single file's diff, with or without headers.
func ParseFileDiff(filePath, diffText string) ([]types.Hunk, error) {
	if strings.TrimSpace(diffText) == "" {
		return []types.Hunk{}, nil
	}

	if strings.HasPrefix(diffText, "@@") {
		parsed, err := godiff.ParseHunks([]byte(diffText))
		if err != nil {
			return nil, fmt.Errorf("failed to parse hunks for %s: %w", filePath, err)
		}
		return convertHunks(filePath, parsed), nil
	}

	fd, err := godiff.ParseFileDiff([]byte(diffText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff for %s: %w", filePath, err)
	}
	return convertHunks(filePath, fd.Hunks), nil
}

// FilePath picks the path a file diff should be reported under: the new name,
// or the old one for deletions.
func FilePath(fd *godiff.FileDiff) string {
	newName := cleanPath(fd.NewName)
	if newName != "" && newName != devNull {
		return newName
	}
	oldName := cleanPath(fd.OrigName)
	if oldName == devNull {
		return ""
	}
	return oldName
}

func convertHunks(filePath string, parsed []*godiff.Hunk) []types.Hunk {
	hunks := make([]types.Hunk, 0, len(parsed))
	for i, h := range parsed {
		hunks = append(hunks, convertHunk(filePath, i, h))
	}
	return hunks
}

func convertHunk(filePath string, seq int, h *godiff.Hunk) types.Hunk {
	hunk := types.Hunk{
		ID:       types.HunkID{File: filePath, Key: strconv.Itoa(seq)},
		FilePath: filePath,
		OldStart: int(h.OrigStartLine),
		OldCount: int(h.OrigLines),
		NewStart: int(h.NewStartLine),
		NewCount: int(h.NewLines),
	}

	oldLine := hunk.OldStart
	newLine := hunk.NewStart

	body := strings.TrimSuffix(string(h.Body), "\n")
	if body == "" {
		return hunk
	}

	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			// some tools strip the leading space from blank context lines
			hunk.Lines = append(hunk.Lines, types.DiffLine{
				Type:          types.LineContext,
				OldLineNumber: oldLine,
				NewLineNumber: newLine,
			})
			oldLine++
			newLine++
			continue
		}

		switch line[0] {
		case '+':
			hunk.Lines = append(hunk.Lines, types.DiffLine{
				Type:          types.LineAdded,
				Content:       line[1:],
				NewLineNumber: newLine,
			})
			newLine++
		case '-':
			hunk.Lines = append(hunk.Lines, types.DiffLine{
				Type:          types.LineRemoved,
				Content:       line[1:],
				OldLineNumber: oldLine,
			})
			oldLine++
		case ' ':
			hunk.Lines = append(hunk.Lines, types.DiffLine{
				Type:          types.LineContext,
				Content:       line[1:],
				OldLineNumber: oldLine,
				NewLineNumber: newLine,
			})
			oldLine++
			newLine++
		case '\\':
			// "\ No newline at end of file"
		}
	}

	return hunk
}

func cleanPath(path string) string {
	if path == "" || path == devNull {
		return path
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

// GroupByFile splits hunks per file, keeping diff order within each file.
func GroupByFile(hunks []types.Hunk) (map[string][]types.Hunk, []string) {
	byFile := make(map[string][]types.Hunk)
	var order []string
	for _, h := range hunks {
		if _, ok := byFile[h.FilePath]; !ok {
			order = append(order, h.FilePath)
		}
		byFile[h.FilePath] = append(byFile[h.FilePath], h)
	}
	return byFile, order
}
