package types

import (
	"cmp"
	"strconv"
	"strings"
)

// HunkID identifies a hunk by the file it belongs to and a per-file discriminator.
type HunkID struct {
	File string
	Key  string
}

// ParseHunkID splits a "path:key" string at its last colon. An ID without a
// colon is kept whole as the file so it never collides with another file.
func ParseHunkID(s string) HunkID {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return HunkID{File: s}
	}
	return HunkID{File: s[:i], Key: s[i+1:]}
}

func (id HunkID) String() string {
	if id.Key == "" {
		return id.File
	}
	return id.File + ":" + id.Key
}

func (id HunkID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *HunkID) UnmarshalText(text []byte) error {
	*id = ParseHunkID(string(text))
	return nil
}

// Compare orders hunk IDs by file, then key. Numeric keys compare by value
// and sort before non-numeric ones, so "a.go:2" precedes "a.go:10".
func (id HunkID) Compare(other HunkID) int {
	if c := strings.Compare(id.File, other.File); c != 0 {
		return c
	}
	a, aErr := strconv.Atoi(id.Key)
	b, bErr := strconv.Atoi(other.Key)
	switch {
	case aErr == nil && bErr == nil:
		if c := cmp.Compare(a, b); c != 0 {
			return c
		}
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(id.Key, other.Key)
}

// LineType classifies a diff line.
type LineType string

const (
	LineContext LineType = "context"
	LineAdded   LineType = "added"
	LineRemoved LineType = "removed"
)

// DiffLine is one line of a hunk with its position on each side.
type DiffLine struct {
	Type          LineType `json:"type"`
	Content       string   `json:"content"`
	OldLineNumber int      `json:"oldLineNumber,omitempty"`
	NewLineNumber int      `json:"newLineNumber,omitempty"`
}

// Hunk is a contiguous diff region within one file.
type Hunk struct {
	ID       HunkID     `json:"id"`
	FilePath string     `json:"filePath"`
	OldStart int        `json:"oldStart"`
	OldCount int        `json:"oldCount"`
	NewStart int        `json:"newStart"`
	NewCount int        `json:"newCount"`
	Lines    []DiffLine `json:"lines"`
}

// ChangedLines returns the added and removed lines in their original order.
func (h Hunk) ChangedLines() []DiffLine {
	var changed []DiffLine
	for _, l := range h.Lines {
		if l.Type != LineContext {
			changed = append(changed, l)
		}
	}
	return changed
}

// LineStats counts added and removed lines.
func (h Hunk) LineStats() (added, removed int) {
	for _, l := range h.Lines {
		switch l.Type {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		}
	}
	return added, removed
}

// OldRange returns the inclusive old-side line range, or false for pure additions.
func (h Hunk) OldRange() (LineRange, bool) {
	if h.OldCount == 0 {
		return LineRange{}, false
	}
	return LineRange{StartLine: h.OldStart, EndLine: h.OldStart + h.OldCount - 1}, true
}

// NewRange returns the inclusive new-side line range, or false for pure deletions.
func (h Hunk) NewRange() (LineRange, bool) {
	if h.NewCount == 0 {
		return LineRange{}, false
	}
	return LineRange{StartLine: h.NewStart, EndLine: h.NewStart + h.NewCount - 1}, true
}

// MovePair links a deletion-only hunk to an addition-only hunk in another
// file with the same changed content: code that moved between files.
type MovePair struct {
	SourceHunkID   HunkID `json:"sourceHunkId"`
	DestHunkID     HunkID `json:"destHunkId"`
	SourceFilePath string `json:"sourceFilePath"`
	DestFilePath   string `json:"destFilePath"`
}
