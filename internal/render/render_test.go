package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/hunkgraph/internal/types"
)

func sampleGraph() types.DependencyGraph {
	edge := types.SymbolEdge{DefinesFile: "a.ts", ReferencesFile: "b.ts", Symbols: []string{"bar", "foo"}}
	return types.DependencyGraph{
		Edges: []types.SymbolEdge{edge},
		Clusters: []types.FileCluster{
			{Files: []string{"a.ts", "b.ts"}, Edges: []types.SymbolEdge{edge}},
			{Files: []string{"README.md"}, Edges: []types.SymbolEdge{}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" dot ", FormatDOT, false},
		{"", FormatText, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestWriteGraphText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGraphText(&buf, sampleGraph()))

	expected := `3 files in 2 clusters, 1 edge

cluster 1 (2 files)
  a.ts
  b.ts
  a.ts -> b.ts [bar, foo]

cluster 2 (1 file)
  README.md
`
	assert.Equal(t, expected, buf.String())
}

func TestWriteLinksText(t *testing.T) {
	links := map[types.HunkID][]types.SymbolLinkedHunk{
		types.ParseHunkID("b.ts:0"): {
			{HunkID: types.ParseHunkID("a.ts:0"), SymbolName: "foo", Relationship: types.RelDefines},
		},
		types.ParseHunkID("a.ts:0"): {
			{HunkID: types.ParseHunkID("b.ts:0"), SymbolName: "foo", Relationship: types.RelReferences, ReferenceLineNumbers: []int{3, 7}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLinksText(&buf, links))

	expected := `a.ts:0
  references b.ts:0  foo (lines 3, 7)
b.ts:0
  defines    a.ts:0  foo
`
	assert.Equal(t, expected, buf.String())

	buf.Reset()
	require.NoError(t, WriteLinksText(&buf, nil))
	assert.Equal(t, "no linked hunks\n", buf.String())
}

func TestWriteIdenticalText(t *testing.T) {
	a, b, c := types.ParseHunkID("x.go:0"), types.ParseHunkID("y.go:1"), types.ParseHunkID("z.go:0")
	identical := types.IdenticalHunkIndex{
		a: {b, c},
		b: {a, c},
		c: {a, b},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIdenticalText(&buf, identical))
	assert.Equal(t, "3 hunks identical: x.go:0, y.go:1, z.go:0\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteIdenticalText(&buf, types.IdenticalHunkIndex{}))
	assert.Equal(t, "no identical hunks\n", buf.String())
}

func TestWriteMovesText(t *testing.T) {
	moves := []types.MovePair{{
		SourceHunkID:   types.ParseHunkID("old.go:0"),
		DestHunkID:     types.ParseHunkID("new.go:1"),
		SourceFilePath: "old.go",
		DestFilePath:   "new.go",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteMovesText(&buf, moves))
	assert.Equal(t, "old.go:0 -> new.go:1\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteMovesText(&buf, nil))
	assert.Equal(t, "no moved hunks\n", buf.String())
}

func TestWriteDefinitionsText(t *testing.T) {
	defs := []types.SymbolDefinition{
		{FilePath: "srv/a.go", Name: "Start", Kind: types.KindMethod, StartLine: 5, EndLine: 9},
		{FilePath: "web/b.ts", Name: "Start", Kind: types.KindFunction, StartLine: 1, EndLine: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDefinitionsText(&buf, defs))
	assert.Equal(t, "srv/a.go:5-9  method Start\nweb/b.ts:1-3  function Start\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteDefinitionsText(&buf, []types.SymbolDefinition{}))
	assert.Equal(t, "no definitions found\n", buf.String())
}

func TestWriteSymbolsText(t *testing.T) {
	hunks := []types.Hunk{
		{ID: types.ParseHunkID("a.ts:0"), FilePath: "a.ts", Lines: []types.DiffLine{
			{Type: types.LineRemoved, Content: "return 1"},
			{Type: types.LineAdded, Content: "return 2"},
			{Type: types.LineAdded, Content: "log()"},
		}},
		{ID: types.ParseHunkID("notes.md:0"), FilePath: "notes.md", Lines: []types.DiffLine{
			{Type: types.LineAdded, Content: "hi"},
		}},
	}
	files := []types.FileSymbolDiff{
		{
			FilePath:   "a.ts",
			HasGrammar: true,
			Symbols: []types.SymbolDiff{{
				Name:       "Runner",
				Kind:       types.KindPtr(types.KindClass),
				ChangeType: types.ChangeModified,
				HunkIDs:    []types.HunkID{},
				Children: []types.SymbolDiff{{
					Name:       "start",
					Kind:       types.KindPtr(types.KindMethod),
					ChangeType: types.ChangeAdded,
					HunkIDs:    []types.HunkID{types.ParseHunkID("a.ts:0")},
				}},
			}},
			SymbolReferences: []types.SymbolReference{
				{SymbolName: "foo", HunkID: types.ParseHunkID("a.ts:0"), LineNumbers: []int{4}},
			},
		},
		{FilePath: "notes.md", TopLevelHunkIDs: []types.HunkID{types.ParseHunkID("notes.md:0")}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSymbolsText(&buf, files, hunks))

	expected := `a.ts
  ~ class Runner  +0 -0
    + method start  +2 -1
  uses foo in a.ts:0 (lines 4)
notes.md (no grammar)
  top-level notes.md:0  +1 -0
`
	assert.Equal(t, expected, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleGraph()))

	var decoded types.DependencyGraph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleGraph(), decoded)
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleGraph()))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, `"a.ts"`)
	assert.Contains(t, out, `"README.md"`)
	assert.Contains(t, out, `"a.ts" -> "b.ts"`)
	assert.Contains(t, out, `bar, foo`)
}
