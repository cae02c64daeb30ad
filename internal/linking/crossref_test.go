package linking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/hunkgraph/internal/types"
)

func TestBuildSymbolLinks_DefinitionAndReference(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("A.ts", []types.SymbolDiff{symbol("foo", "A.ts:0")}, nil),
		fileDiff("B.ts", nil, []types.SymbolReference{ref("foo", "B.ts:0", 5)}),
	}

	links := BuildSymbolLinks(files, nil)

	assert.Equal(t, map[types.HunkID][]types.SymbolLinkedHunk{
		hid("B.ts:0"): {
			{HunkID: hid("A.ts:0"), SymbolName: "foo", Relationship: types.RelDefines},
		},
		hid("A.ts:0"): {
			{HunkID: hid("B.ts:0"), SymbolName: "foo", Relationship: types.RelReferences, ReferenceLineNumbers: []int{5}},
		},
	}, links)
}

func TestBuildSymbolLinks_SelfReference(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("C.ts", []types.SymbolDiff{symbol("bar", "C.ts:0")}, []types.SymbolReference{ref("bar", "C.ts:0", 2)}),
	}

	assert.Empty(t, BuildSymbolLinks(files, nil))
}

func TestBuildSymbolLinks_SameFileSkipped(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("lib.go", []types.SymbolDiff{symbol("helper", "lib.go:0")}, []types.SymbolReference{ref("helper", "lib.go:3", 40)}),
	}

	assert.Empty(t, BuildSymbolLinks(files, nil))
}

func TestBuildSymbolLinks_IdenticalPairExcluded(t *testing.T) {
	hunks := []types.Hunk{
		hunk("D.ts:0", added("import {x} from 'y'")),
		hunk("E.ts:0", added("import {x} from 'y'")),
	}
	files := []types.FileSymbolDiff{
		fileDiff("D.ts", []types.SymbolDiff{symbol("x", "D.ts:0")}, []types.SymbolReference{ref("x", "D.ts:0", 1)}),
		fileDiff("E.ts", []types.SymbolDiff{symbol("x", "E.ts:0")}, []types.SymbolReference{ref("x", "E.ts:0", 1)}),
	}

	identical := FindIdenticalHunks(hunks)
	require.Equal(t, []types.HunkID{hid("E.ts:0")}, identical[hid("D.ts:0")])
	require.Equal(t, []types.HunkID{hid("D.ts:0")}, identical[hid("E.ts:0")])

	assert.Empty(t, BuildSymbolLinks(files, identical))

	// without the identical index the same inputs do link
	assert.NotEmpty(t, BuildSymbolLinks(files, nil))
}

func TestBuildSymbolLinks_OneSidedIdenticalEntryStillExcludes(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("a.go", []types.SymbolDiff{symbol("X", "a.go:0")}, nil),
		fileDiff("b.go", nil, []types.SymbolReference{ref("X", "b.go:0", 3)}),
	}
	identical := types.IdenticalHunkIndex{hid("a.go:0"): {hid("b.go:0")}}

	assert.Empty(t, BuildSymbolLinks(files, identical))
}

func TestBuildSymbolLinks_MultipleDefiningHunks(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("svc.go", []types.SymbolDiff{symbol("Run", "svc.go:0", "svc.go:2")}, nil),
		fileDiff("main.go", nil, []types.SymbolReference{ref("Run", "main.go:1", 10, 12)}),
	}

	links := BuildSymbolLinks(files, nil)

	assert.Equal(t, []types.SymbolLinkedHunk{
		{HunkID: hid("svc.go:0"), SymbolName: "Run", Relationship: types.RelDefines},
		{HunkID: hid("svc.go:2"), SymbolName: "Run", Relationship: types.RelDefines},
	}, links[hid("main.go:1")])
	assert.Equal(t, []types.SymbolLinkedHunk{
		{HunkID: hid("main.go:1"), SymbolName: "Run", Relationship: types.RelReferences, ReferenceLineNumbers: []int{10, 12}},
	}, links[hid("svc.go:0")])
	assert.Len(t, links[hid("svc.go:2")], 1)
}

func TestBuildSymbolLinks_DuplicateReferencesCollapse(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("a.py", []types.SymbolDiff{symbol("load", "a.py:0")}, nil),
		fileDiff("b.py", nil, []types.SymbolReference{
			ref("load", "b.py:0", 4),
			ref("load", "b.py:0", 9),
		}),
	}

	links := BuildSymbolLinks(files, nil)

	require.Len(t, links[hid("b.py:0")], 1)
	require.Len(t, links[hid("a.py:0")], 1)
	assert.Equal(t, []int{4}, links[hid("a.py:0")][0].ReferenceLineNumbers)
}

func TestBuildSymbolLinks_SymbolNameCollisionAcrossFiles(t *testing.T) {
	// Name-only matching: both definitions of "init" link to the reference.
	files := []types.FileSymbolDiff{
		fileDiff("db.go", []types.SymbolDiff{symbol("init", "db.go:0")}, nil),
		fileDiff("cache.go", []types.SymbolDiff{symbol("init", "cache.go:0")}, []types.SymbolReference{ref("init", "cache.go:0", 1)}),
	}

	links := BuildSymbolLinks(files, nil)

	assert.Equal(t, []types.SymbolLinkedHunk{
		{HunkID: hid("db.go:0"), SymbolName: "init", Relationship: types.RelDefines},
	}, links[hid("cache.go:0")])
	assert.Equal(t, types.RelReferences, links[hid("db.go:0")][0].Relationship)
}

func TestBuildSymbolLinks_MalformedHunkIDs(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("x", []types.SymbolDiff{symbol("S", "x")}, nil),
		fileDiff("y", nil, []types.SymbolReference{ref("S", "x-ref", 1)}),
	}

	links := BuildSymbolLinks(files, nil)

	require.Len(t, links[hid("x-ref")], 1)
	assert.Equal(t, hid("x"), links[hid("x-ref")][0].HunkID)
}

func TestBuildSymbolLinks_Invariants(t *testing.T) {
	files := []types.FileSymbolDiff{
		fileDiff("a/x.go", []types.SymbolDiff{symbol("P", "a/x.go:0"), symbol("Q", "a/x.go:1")}, []types.SymbolReference{ref("R", "a/x.go:1", 8)}),
		fileDiff("b/y.go", []types.SymbolDiff{symbol("R", "b/y.go:0")}, []types.SymbolReference{ref("P", "b/y.go:0", 2), ref("Q", "b/y.go:1", 5)}),
		fileDiff("c/z.go", nil, []types.SymbolReference{ref("P", "c/z.go:0", 1), ref("R", "c/z.go:0", 1)}),
	}

	links := BuildSymbolLinks(files, nil)
	require.NotEmpty(t, links)

	for source, targets := range links {
		seen := make(map[[2]string]bool)
		for _, l := range targets {
			assert.NotEqual(t, source.File, l.HunkID.File, "same-file link %s -> %s", source, l.HunkID)

			key := [2]string{l.HunkID.String(), l.SymbolName}
			assert.False(t, seen[key], "duplicate link %s -> %s (%s)", source, l.HunkID, l.SymbolName)
			seen[key] = true

			// every link has its mirror
			mirror := types.RelReferences
			if l.Relationship == types.RelReferences {
				mirror = types.RelDefines
				assert.NotEmpty(t, l.ReferenceLineNumbers)
			} else {
				assert.Nil(t, l.ReferenceLineNumbers)
			}
			found := false
			for _, back := range links[l.HunkID] {
				if back.HunkID == source && back.SymbolName == l.SymbolName && back.Relationship == mirror {
					found = true
				}
			}
			assert.True(t, found, "no mirror for %s -> %s", source, l.HunkID)
		}
	}
}

func TestAnalyze_MatchesIndividualBuilders(t *testing.T) {
	hunks := []types.Hunk{
		hunk("A.ts:0", added("export function foo() {}")),
		hunk("B.ts:0", added("foo()")),
	}
	files := []types.FileSymbolDiff{
		fileDiff("A.ts", []types.SymbolDiff{symbol("foo", "A.ts:0")}, nil),
		fileDiff("B.ts", nil, []types.SymbolReference{ref("foo", "B.ts:0", 5)}),
	}

	result := Analyze(files, hunks)

	assert.Equal(t, BuildDependencyGraph(files), result.Graph)
	assert.Equal(t, BuildSymbolLinks(files, FindIdenticalHunks(hunks)), result.Links)
	assert.Empty(t, result.Identical)
}
