package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/hunkgraph/internal/types"
)

func TestFindDefinitions(t *testing.T) {
	forest := []types.Symbol{
		{Name: "Cache", Kind: types.KindClass, StartLine: 1, EndLine: 20, Children: []types.Symbol{
			{Name: "get", Kind: types.KindMethod, StartLine: 2, EndLine: 5},
			{Name: "put", Kind: types.KindMethod, StartLine: 7, EndLine: 9},
		}},
		{Name: "get", Kind: types.KindFunction, StartLine: 22, EndLine: 24},
	}

	defs := FindDefinitions("cache.py", forest, "get")
	assert.Equal(t, []types.SymbolDefinition{
		{FilePath: "cache.py", Name: "get", Kind: types.KindMethod, StartLine: 2, EndLine: 5},
		{FilePath: "cache.py", Name: "get", Kind: types.KindFunction, StartLine: 22, EndLine: 24},
	}, defs)

	assert.Empty(t, FindDefinitions("cache.py", forest, "missing"))
}

func TestParserRegistry_FindDefinitions(t *testing.T) {
	registry, err := NewParserRegistry()
	require.NoError(t, err)
	defer registry.Close()

	defs, err := registry.FindDefinitions("auth/auth.go", []byte(goSample), "Logout")
	require.NoError(t, err)
	assert.Equal(t, []types.SymbolDefinition{
		{FilePath: "auth/auth.go", Name: "Logout", Kind: types.KindMethod, StartLine: 22, EndLine: 24},
	}, defs)

	defs, err = registry.FindDefinitions("notes.txt", []byte("Logout"), "Logout")
	require.NoError(t, err)
	assert.Empty(t, defs)
}
