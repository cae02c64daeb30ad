package symbols

import (
	"fmt"

	"github.com/agusespa/hunkgraph/internal/types"
)

// FindDefinitions returns every declaration named name in a symbol forest,
// parents before their children.
func FindDefinitions(filePath string, symbols []types.Symbol, name string) []types.SymbolDefinition {
	var defs []types.SymbolDefinition
	var walk func([]types.Symbol)
	walk = func(syms []types.Symbol) {
		for _, s := range syms {
			if s.Name == name {
				defs = append(defs, types.SymbolDefinition{
					FilePath:  filePath,
					Name:      s.Name,
					Kind:      s.Kind,
					StartLine: s.StartLine,
					EndLine:   s.EndLine,
				})
			}
			walk(s.Children)
		}
	}
	walk(symbols)
	return defs
}

// FindDefinitions parses content with the grammar for filePath and returns
// the declarations named name. Files without a grammar define nothing.
func (pr *ParserRegistry) FindDefinitions(filePath string, content []byte, name string) ([]types.SymbolDefinition, error) {
	parser := pr.GetParser(filePath)
	if parser == nil {
		return nil, nil
	}
	syms, err := parser.ParseFile(filePath, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return FindDefinitions(filePath, syms, name), nil
}
