// Package symbols extracts declarations from source files with tree-sitter,
// attributes diff hunks to the declarations they touch, and finds where
// changed symbols are mentioned on changed lines.
//
// Parsers hold tree-sitter state and are not safe for concurrent use; give
// each goroutine its own ParserRegistry.
package symbols

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agusespa/hunkgraph/internal/types"
)

// LanguageParser extracts declarations and identifiers for one language.
type LanguageParser interface {
	// ParseFile extracts declarations, nested by syntactic containment.
	ParseFile(filePath string, content []byte) ([]types.Symbol, error)

	// FindIdentifiers lists every identifier-like token with its 1-based line.
	FindIdentifiers(content []byte) ([]Identifier, error)

	SupportedExtensions() []string

	// Language returns the human-readable name of the language.
	Language() string

	Close()
}

// Identifier is one occurrence of a name in a source file.
type Identifier struct {
	Name string
	Line int
}

// ParserRegistry picks a LanguageParser by file extension.
type ParserRegistry struct {
	parsers map[string]LanguageParser
	all     []LanguageParser
}

// NewParserRegistry builds a registry with every bundled grammar.
func NewParserRegistry() (*ParserRegistry, error) {
	registry := &ParserRegistry{
		parsers: make(map[string]LanguageParser),
	}

	constructors := []func() (*TreeSitterParser, error){
		NewGoParser,
		NewTypeScriptParser,
		NewTSXParser,
		NewPythonParser,
		NewJavaParser,
		NewCParser,
	}
	for _, newParser := range constructors {
		p, err := newParser()
		if err != nil {
			registry.Close()
			return nil, err
		}
		registry.RegisterParser(p)
	}

	return registry, nil
}

// RegisterParser maps each of the parser's extensions to it, replacing earlier parsers.
func (pr *ParserRegistry) RegisterParser(parser LanguageParser) {
	for _, ext := range parser.SupportedExtensions() {
		pr.parsers[ext] = parser
	}
	pr.all = append(pr.all, parser)
}

// GetParser returns the parser for filePath's extension, or nil.
func (pr *ParserRegistry) GetParser(filePath string) LanguageParser {
	ext := strings.ToLower(filepath.Ext(filePath))
	return pr.parsers[ext]
}

// HasGrammar reports whether a parser handles filePath.
func (pr *ParserRegistry) HasGrammar(filePath string) bool {
	return pr.GetParser(filePath) != nil
}

// ParseFile parses content with the grammar for filePath. Files without a
// grammar have no symbols.
func (pr *ParserRegistry) ParseFile(filePath string, content []byte) ([]types.Symbol, error) {
	parser := pr.GetParser(filePath)
	if parser == nil {
		return []types.Symbol{}, nil
	}
	return parser.ParseFile(filePath, content)
}

// SupportedLanguages returns the sorted names of the registered languages.
func (pr *ParserRegistry) SupportedLanguages() []string {
	var result []string
	for _, parser := range pr.all {
		if !slices.Contains(result, parser.Language()) {
			result = append(result, parser.Language())
		}
	}
	slices.Sort(result)
	return result
}

// DiffFile parses both versions of a file and attributes its hunks to the
// declarations they touch. A nil side means the file does not exist there.
func (pr *ParserRegistry) DiffFile(filePath string, oldContent, newContent []byte, hunks []types.Hunk) (types.FileSymbolDiff, error) {
	parser := pr.GetParser(filePath)
	if parser == nil {
		return NoGrammar(filePath, hunks), nil
	}

	var oldSymbols, newSymbols []types.Symbol
	var err error
	if oldContent != nil {
		oldSymbols, err = parser.ParseFile(filePath, oldContent)
		if err != nil {
			return types.FileSymbolDiff{}, fmt.Errorf("failed to parse old %s: %w", filePath, err)
		}
	}
	if newContent != nil {
		newSymbols, err = parser.ParseFile(filePath, newContent)
		if err != nil {
			return types.FileSymbolDiff{}, fmt.Errorf("failed to parse new %s: %w", filePath, err)
		}
	}

	return DiffSymbols(filePath, oldSymbols, newSymbols, hunks), nil
}

// FindReferences runs FindReferences with the parser registered for filePath.
// Files without a grammar have no references.
func (pr *ParserRegistry) FindReferences(filePath string, content []byte, hunks []types.Hunk, targets map[string]bool, exclude map[string][]types.LineRange, newSide bool) ([]types.SymbolReference, error) {
	parser := pr.GetParser(filePath)
	if parser == nil || content == nil {
		return nil, nil
	}
	refs, err := FindReferences(parser, content, hunks, targets, exclude, newSide)
	if err != nil {
		return nil, fmt.Errorf("failed to find references in %s: %w", filePath, err)
	}
	return refs, nil
}

// Close releases every registered parser.
func (pr *ParserRegistry) Close() {
	for _, parser := range pr.all {
		parser.Close()
	}
	pr.all = nil
	clear(pr.parsers)
}
