package symbols

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/agusespa/hunkgraph/internal/types"
)

// declaration is what a grammar recognised at a node. Containers have their
// bodies searched for nested declarations.
type declaration struct {
	name      string
	kind      types.SymbolKind
	container bool
}

type declareFunc func(node *sitter.Node, src []byte, parent types.SymbolKind) (declaration, bool)

type grammar struct {
	name       string
	extensions []string
	declare    declareFunc
	// opaque node kinds are never searched: bodies of anonymous functions and blocks.
	opaque      map[string]bool
	identifiers []string
}

// TreeSitterParser implements LanguageParser for one tree-sitter grammar.
type TreeSitterParser struct {
	grammar  grammar
	parser   *sitter.Parser
	language *sitter.Language
	idQuery  *sitter.Query
}

func newTreeSitterParser(g grammar, lang *sitter.Language) (*TreeSitterParser, error) {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language for %s parser: %w", g.name, err)
	}

	q, err := sitter.NewQuery(lang, identifierQuery(g.identifiers))
	if err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to create %s identifier query: %w", g.name, err)
	}

	return &TreeSitterParser{
		grammar:  g,
		parser:   parser,
		language: lang,
		idQuery:  q,
	}, nil
}

func identifierQuery(kinds []string) string {
	var b strings.Builder
	for _, kind := range kinds {
		fmt.Fprintf(&b, "(%s) @id\n", kind)
	}
	return b.String()
}

func (p *TreeSitterParser) Language() string {
	return p.grammar.name
}

func (p *TreeSitterParser) SupportedExtensions() []string {
	return p.grammar.extensions
}

func (p *TreeSitterParser) Close() {
	if p.idQuery != nil {
		p.idQuery.Close()
		p.idQuery = nil
	}
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

func (p *TreeSitterParser) parse(content []byte) (*sitter.Tree, error) {
	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source: tree-sitter returned nil", p.grammar.name)
	}
	return tree, nil
}

// ParseFile returns the top-level declarations of content with their nested members.
func (p *TreeSitterParser) ParseFile(filePath string, content []byte) ([]types.Symbol, error) {
	tree, err := p.parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	defer tree.Close()

	symbols := p.collect(tree.RootNode(), content, "")
	if symbols == nil {
		symbols = []types.Symbol{}
	}
	return symbols, nil
}

func (p *TreeSitterParser) collect(node *sitter.Node, src []byte, parent types.SymbolKind) []types.Symbol {
	var symbols []types.Symbol
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || p.grammar.opaque[child.Kind()] {
			continue
		}

		decl, ok := p.grammar.declare(child, src, parent)
		if !ok {
			symbols = append(symbols, p.collect(child, src, parent)...)
			continue
		}

		start, end := nodeLines(child)
		sym := types.Symbol{
			Name:      decl.name,
			Kind:      decl.kind,
			StartLine: start,
			EndLine:   end,
		}
		if decl.container {
			sym.Children = p.collect(child, src, decl.kind)
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

// FindIdentifiers lists identifier tokens in content, in source order.
func (p *TreeSitterParser) FindIdentifiers(content []byte) ([]Identifier, error) {
	tree, err := p.parse(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(p.idQuery, tree.RootNode(), content)

	var ids []Identifier
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		for _, c := range m.Captures {
			ids = append(ids, Identifier{
				Name: c.Node.Utf8Text(content),
				Line: int(c.Node.StartPosition().Row) + 1,
			})
		}
	}
	return ids, nil
}

// nodeLines returns 1-based inclusive lines. A node ending at column 0 stops
// on the previous line.
func nodeLines(node *sitter.Node) (int, int) {
	start := node.StartPosition()
	end := node.EndPosition()
	startLine := int(start.Row) + 1
	endLine := int(end.Row) + 1
	if end.Column == 0 && end.Row > start.Row {
		endLine--
	}
	return startLine, endLine
}

func fieldText(node *sitter.Node, field string, src []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(src)
}

func named(name string, kind types.SymbolKind, container bool) (declaration, bool) {
	if name == "" {
		return declaration{}, false
	}
	return declaration{name: name, kind: kind, container: container}, true
}
