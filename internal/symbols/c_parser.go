package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/agusespa/hunkgraph/internal/types"
)

// NewCParser returns a parser for C sources and headers.
func NewCParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_c.Language())
	return newTreeSitterParser(grammar{
		name:        "C",
		extensions:  []string{".c", ".h"},
		declare:     declareC,
		opaque:      map[string]bool{"compound_statement": true},
		identifiers: []string{"identifier", "type_identifier", "field_identifier"},
	}, lang)
}

func declareC(node *sitter.Node, src []byte, _ types.SymbolKind) (declaration, bool) {
	switch node.Kind() {
	case "function_definition":
		return named(cDeclaratorName(node.ChildByFieldName("declarator"), src), types.KindFunction, false)
	case "declaration":
		declarator := node.ChildByFieldName("declarator")
		kind := types.KindVariable
		if cIsFunctionDeclarator(declarator) {
			kind = types.KindFunction
		}
		return named(cDeclaratorName(declarator, src), kind, false)
	case "type_definition":
		return named(cDeclaratorName(node.ChildByFieldName("declarator"), src), types.KindType, false)
	case "struct_specifier", "union_specifier":
		// `struct foo *p` mentions a struct without declaring it
		if node.ChildByFieldName("body") == nil {
			return declaration{}, false
		}
		return named(fieldText(node, "name", src), types.KindStruct, false)
	case "enum_specifier":
		if node.ChildByFieldName("body") == nil {
			return declaration{}, false
		}
		return named(fieldText(node, "name", src), types.KindEnum, false)
	case "preproc_def":
		return named(fieldText(node, "name", src), types.KindConstant, false)
	case "preproc_function_def":
		return named(fieldText(node, "name", src), types.KindFunction, false)
	}
	return declaration{}, false
}

// cDeclaratorName unwraps pointer, array, function and init declarators down
// to the declared name.
func cDeclaratorName(node *sitter.Node, src []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return node.Utf8Text(src)
		case "parenthesized_declarator":
			node = node.NamedChild(0)
			continue
		}
		node = node.ChildByFieldName("declarator")
	}
	return ""
}

func cIsFunctionDeclarator(node *sitter.Node) bool {
	for node != nil {
		if node.Kind() == "function_declarator" {
			return true
		}
		node = node.ChildByFieldName("declarator")
	}
	return false
}
