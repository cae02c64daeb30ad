package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/agusespa/hunkgraph/internal/types"
)

// NewGoParser returns a parser for .go files.
func NewGoParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_go.Language())
	return newTreeSitterParser(grammar{
		name:        "Go",
		extensions:  []string{".go"},
		declare:     declareGo,
		opaque:      map[string]bool{"block": true, "func_literal": true},
		identifiers: []string{"identifier", "type_identifier", "field_identifier"},
	}, lang)
}

// Methods are named without their receiver so that call sites, which only
// spell the method name, resolve to them.
func declareGo(node *sitter.Node, src []byte, _ types.SymbolKind) (declaration, bool) {
	switch node.Kind() {
	case "function_declaration":
		return named(fieldText(node, "name", src), types.KindFunction, false)
	case "method_declaration":
		return named(fieldText(node, "name", src), types.KindMethod, false)
	case "type_spec", "type_alias":
		kind := types.KindType
		if t := node.ChildByFieldName("type"); t != nil {
			switch t.Kind() {
			case "struct_type":
				kind = types.KindStruct
			case "interface_type":
				kind = types.KindInterface
			}
		}
		return named(fieldText(node, "name", src), kind, false)
	case "const_spec":
		return named(fieldText(node, "name", src), types.KindConstant, false)
	case "var_spec":
		return named(fieldText(node, "name", src), types.KindVariable, false)
	}
	return declaration{}, false
}
