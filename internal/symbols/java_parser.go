package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/agusespa/hunkgraph/internal/types"
)

// NewJavaParser returns a parser for .java files.
func NewJavaParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_java.Language())
	return newTreeSitterParser(grammar{
		name:        "Java",
		extensions:  []string{".java"},
		declare:     declareJava,
		opaque:      map[string]bool{"block": true, "lambda_expression": true},
		identifiers: []string{"identifier", "type_identifier"},
	}, lang)
}

func declareJava(node *sitter.Node, src []byte, _ types.SymbolKind) (declaration, bool) {
	switch node.Kind() {
	case "class_declaration", "record_declaration":
		return named(fieldText(node, "name", src), types.KindClass, true)
	case "interface_declaration", "annotation_type_declaration":
		return named(fieldText(node, "name", src), types.KindInterface, true)
	case "enum_declaration":
		return named(fieldText(node, "name", src), types.KindEnum, true)
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		return named(fieldText(node, "name", src), types.KindMethod, false)
	case "enum_constant":
		return named(fieldText(node, "name", src), types.KindConstant, false)
	case "field_declaration", "constant_declaration":
		kind := types.KindField
		if node.Kind() == "constant_declaration" {
			kind = types.KindConstant
		}
		// only the first declarator of `int a, b;` is recorded
		declarator := node.ChildByFieldName("declarator")
		if declarator == nil {
			return declaration{}, false
		}
		return named(fieldText(declarator, "name", src), kind, false)
	}
	return declaration{}, false
}
