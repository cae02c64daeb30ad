package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/agusespa/hunkgraph/internal/types"
)

// NewPythonParser returns a parser for .py and .pyi files.
func NewPythonParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	return newTreeSitterParser(grammar{
		name:        "Python",
		extensions:  []string{".py", ".pyi"},
		declare:     declarePython,
		opaque:      map[string]bool{"lambda": true},
		identifiers: []string{"identifier"},
	}, lang)
}

func declarePython(node *sitter.Node, src []byte, parent types.SymbolKind) (declaration, bool) {
	switch node.Kind() {
	case "function_definition":
		kind := types.KindFunction
		if parent == types.KindClass {
			kind = types.KindMethod
		}
		return named(fieldText(node, "name", src), kind, false)
	case "class_definition":
		return named(fieldText(node, "name", src), types.KindClass, true)
	case "assignment":
		left := node.ChildByFieldName("left")
		if left == nil || left.Kind() != "identifier" {
			return declaration{}, false
		}
		return named(left.Utf8Text(src), types.KindVariable, false)
	}
	return declaration{}, false
}
