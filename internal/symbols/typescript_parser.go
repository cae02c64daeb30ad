package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/agusespa/hunkgraph/internal/types"
)

var tsOpaque = map[string]bool{
	"statement_block":     true,
	"arrow_function":      true,
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
	"class":               true,
}

var tsIdentifiers = []string{
	"identifier",
	"type_identifier",
	"property_identifier",
	"shorthand_property_identifier",
}

// NewTypeScriptParser returns a parser for .ts, .mts and .cts files.
func NewTypeScriptParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	return newTreeSitterParser(grammar{
		name:        "TypeScript",
		extensions:  []string{".ts", ".mts", ".cts"},
		declare:     declareTypeScript,
		opaque:      tsOpaque,
		identifiers: tsIdentifiers,
	}, lang)
}

// NewTSXParser covers TSX and plain JavaScript, which the TSX grammar parses.
func NewTSXParser() (*TreeSitterParser, error) {
	lang := sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	return newTreeSitterParser(grammar{
		name:        "TSX",
		extensions:  []string{".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		declare:     declareTypeScript,
		opaque:      tsOpaque,
		identifiers: tsIdentifiers,
	}, lang)
}

func declareTypeScript(node *sitter.Node, src []byte, _ types.SymbolKind) (declaration, bool) {
	name := func() string { return fieldText(node, "name", src) }

	switch node.Kind() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return named(name(), types.KindFunction, false)
	case "class_declaration", "abstract_class_declaration":
		return named(name(), types.KindClass, true)
	case "interface_declaration":
		return named(name(), types.KindInterface, true)
	case "type_alias_declaration":
		return named(name(), types.KindType, false)
	case "enum_declaration":
		return named(name(), types.KindEnum, false)
	case "internal_module", "module":
		return named(name(), types.KindModule, true)
	case "method_definition", "method_signature", "abstract_method_signature":
		return named(name(), types.KindMethod, false)
	case "public_field_definition", "property_signature":
		return named(name(), types.KindField, false)
	case "variable_declarator":
		kind := types.KindVariable
		if value := node.ChildByFieldName("value"); value != nil {
			switch value.Kind() {
			case "arrow_function", "function_expression", "function", "generator_function":
				kind = types.KindFunction
			}
		}
		return named(name(), kind, false)
	}
	return declaration{}, false
}
