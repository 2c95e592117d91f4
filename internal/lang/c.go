package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/phobologic/docmap/internal/doc"
)

func init() {
	Languages["c"] = &Language{
		Name:        "c",
		Extensions:  []string{".c", ".h"},
		lang:        c.GetLanguage(),
		Classify:    cClassify,
		DeclName:    cDeclName,
		Signature:   cSignature,
		Scope:       cScope,
		Transparent: cTransparent,
	}
}

func cClassify(node *sitter.Node, source []byte) (doc.Kind, bool) {
	switch node.Type() {
	case "function_definition":
		return doc.Function, true
	case "declaration":
		if hasFunctionDeclarator(node) {
			return doc.Function, true
		}
		return doc.Variable, true
	case "struct_specifier":
		// without a body this is a type reference, not a definition
		if node.ChildByFieldName("body") == nil {
			return "", false
		}
		return doc.Struct, true
	case "union_specifier":
		if node.ChildByFieldName("body") == nil {
			return "", false
		}
		return doc.Union, true
	case "enum_specifier":
		if node.ChildByFieldName("body") == nil {
			return "", false
		}
		return doc.Enum, true
	case "enumerator":
		return doc.EnumConstant, true
	case "type_definition":
		return doc.Typedef, true
	case "field_declaration":
		return doc.Field, true
	case "preproc_def", "preproc_function_def":
		return doc.Macro, true
	}
	return "", false
}

func cDeclName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "function_definition", "declaration", "field_declaration", "type_definition":
		return declaratorName(node.ChildByFieldName("declarator"), source)
	case "struct_specifier", "union_specifier", "enum_specifier", "enumerator",
		"preproc_def", "preproc_function_def":
		if n := node.ChildByFieldName("name"); n != nil {
			return NodeText(n, source)
		}
	}
	return ""
}

func cSignature(node *sitter.Node, kind doc.Kind, source []byte) string {
	switch node.Type() {
	case "preproc_def", "preproc_function_def":
		sig := "#define " + cDeclName(node, source)
		if params := node.ChildByFieldName("parameters"); params != nil {
			sig += CollapseWhitespace(NodeText(params, source))
		}
		return sig
	case "type_definition", "declaration", "field_declaration":
		return elideCompositeBody(node, source)
	}
	return headSignature(node, source)
}

// cScope exposes the nested declarations of composite types: struct and
// union fields, enumerators, and the members of a typedef'd composite.
func cScope(node *sitter.Node) *sitter.Node {
	switch node.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		return node.ChildByFieldName("body")
	case "type_definition":
		if t := node.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_specifier", "union_specifier", "enum_specifier":
				return t.ChildByFieldName("body")
			}
		}
	}
	return nil
}

func cTransparent(node *sitter.Node) bool {
	switch node.Type() {
	case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif",
		"linkage_specification", "declaration_list":
		return true
	}
	return false
}

// elideCompositeBody renders a declaration's text with any inline composite
// body replaced by "{ ... }", so typedef'd structs keep readable signatures.
func elideCompositeBody(node *sitter.Node, source []byte) string {
	var body *sitter.Node
	if t := node.ChildByFieldName("type"); t != nil {
		switch t.Type() {
		case "struct_specifier", "union_specifier", "enum_specifier":
			body = t.ChildByFieldName("body")
		}
	}
	if body == nil {
		return headSignature(node, source)
	}
	text := string(source[node.StartByte():body.StartByte()]) +
		"{ ... }" +
		string(source[body.EndByte():node.EndByte()])
	return CollapseWhitespace(trimSemicolon(text))
}
