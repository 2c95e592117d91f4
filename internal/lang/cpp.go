package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/phobologic/docmap/internal/doc"
)

func init() {
	Languages["cpp"] = &Language{
		Name:        "cpp",
		Extensions:  []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		lang:        cpp.GetLanguage(),
		Classify:    cppClassify,
		DeclName:    cppDeclName,
		Signature:   cppSignature,
		Scope:       cppScope,
		Transparent: cppTransparent,
	}
}

func cppClassify(node *sitter.Node, source []byte) (doc.Kind, bool) {
	switch node.Type() {
	case "function_definition":
		if insideClassBody(node) {
			return doc.Method, true
		}
		return doc.Function, true
	case "declaration":
		if hasFunctionDeclarator(node) {
			return doc.Function, true
		}
		return doc.Variable, true
	case "field_declaration":
		// member function declarations inside a class body are
		// field_declaration nodes with a function declarator
		if hasFunctionDeclarator(node) {
			return doc.Method, true
		}
		return doc.Field, true
	case "class_specifier":
		if node.ChildByFieldName("body") == nil {
			return "", false
		}
		return doc.Class, true
	case "struct_specifier":
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
	case "type_definition", "alias_declaration":
		return doc.Typedef, true
	case "namespace_definition":
		return doc.Namespace, true
	case "preproc_def", "preproc_function_def":
		return doc.Macro, true
	}
	return "", false
}

func cppDeclName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "function_definition", "declaration", "field_declaration", "type_definition":
		return declaratorName(node.ChildByFieldName("declarator"), source)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier",
		"enumerator", "namespace_definition", "alias_declaration",
		"preproc_def", "preproc_function_def":
		if n := node.ChildByFieldName("name"); n != nil {
			return NodeText(n, source)
		}
	}
	return ""
}

func cppSignature(node *sitter.Node, kind doc.Kind, source []byte) string {
	switch node.Type() {
	case "preproc_def", "preproc_function_def":
		sig := "#define " + cppDeclName(node, source)
		if params := node.ChildByFieldName("parameters"); params != nil {
			sig += CollapseWhitespace(NodeText(params, source))
		}
		return sig
	case "type_definition", "declaration", "field_declaration":
		return elideCompositeBody(node, source)
	}
	return headSignature(node, source)
}

func cppScope(node *sitter.Node) *sitter.Node {
	switch node.Type() {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier",
		"namespace_definition":
		return node.ChildByFieldName("body")
	case "type_definition":
		if t := node.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
				return t.ChildByFieldName("body")
			}
		}
	}
	return nil
}

func cppTransparent(node *sitter.Node) bool {
	switch node.Type() {
	case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif",
		"linkage_specification", "declaration_list", "template_declaration":
		return true
	}
	return false
}

// insideClassBody reports whether a node sits directly inside a class,
// struct, or union member list.
func insideClassBody(node *sitter.Node) bool {
	parent := node.Parent()
	for parent != nil {
		if parent.Type() == "field_declaration_list" {
			return true
		}
		// member definitions can be wrapped in template declarations
		if parent.Type() != "template_declaration" {
			return false
		}
		parent = parent.Parent()
	}
	return false
}
