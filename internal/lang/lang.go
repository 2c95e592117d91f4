// Package lang provides a language registry mapping file extensions to
// tree-sitter languages and the per-language hooks used to recognize
// declarations.
package lang

import (
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docmap/internal/doc"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Classify maps an AST node to a declaration kind. The second result
	// is false when the node is not a declaration.
	Classify func(node *sitter.Node, source []byte) (doc.Kind, bool)

	// DeclName extracts the declared name from a declaration node.
	// Returns "" for anonymous declarations.
	DeclName func(node *sitter.Node, source []byte) string

	// Signature renders the declaration head (everything up to the body
	// or terminator) with whitespace collapsed.
	Signature func(node *sitter.Node, kind doc.Kind, source []byte) string

	// Scope returns the node whose children are the declaration's nested
	// declarations (a struct body, enumerator list, namespace body), or
	// nil when the declaration has none.
	Scope func(node *sitter.Node) *sitter.Node

	// Transparent reports whether a non-declaration node is a structural
	// container whose children should be inspected at the same level
	// (preprocessor conditionals, extern "C" blocks, templates).
	Transparent func(node *sitter.Node) bool
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// declaratorName descends a declarator chain (pointer, array, function,
// init, parenthesized declarators) to the declared identifier.
func declaratorName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "type_identifier",
			"qualified_identifier", "destructor_name", "operator_name":
			return NodeText(node, source)
		case "pointer_declarator", "function_declarator", "array_declarator",
			"init_declarator", "parenthesized_declarator", "reference_declarator":
			if d := node.ChildByFieldName("declarator"); d != nil {
				node = d
				continue
			}
			// some grammar versions expose the inner declarator of
			// parenthesized and reference declarators without a field name
			node = firstNamedChild(node)
		default:
			return ""
		}
	}
	return ""
}

// hasFunctionDeclarator reports whether a declaration node declares a
// function (a prototype) rather than a variable.
func hasFunctionDeclarator(node *sitter.Node) bool {
	d := node.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			return true
		case "pointer_declarator", "init_declarator", "parenthesized_declarator",
			"reference_declarator":
			if inner := d.ChildByFieldName("declarator"); inner != nil {
				d = inner
				continue
			}
			d = firstNamedChild(d)
		default:
			return false
		}
	}
	return false
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node.NamedChildCount() > 0 {
		return node.NamedChild(0)
	}
	return nil
}

// headSignature renders source text from the node start up to its body (or
// the whole node when it has no body), without a trailing semicolon.
func headSignature(node *sitter.Node, source []byte) string {
	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	text := string(source[node.StartByte():end])
	return CollapseWhitespace(trimSemicolon(text))
}

func trimSemicolon(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ";")
}
