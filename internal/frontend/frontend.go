// Package frontend parses source files with tree-sitter and exposes their
// declarations as cursors for extraction.
package frontend

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docmap/internal/comment"
	"github.com/phobologic/docmap/internal/doc"
	"github.com/phobologic/docmap/internal/extract"
	"github.com/phobologic/docmap/internal/lang"
)

// Index is the handle to the parsing backend, holding one parser per
// language. It is an explicitly owned resource passed to each Open call,
// not process-wide state. An Index is not safe for concurrent use; give
// each goroutine its own.
type Index struct {
	parsers map[string]*sitter.Parser
}

// NewIndex creates an empty parsing backend handle.
func NewIndex() *Index {
	return &Index{parsers: make(map[string]*sitter.Parser)}
}

// Open parses source as the named language and materializes its
// declaration cursors. The returned unit is a pure value: the syntax tree
// is released before Open returns.
func (ix *Index) Open(ctx context.Context, path, language string, source []byte) (*Unit, error) {
	l, ok := lang.Languages[language]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", language)
	}

	p, ok := ix.parsers[language]
	if !ok {
		p = l.NewParser()
		ix.parsers[language] = p
	}

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	b := &builder{path: path, source: source, lang: l}
	return &Unit{
		path:    path,
		cursors: b.collect(tree.RootNode(), "", ""),
	}, nil
}

// Unit is one opened translation unit.
type Unit struct {
	path    string
	cursors []extract.Cursor
}

// Path returns the unit's source path.
func (u *Unit) Path() string { return u.path }

// Cursors returns the unit's top-level declaration cursors in source order.
func (u *Unit) Cursors() []extract.Cursor { return u.cursors }

// cursor is a fully materialized declaration cursor. All fields are copied
// out of the syntax tree at Open time.
type cursor struct {
	kind     doc.Kind
	loc      doc.Location
	name     string
	usr      string
	text     string
	children []extract.Cursor
	parsed   *comment.Node
}

func (c *cursor) IsDeclaration() bool { return true }

func (c *cursor) Kind() doc.Kind { return c.kind }

func (c *cursor) Location() doc.Location { return c.loc }

func (c *cursor) Name() string { return c.name }

func (c *cursor) USR() string { return c.usr }

func (c *cursor) Text() string { return c.text }

func (c *cursor) Children() []extract.Cursor { return c.children }

func (c *cursor) ParsedComment() *comment.Node { return c.parsed }

type builder struct {
	path   string
	source []byte
	lang   *lang.Language
}

// collect walks the named children of a scope node and builds a cursor for
// every declaration. Transparent containers (preprocessor conditionals,
// extern blocks, templates) are descended into at the same level; their own
// doc comment is inherited by the first declaration inside.
func (b *builder) collect(scope *sitter.Node, scopeUSR, inherited string) []extract.Cursor {
	var out []extract.Cursor
	n := int(scope.NamedChildCount())
	for i := 0; i < n; i++ {
		node := scope.NamedChild(i)
		if node.Type() == "comment" {
			continue
		}

		if kind, ok := b.lang.Classify(node, b.source); ok {
			out = append(out, b.cursorFor(node, kind, scopeUSR, inherited))
			inherited = ""
			continue
		}

		if b.lang.Transparent != nil && b.lang.Transparent(node) {
			out = append(out, b.collect(node, scopeUSR, b.docCommentFor(node))...)
		}
	}
	return out
}

func (b *builder) cursorFor(node *sitter.Node, kind doc.Kind, scopeUSR, inherited string) *cursor {
	name := b.lang.DeclName(node, b.source)
	usr := childUSR(scopeUSR, kind, name)

	c := &cursor{
		kind: kind,
		loc: doc.Location{
			File:   b.path,
			Line:   node.StartPoint().Row + 1,
			Column: node.StartPoint().Column + 1,
			Offset: node.StartByte(),
		},
		name:   name,
		usr:    usr,
		text:   b.lang.Signature(node, kind, b.source),
		parsed: comment.Null(),
	}

	raw := b.docCommentFor(node)
	if raw == "" {
		raw = inherited
	}
	if raw != "" {
		c.parsed = comment.Parse(raw)
	}

	if b.lang.Scope != nil {
		if scope := b.lang.Scope(node); scope != nil {
			c.children = b.collect(scope, usr, "")
		}
	}
	return c
}

// docCommentFor returns the raw text of the documentation comment attached
// immediately above a node: one /** or /*! block, or a run of adjacent ///
// or //! lines. Ordinary comments and comments separated by a blank line
// are not documentation.
func (b *builder) docCommentFor(node *sitter.Node) string {
	prev := node.PrevNamedSibling()
	expect := node.StartPoint().Row // comment must end on the line above

	var lines []string
	for prev != nil && prev.Type() == "comment" {
		if prev.EndPoint().Row+1 != expect {
			break
		}
		text := lang.NodeText(prev, b.source)
		if strings.HasPrefix(text, "///") || strings.HasPrefix(text, "//!") {
			lines = append([]string{text}, lines...)
			expect = prev.StartPoint().Row
			prev = prev.PrevNamedSibling()
			continue
		}
		if len(lines) == 0 && comment.IsDoc(text) {
			return text
		}
		break
	}
	return strings.Join(lines, "\n")
}

// childUSR derives a hierarchical unique symbol reference by extending the
// enclosing scope's USR with the declaration's tag and name. Anonymous
// declarations get no USR.
func childUSR(scopeUSR string, kind doc.Kind, name string) string {
	if name == "" {
		return ""
	}
	prefix := scopeUSR
	if prefix == "" {
		prefix = "c:"
	}
	return prefix + "@" + usrTag(kind) + "@" + name
}

func usrTag(kind doc.Kind) string {
	switch kind {
	case doc.Function, doc.Method:
		return "F"
	case doc.Struct, doc.Class:
		return "S"
	case doc.Union:
		return "U"
	case doc.Enum:
		return "E"
	case doc.EnumConstant:
		return "EC"
	case doc.Typedef:
		return "T"
	case doc.Field:
		return "FI"
	case doc.Variable:
		return "V"
	case doc.Macro:
		return "M"
	case doc.Namespace:
		return "N"
	}
	return "D"
}
