// Package comment models parsed documentation comments as a tree of typed
// nodes and classifies those nodes into structured documentation fields.
package comment

import "strings"

// NodeKind identifies the role of one node in a parsed comment tree.
type NodeKind int

const (
	// KindNull signals "no documentation attached". A cursor whose parsed
	// comment has this kind is excluded from extraction entirely.
	KindNull NodeKind = iota
	KindText
	KindParagraph
	KindBlockCommand
	KindParamCommand
	KindInlineCommand
	KindHTMLStartTag
	KindHTMLEndTag
	KindVerbatimBlockCommand
	KindVerbatimBlockLine
	KindVerbatimLine
	KindFullComment
)

func (k NodeKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindParagraph:
		return "paragraph"
	case KindBlockCommand:
		return "block-command"
	case KindParamCommand:
		return "param-command"
	case KindInlineCommand:
		return "inline-command"
	case KindHTMLStartTag:
		return "html-start-tag"
	case KindHTMLEndTag:
		return "html-end-tag"
	case KindVerbatimBlockCommand:
		return "verbatim-block-command"
	case KindVerbatimBlockLine:
		return "verbatim-block-line"
	case KindVerbatimLine:
		return "verbatim-line"
	case KindFullComment:
		return "full-comment"
	}
	return "unknown"
}

// ReturnCommand is the canonical command name for return-value sections.
// The parser normalizes the usual aliases (returns, result) to it.
const ReturnCommand = "return"

// Node is one node in a parsed comment tree.
type Node struct {
	Kind     NodeKind
	Command  string // command name for block and param commands
	Param    string // declared parameter name for param commands, may be empty
	Text     string // content for text and verbatim-line nodes
	Children []*Node
}

var nullNode = &Node{Kind: KindNull}

// Null returns the shared "no documentation" sentinel node.
func Null() *Node {
	return nullNode
}

// IsNull reports whether the node is the no-documentation sentinel.
func (n *Node) IsNull() bool {
	return n == nil || n.Kind == KindNull
}

// Count returns the number of child nodes.
func (n *Node) Count() int {
	return len(n.Children)
}

// Child returns the i-th child node.
func (n *Node) Child(i int) *Node {
	return n.Children[i]
}

// Paragraph returns the node's paragraph content as a sequence of text
// lines: the node's own lines for text and paragraph nodes, or the lines of
// the first paragraph beneath a block or param command. Nodes without
// paragraph content yield nil.
func (n *Node) Paragraph() []string {
	switch n.Kind {
	case KindText:
		return []string{n.Text}
	case KindParagraph:
		lines := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Kind == KindText {
				lines = append(lines, c.Text)
			}
		}
		return lines
	case KindBlockCommand, KindParamCommand:
		for _, c := range n.Children {
			if c.Kind == KindParagraph {
				return c.Paragraph()
			}
		}
	}
	return nil
}

// ParagraphText joins paragraph lines into a single trimmed string.
func (n *Node) ParagraphText() string {
	return joinLines(n.Paragraph())
}

func joinLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
