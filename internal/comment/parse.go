package comment

import (
	"regexp"
	"strings"
)

var (
	commandRe   = regexp.MustCompile(`^[\\@]([A-Za-z]+)\s*(.*)$`)
	directionRe = regexp.MustCompile(`^\[(?:in|out|in,\s*out)\]\s*(.*)$`)
	starPrefix  = regexp.MustCompile(`^\s*\*+\s?`)
	linePrefix  = regexp.MustCompile(`^\s*//[/!]?\s?`)
)

// Parse parses the raw source text of a documentation comment (block or
// line form, markers included) into a comment node tree. The result has
// KindFullComment; empty or marker-only comments yield the Null sentinel.
func Parse(raw string) *Node {
	lines := unwrap(raw)
	root := &Node{Kind: KindFullComment}

	var para *Node  // open plain paragraph
	var block *Node // open block or param command collecting its paragraph
	var verbatim *Node

	closePara := func() {
		if para != nil && len(para.Children) > 0 {
			root.Children = append(root.Children, para)
		}
		para = nil
	}
	closeBlock := func() {
		if block != nil {
			root.Children = append(root.Children, block)
		}
		block = nil
	}
	appendText := func(line string) {
		if block != nil {
			blockPara := block.Children[len(block.Children)-1]
			blockPara.Children = append(blockPara.Children, &Node{Kind: KindText, Text: line})
			return
		}
		if para == nil {
			para = &Node{Kind: KindParagraph}
		}
		para.Children = append(para.Children, &Node{Kind: KindText, Text: line})
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if verbatim != nil {
			if m := commandRe.FindStringSubmatch(trimmed); m != nil && isVerbatimEnd(m[1]) {
				root.Children = append(root.Children, verbatim)
				verbatim = nil
				continue
			}
			verbatim.Children = append(verbatim.Children, &Node{Kind: KindVerbatimBlockLine, Text: line})
			continue
		}

		if trimmed == "" {
			closePara()
			closeBlock()
			continue
		}

		m := commandRe.FindStringSubmatch(trimmed)
		if m == nil {
			appendText(trimmed)
			continue
		}

		name, rest := m[1], m[2]
		closePara()
		closeBlock()

		switch {
		case isVerbatimStart(name):
			verbatim = &Node{Kind: KindVerbatimBlockCommand, Command: name}
		case name == "param":
			block = paramNode(rest)
		case isReturnAlias(name):
			block = &Node{
				Kind:     KindBlockCommand,
				Command:  ReturnCommand,
				Children: []*Node{{Kind: KindParagraph}},
			}
			if rest != "" {
				appendText(rest)
			}
		default:
			block = &Node{
				Kind:     KindBlockCommand,
				Command:  name,
				Children: []*Node{{Kind: KindParagraph}},
			}
			if rest != "" {
				appendText(rest)
			}
		}
	}

	closePara()
	closeBlock()
	if verbatim != nil {
		// unterminated code block, keep what was collected
		root.Children = append(root.Children, verbatim)
	}

	if len(root.Children) == 0 {
		return Null()
	}
	return root
}

// paramNode builds a param-command node from the text following \param.
// An optional [in]/[out]/[in,out] direction marker is skipped; the first
// remaining token is the parameter name. A \param with nothing after it
// produces a node with an empty name.
func paramNode(rest string) *Node {
	if m := directionRe.FindStringSubmatch(rest); m != nil {
		rest = m[1]
	}
	n := &Node{
		Kind:     KindParamCommand,
		Command:  "param",
		Children: []*Node{{Kind: KindParagraph}},
	}
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) > 0 && fields[0] != "" {
		n.Param = fields[0]
	}
	if len(fields) == 2 {
		if desc := strings.TrimSpace(fields[1]); desc != "" {
			n.Children[0].Children = append(n.Children[0].Children, &Node{Kind: KindText, Text: desc})
		}
	}
	return n
}

func isReturnAlias(name string) bool {
	return name == "return" || name == "returns" || name == "result"
}

func isVerbatimStart(name string) bool {
	return name == "code" || name == "verbatim"
}

func isVerbatimEnd(name string) bool {
	return name == "endcode" || name == "endverbatim"
}

// unwrap strips comment markers and per-line decoration, returning the
// comment's content lines.
func unwrap(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	if strings.HasPrefix(raw, "/*") {
		raw = strings.TrimSuffix(strings.TrimRight(raw, " \t\n"), "*/")
		raw = strings.TrimPrefix(raw, "/**")
		raw = strings.TrimPrefix(raw, "/*!")
		raw = strings.TrimPrefix(raw, "/*")
		lines := strings.Split(raw, "\n")
		for i, line := range lines {
			lines[i] = starPrefix.ReplaceAllString(line, "")
		}
		return lines
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = linePrefix.ReplaceAllString(line, "")
	}
	return lines
}

// IsDoc reports whether raw comment text is a documentation comment:
// a block comment opened with /** or /*!, or line comments in the /// or
// //! form. Plain // and /* comments are not documentation.
func IsDoc(raw string) bool {
	return strings.HasPrefix(raw, "/**") && raw != "/**/" ||
		strings.HasPrefix(raw, "/*!") ||
		strings.HasPrefix(raw, "///") ||
		strings.HasPrefix(raw, "//!")
}
