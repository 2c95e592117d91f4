package comment

import "github.com/phobologic/docmap/internal/doc"

// Observer receives a callback for every comment node the classifier
// visits. Implementations must not retain the arguments across calls.
type Observer interface {
	VisitNode(kind NodeKind, command string)
}

// Classification is the partition of one comment's nodes into structured
// documentation fields. Order within each field is source order.
type Classification struct {
	Discussion       []doc.Paragraph
	Parameters       []doc.Parameter
	ReturnDiscussion []doc.Paragraph
}

// Classify walks the children of a full-comment node once, in document
// order, and partitions them into discussion text, per-parameter records,
// and return-value text. Formatting-only nodes (inline commands, HTML tags,
// verbatim blocks) and unrecognized kinds contribute nothing; malformed
// nodes never fail, they degrade to empty fields.
func Classify(full *Node, obs Observer) Classification {
	var cl Classification
	if full.IsNull() {
		return cl
	}

	for i := 0; i < full.Count(); i++ {
		n := full.Child(i)
		if obs != nil {
			obs.VisitNode(n.Kind, n.Command)
		}

		switch n.Kind {
		case KindText, KindParagraph:
			if text := n.ParagraphText(); text != "" {
				cl.Discussion = append(cl.Discussion, doc.Paragraph{Text: text})
			}
		case KindBlockCommand:
			if n.Command == ReturnCommand {
				cl.ReturnDiscussion = append(cl.ReturnDiscussion, doc.Paragraph{Text: n.ParagraphText()})
			} else {
				cl.Discussion = append(cl.Discussion, doc.Paragraph{Text: n.ParagraphText(), Tag: n.Command})
			}
		case KindParamCommand:
			cl.Parameters = append(cl.Parameters, ExtractParameter(n))
		case KindInlineCommand, KindHTMLStartTag, KindHTMLEndTag,
			KindVerbatimBlockCommand, KindVerbatimBlockLine, KindVerbatimLine:
			// formatting directives, no extractable documentation
		default:
			// unknown kinds are skipped so new node kinds never break extraction
		}
	}
	return cl
}

// ExtractParameter builds a parameter record from a param-command node.
// Missing names degrade to the NoParamName sentinel rather than failing.
func ExtractParameter(n *Node) doc.Parameter {
	name := n.Param
	if name == "" {
		name = doc.NoParamName
	}
	var discussion []doc.Paragraph
	if text := n.ParagraphText(); text != "" {
		discussion = append(discussion, doc.Paragraph{Text: text})
	}
	return doc.Parameter{Name: name, Discussion: discussion}
}
