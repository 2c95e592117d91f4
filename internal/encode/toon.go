package encode

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/docmap/internal/doc"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// TOON renders the documentation map in TOON (Token-Oriented Object
// Notation): compact tabular output for consumption by token-constrained
// readers. Nested declarations are flattened in document order; the usr
// column ties parameters and return docs back to their declaration.
func TOON(fm *doc.FileMap) string {
	var parts []string

	var fileRows [][]string
	var declRows [][]string
	var paramRows [][]string
	var returnRows [][]string

	for _, file := range fm.Files {
		decls := fm.ByFile[file]
		fileRows = append(fileRows, []string{file, fmt.Sprintf("%d", len(decls))})
		for _, d := range decls {
			flattenDecl(d, &declRows, &paramRows, &returnRows)
		}
	}

	parts = append(parts, formatTabular("files", []string{"path", "declarations"}, fileRows))
	parts = append(parts, formatTabular("declarations",
		[]string{"file", "line", "column", "kind", "name", "usr", "signature", "doc"}, declRows))
	if len(paramRows) > 0 {
		parts = append(parts, formatTabular("parameters", []string{"usr", "name", "doc"}, paramRows))
	}
	if len(returnRows) > 0 {
		parts = append(parts, formatTabular("returns", []string{"usr", "doc"}, returnRows))
	}

	return strings.Join(parts, "\n")
}

func flattenDecl(d *doc.Declaration, declRows, paramRows, returnRows *[][]string) {
	*declRows = append(*declRows, []string{
		d.Location.File,
		fmt.Sprintf("%d", d.Location.Line),
		fmt.Sprintf("%d", d.Location.Column),
		string(d.Kind),
		d.Name,
		d.USR,
		d.Signature,
		joinParagraphs(d.Discussion),
	})
	for _, p := range d.Parameters {
		*paramRows = append(*paramRows, []string{d.USR, p.Name, joinParagraphs(p.Discussion)})
	}
	if len(d.ReturnDiscussion) > 0 {
		*returnRows = append(*returnRows, []string{d.USR, joinParagraphs(d.ReturnDiscussion)})
	}
	for _, c := range d.Children {
		flattenDecl(c, declRows, paramRows, returnRows)
	}
}

func joinParagraphs(ps []doc.Paragraph) string {
	var parts []string
	for _, p := range ps {
		text := p.Text
		if p.Tag != "" {
			text = p.Tag + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
