// Package doc defines the core data structures for extracted documentation.
package doc

import "sort"

// Kind indicates the syntactic kind of a documented declaration.
type Kind string

const (
	Function     Kind = "function"
	Method       Kind = "method"
	Struct       Kind = "struct"
	Class        Kind = "class"
	Union        Kind = "union"
	Enum         Kind = "enum"
	EnumConstant Kind = "enum.constant"
	Typedef      Kind = "typedef"
	Field        Kind = "field"
	Variable     Kind = "variable"
	Macro        Kind = "macro"
	Namespace    Kind = "namespace"
)

// NoParamName is used when a parameter command carries no resolvable name.
const NoParamName = "<none>"

// Location identifies a position in a source file.
type Location struct {
	File   string
	Line   uint32
	Column uint32
	Offset uint32
}

// Paragraph is one paragraph of documentation prose. Tag carries the
// originating block-command name (e.g. "note") when the paragraph came from
// a tagged block; it is empty for plain narrative text.
type Paragraph struct {
	Text string
	Tag  string
}

// Parameter documents one formal parameter.
type Parameter struct {
	Name       string
	Discussion []Paragraph
}

// Declaration is one documented declaration extracted from a source file.
// Children are owned exclusively by their parent; the tree is built once,
// bottom-up, and not mutated afterwards.
type Declaration struct {
	Kind             Kind
	Location         Location
	Name             string
	USR              string
	Signature        string
	Children         []*Declaration
	Parameters       []Parameter
	Discussion       []Paragraph
	ReturnDiscussion []Paragraph
}

// SameEntity reports whether two declarations refer to the same entity.
// Identity is the USR alone: declarations gathered from different
// translation units compare equal whenever their USRs match. Two
// declarations that both lack a USR also compare equal.
func (d *Declaration) SameEntity(o *Declaration) bool {
	return d.USR == o.USR
}

// Before imposes a strict total order on declarations at distinct
// positions: file path, then line, then column. Declarations at the same
// file, line, and column are not ordered relative to each other; a stable
// sort decides their final relative order.
func (d *Declaration) Before(o *Declaration) bool {
	if d.Location.File != o.Location.File {
		return d.Location.File < o.Location.File
	}
	if d.Location.Line != o.Location.Line {
		return d.Location.Line < o.Location.Line
	}
	return d.Location.Column < o.Location.Column
}

// FileMap groups declarations by originating file, ready for serialization.
// Files is sorted; each file's declarations are sorted by Before.
type FileMap struct {
	Files  []string
	ByFile map[string][]*Declaration
}

// NewFileMap builds a FileMap from an already-deduplicated, sorted slice.
// Only the declarations structurally present in decls are grouped; nested
// children stay inside their parent's record.
func NewFileMap(decls []*Declaration) *FileMap {
	fm := &FileMap{ByFile: make(map[string][]*Declaration)}
	for _, d := range decls {
		file := d.Location.File
		if _, seen := fm.ByFile[file]; !seen {
			fm.Files = append(fm.Files, file)
		}
		fm.ByFile[file] = append(fm.ByFile[file], d)
	}
	sort.Strings(fm.Files)
	return fm
}
