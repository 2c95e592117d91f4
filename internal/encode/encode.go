// Package encode serializes a documentation map for output.
package encode

import (
	"encoding/json"

	"github.com/phobologic/docmap/internal/doc"
)

// DeclRecord is the serialized shape of one declaration. Children appear
// under "substructure" in the same shape, recursively.
type DeclRecord struct {
	Kind             string        `json:"kind,omitempty"`
	Name             string        `json:"name,omitempty"`
	USR              string        `json:"usr,omitempty"`
	Signature        string        `json:"signature,omitempty"`
	File             string        `json:"file"`
	Line             uint32        `json:"line"`
	Column           uint32        `json:"column"`
	Offset           uint32        `json:"offset"`
	Parameters       []ParamRecord `json:"parameters,omitempty"`
	Discussion       []ParaRecord  `json:"discussion,omitempty"`
	ReturnDiscussion []ParaRecord  `json:"return_discussion,omitempty"`
	Substructure     []DeclRecord  `json:"substructure,omitempty"`
}

// ParamRecord serializes one documented parameter.
type ParamRecord struct {
	Name       string       `json:"name"`
	Discussion []ParaRecord `json:"discussion,omitempty"`
}

// ParaRecord serializes one documentation paragraph.
type ParaRecord struct {
	Text string `json:"text"`
	Tag  string `json:"tag,omitempty"`
}

// FileRecord is the per-file value in the output mapping.
type FileRecord struct {
	Substructure []DeclRecord `json:"substructure"`
}

// Map converts a FileMap into the nested output mapping:
// file path → {"substructure": [declaration records]}.
func Map(fm *doc.FileMap) map[string]FileRecord {
	m := make(map[string]FileRecord, len(fm.Files))
	for _, file := range fm.Files {
		decls := fm.ByFile[file]
		records := make([]DeclRecord, 0, len(decls))
		for _, d := range decls {
			records = append(records, record(d))
		}
		m[file] = FileRecord{Substructure: records}
	}
	return m
}

// JSON renders the documentation map as indented JSON with
// deterministically ordered keys.
func JSON(fm *doc.FileMap) ([]byte, error) {
	return json.MarshalIndent(Map(fm), "", "  ")
}

func record(d *doc.Declaration) DeclRecord {
	r := DeclRecord{
		Kind:             string(d.Kind),
		Name:             d.Name,
		USR:              d.USR,
		Signature:        d.Signature,
		File:             d.Location.File,
		Line:             d.Location.Line,
		Column:           d.Location.Column,
		Offset:           d.Location.Offset,
		Discussion:       paragraphs(d.Discussion),
		ReturnDiscussion: paragraphs(d.ReturnDiscussion),
	}
	for _, p := range d.Parameters {
		r.Parameters = append(r.Parameters, ParamRecord{
			Name:       p.Name,
			Discussion: paragraphs(p.Discussion),
		})
	}
	for _, c := range d.Children {
		r.Substructure = append(r.Substructure, record(c))
	}
	return r
}

func paragraphs(ps []doc.Paragraph) []ParaRecord {
	var out []ParaRecord
	for _, p := range ps {
		out = append(out, ParaRecord{Text: p.Text, Tag: p.Tag})
	}
	return out
}
