package encode

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/phobologic/docmap/internal/doc"
)

func sampleMap() *doc.FileMap {
	add := &doc.Declaration{
		Kind:      doc.Function,
		Location:  doc.Location{File: "a.c", Line: 3, Column: 1, Offset: 12},
		Name:      "add",
		USR:       "c:@F@add",
		Signature: "int add(int a, int b)",
		Parameters: []doc.Parameter{
			{Name: "a", Discussion: []doc.Paragraph{{Text: "first"}}},
		},
		Discussion:       []doc.Paragraph{{Text: "Adds."}},
		ReturnDiscussion: []doc.Paragraph{{Text: "the sum"}},
	}
	point := &doc.Declaration{
		Kind:      doc.Struct,
		Location:  doc.Location{File: "b.h", Line: 1, Column: 1},
		Name:      "point",
		USR:       "c:@S@point",
		Signature: "struct point",
		Children: []*doc.Declaration{{
			Kind:       doc.Field,
			Location:   doc.Location{File: "b.h", Line: 2, Column: 2},
			Name:       "x",
			USR:        "c:@S@point@FI@x",
			Signature:  "int x",
			Discussion: []doc.Paragraph{{Text: "X coordinate."}},
		}},
		Discussion: []doc.Paragraph{{Text: "A point.", Tag: ""}},
	}
	return doc.NewFileMap([]*doc.Declaration{add, point})
}

func TestMapGroupsByFile(t *testing.T) {
	t.Parallel()

	m := Map(sampleMap())
	if len(m) != 2 {
		t.Fatalf("expected 2 files, got %d", len(m))
	}

	a, ok := m["a.c"]
	if !ok || len(a.Substructure) != 1 {
		t.Fatalf("a.c substructure = %+v", a.Substructure)
	}
	r := a.Substructure[0]
	if r.Name != "add" || r.Kind != "function" || r.Line != 3 {
		t.Errorf("record = %+v", r)
	}
	if len(r.Parameters) != 1 || r.Parameters[0].Name != "a" {
		t.Errorf("parameters = %+v", r.Parameters)
	}
	if len(r.ReturnDiscussion) != 1 || r.ReturnDiscussion[0].Text != "the sum" {
		t.Errorf("return discussion = %+v", r.ReturnDiscussion)
	}

	b := m["b.h"]
	if len(b.Substructure) != 1 || len(b.Substructure[0].Substructure) != 1 {
		t.Fatalf("b.h substructure = %+v", b.Substructure)
	}
	if got := b.Substructure[0].Substructure[0].Name; got != "x" {
		t.Errorf("nested field name = %q", got)
	}
}

func TestJSONNestsChildrenUnderSubstructure(t *testing.T) {
	t.Parallel()

	raw, err := JSON(sampleMap())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]FileRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded["b.h"].Substructure[0].Substructure) != 1 {
		t.Error("nested field lost in round trip")
	}

	out := string(raw)
	if !strings.Contains(out, `"substructure"`) {
		t.Error("missing substructure key")
	}
	if !strings.Contains(out, `"return_discussion"`) {
		t.Error("missing return_discussion key")
	}
}

func TestJSONOmitsEmptySections(t *testing.T) {
	t.Parallel()

	fm := doc.NewFileMap([]*doc.Declaration{{
		Kind:     doc.Variable,
		Location: doc.Location{File: "g.c", Line: 1, Column: 1},
		Name:     "verbosity",
		USR:      "c:@V@verbosity",
	}})

	raw, err := JSON(fm)
	if err != nil {
		t.Fatal(err)
	}
	out := string(raw)
	for _, key := range []string{`"parameters"`, `"discussion"`, `"return_discussion"`} {
		if strings.Contains(out, key) {
			t.Errorf("empty %s must be omitted", key)
		}
	}
}

func TestJSONDeterministic(t *testing.T) {
	t.Parallel()

	a, err := JSON(sampleMap())
	if err != nil {
		t.Fatal(err)
	}
	b, err := JSON(sampleMap())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("repeated encoding differs")
	}
}

func TestTOON(t *testing.T) {
	t.Parallel()

	fm := doc.NewFileMap([]*doc.Declaration{{
		Kind:      doc.Function,
		Location:  doc.Location{File: "a.c", Line: 3, Column: 1},
		Name:      "add",
		USR:       "c:@F@add",
		Signature: "int add(int a, int b)",
		Parameters: []doc.Parameter{
			{Name: "a", Discussion: []doc.Paragraph{{Text: "first"}}},
		},
		Discussion:       []doc.Paragraph{{Text: "Adds."}},
		ReturnDiscussion: []doc.Paragraph{{Text: "the sum"}},
	}})

	want := `files[1]{path,declarations}:
  a.c,1
declarations[1]{file,line,column,kind,name,usr,signature,doc}:
  a.c,3,1,function,add,"c:@F@add","int add(int a, int b)",Adds.
parameters[1]{usr,name,doc}:
  "c:@F@add",a,first
returns[1]{usr,doc}:
  "c:@F@add",the sum`

	if got := TOON(fm); got != want {
		t.Errorf("TOON output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTOONFlattensChildren(t *testing.T) {
	t.Parallel()

	out := TOON(sampleMap())
	if !strings.Contains(out, "declarations[3]") {
		t.Errorf("expected 3 flattened declarations:\n%s", out)
	}
	if !strings.Contains(out, `"c:@S@point@FI@x"`) {
		t.Errorf("nested field missing from table:\n%s", out)
	}
}

func TestTOONEmptyMap(t *testing.T) {
	t.Parallel()

	out := TOON(doc.NewFileMap(nil))
	if !strings.Contains(out, "files[0]") || !strings.Contains(out, "declarations[0]") {
		t.Errorf("headers missing for empty map:\n%s", out)
	}
	if strings.Contains(out, "parameters[") || strings.Contains(out, "returns[") {
		t.Errorf("empty sections must be dropped:\n%s", out)
	}
}

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"plain", "plain"},
		{"two words", "two words"},
		{"42", "42"},
		{"-3.5", "-3.5"},
		{"true", `"true"`},
		{"has,comma", `"has,comma"`},
		{"c:@F@add", `"c:@F@add"`},
		{"a\nb", `"a\nb"`},
		{" padded", `" padded"`},
		{"-flag", `"-flag"`},
	}
	for _, tt := range tests {
		if got := encodeValue(tt.in); got != tt.want {
			t.Errorf("encodeValue(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
