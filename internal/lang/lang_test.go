package lang

import (
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".c", "c"},
		{".h", "c"},
		{".cpp", "cpp"},
		{".hpp", "cpp"},
		{".cc", "cpp"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"c", "cpp"} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if l.GetLanguage() == nil {
			t.Errorf("%s language is nil", name)
		}
		if l.Classify == nil || l.DeclName == nil || l.Signature == nil {
			t.Errorf("%s is missing hooks", name)
		}
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	c := Languages["c"]
	p := c.NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"int  add(int a,\n         int b)", "int add(int a, int b)"},
		{"  already clean  ", "already clean"},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
