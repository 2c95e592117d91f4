package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const documentedSource = `/**
 * Adds two numbers.
 * \param a first operand
 * \param b second operand
 * \return the sum
 */
int add(int a, int b) { return a + b; }
`

func writeSource(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCapture(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := runCapture(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "docmap ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunJSONOutput(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	stdout, _, err := runCapture(t, root)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]struct {
		Substructure []map[string]any `json:"substructure"`
	}
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout)
	}

	file, ok := decoded["math.c"]
	if !ok {
		t.Fatalf("missing math.c key, got %v", decoded)
	}
	if len(file.Substructure) != 1 {
		t.Fatalf("substructure = %v", file.Substructure)
	}
	d := file.Substructure[0]
	if d["name"] != "add" || d["kind"] != "function" || d["usr"] != "c:@F@add" {
		t.Errorf("declaration = %v", d)
	}
}

func TestRunToonFormat(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	stdout, _, err := runCapture(t, "-f", "toon", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "declarations[1]{file,line,column,kind,name,usr,signature,doc}:") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "returns[1]{usr,doc}:") {
		t.Errorf("missing returns table:\n%s", stdout)
	}
}

func TestRunNoParseableFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "notes.txt", "nothing here")

	_, _, err := runCapture(t, root)
	if err == nil || !strings.Contains(err.Error(), "no parseable files") {
		t.Errorf("err = %v", err)
	}
}

func TestRunLanguageFilterExcludesEverything(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	_, _, err := runCapture(t, "-l", "cpp", root)
	if err == nil || !strings.Contains(err.Error(), "no parseable files") {
		t.Errorf("err = %v", err)
	}
}

func TestRunUnsupportedLanguage(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	_, _, err := runCapture(t, "-l", "fortran", root)
	if err == nil || !strings.Contains(err.Error(), "unsupported language") {
		t.Errorf("err = %v", err)
	}
}

func TestRunRootNotDirectory(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	_, _, err := runCapture(t, filepath.Join(root, "math.c"))
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("err = %v", err)
	}
}

func TestRunCompileCommands(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)
	writeSource(t, root, "extra.c", "/** Unwanted helper. */\nint extra(void) { return 1; }\n")
	writeSource(t, root, "compile_commands.json",
		`[{"directory": "`+root+`", "file": "math.c", "command": "gcc -c math.c -o math.o"}]`)

	stdout, _, err := runCapture(t, "--compile-commands", "compile_commands.json", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"math.c"`) {
		t.Errorf("math.c missing:\n%s", stdout)
	}
	if strings.Contains(stdout, "extra.c") {
		t.Errorf("extra.c is not in the database, must not appear:\n%s", stdout)
	}
}

func TestRunMalformedCompileCommands(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)
	writeSource(t, root, "compile_commands.json", `[{"file":`)

	_, _, err := runCapture(t, "--compile-commands", "compile_commands.json", root)
	if err == nil || !strings.Contains(err.Error(), "compilation database") {
		t.Errorf("err = %v", err)
	}
}

func TestRunBuildLog(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)
	writeSource(t, root, "extra.c", "/** Unwanted helper. */\nint extra(void) { return 1; }\n")

	logPath := filepath.Join(root, "build.log")
	if err := os.WriteFile(logPath, []byte("gcc -Wall -c math.c -o math.o\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCapture(t, "--build-log", logPath, root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"math.c"`) || strings.Contains(stdout, "extra.c") {
		t.Errorf("stdout:\n%s", stdout)
	}
}

func TestRunBuildLogNoInvocation(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	logPath := filepath.Join(root, "build.log")
	if err := os.WriteFile(logPath, []byte("echo nothing compiled\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCapture(t, "--build-log", logPath, root)
	if err == nil || !strings.Contains(err.Error(), "no compiler invocation") {
		t.Errorf("err = %v", err)
	}
}

func TestRunMaxFileSizeSkips(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)

	_, stderr, err := runCapture(t, "--max-file-size", "10", root)
	if err == nil {
		t.Fatal("expected failure when every file exceeds the limit")
	}
	if !strings.Contains(stderr, "math.c") {
		t.Errorf("expected a skip warning for math.c, stderr:\n%s", stderr)
	}
}

func TestRunCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.c", documentedSource)
	cachePath := filepath.Join(t.TempDir(), "docmap.cache")

	first, _, err := runCapture(t, "--cache", cachePath, root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache not written: %v", err)
	}

	second, _, err := runCapture(t, "--cache", cachePath, root)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("cached run differs:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"flags first unchanged", []string{"-v", "src"}, []string{"-v", "src"}},
		{"positional before flag", []string{"src", "-v"}, []string{"-v", "src"}},
		{"value flag keeps its value", []string{"src", "-f", "toon"}, []string{"-f", "toon", "src"}},
		{"double dash stops parsing", []string{"-v", "--", "-f"}, []string{"-v", "-f"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := reorderArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
