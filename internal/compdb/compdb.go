// Package compdb parses build-system output: JSON compilation databases
// and raw build logs, yielding translation-unit entries and compiler
// arguments.
package compdb

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phobologic/docmap/internal/lang"
)

// Entry is one translation unit from a compilation database
// (compile_commands.json).
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Parse decodes a compile_commands.json document. A malformed database is
// fatal to the request: the caller gets an error and no partial entries.
func Parse(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing compilation database: %w", err)
	}
	return entries, nil
}

// Args returns the entry's compiler arguments: the explicit argument list
// when present, otherwise the shell-split command line.
func (e *Entry) Args() []string {
	if len(e.Arguments) > 0 {
		return e.Arguments
	}
	return splitCommand(e.Command)
}

// Path returns the entry's source path, resolved against its directory.
func (e *Entry) Path() string {
	if filepath.IsAbs(e.File) || e.Directory == "" {
		return e.File
	}
	return filepath.Join(e.Directory, e.File)
}

// Sources returns the entries' source paths whose extension belongs to the
// target language, in database order, without duplicates.
func Sources(entries []Entry, language string) []string {
	seen := make(map[string]struct{}, len(entries))
	var paths []string
	for i := range entries {
		path := entries[i].Path()
		if lang.ForExtension(filepath.Ext(path)) != language {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths
}

// compilers recognized per target language in raw build logs.
var compilers = map[string][]string{
	"c":   {"cc", "gcc", "clang"},
	"cpp": {"c++", "g++", "clang++"},
}

// BuildArguments scans raw build-log output for the first compiler
// invocation of the target language and returns the arguments following
// the compiler, with the output-file pair dropped. The second result is
// false when no such invocation can be found.
func BuildArguments(output, language string) ([]string, bool) {
	names, ok := compilers[language]
	if !ok {
		return nil, false
	}

	for _, line := range strings.Split(output, "\n") {
		words := splitCommand(line)
		for i, w := range words {
			if !isCompiler(filepath.Base(w), names) {
				continue
			}
			args := dropOutputFlag(words[i+1:])
			if len(args) == 0 {
				break
			}
			return args, true
		}
	}
	return nil, false
}

// SourceArgs returns the arguments that name source files of the target
// language, in order. Used to recover a translation-unit list from a raw
// compiler invocation.
func SourceArgs(args []string, language string) []string {
	var sources []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			continue
		}
		if lang.ForExtension(filepath.Ext(a)) == language {
			sources = append(sources, a)
		}
	}
	return sources
}

func isCompiler(base string, names []string) bool {
	for _, n := range names {
		if base == n {
			return true
		}
	}
	return false
}

func dropOutputFlag(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" {
			i++ // skip the output path as well
			continue
		}
		out = append(out, args[i])
	}
	return out
}

// splitCommand splits a shell command line into words, honoring single and
// double quotes and backslash escapes.
func splitCommand(line string) []string {
	var words []string
	var cur strings.Builder
	var quote byte
	inWord := false

	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inWord = true
		case ch == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
			inWord = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
			inWord = true
		}
	}
	flush()
	return words
}
