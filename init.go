package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phobologic/docmap/internal/config"
)

// runInit implements the `docmap init` subcommand, which writes a commented
// starter configuration file into a project directory.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("docmap init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun bool
		force  bool
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without creating the file")
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: docmap init [flags] [directory]

Write a starter %s into a project directory so later docmap runs pick up the
project's languages, output format, and exclusions without flags. Refuses to
overwrite an existing file unless --force is given.

directory defaults to the current directory.

Flags:
`, config.DefaultFileName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	content := defaultConfigFile()

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	path := filepath.Join(dir, config.DefaultFileName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// defaultConfigFile returns the starter configuration with every setting
// present and commented.
func defaultConfigFile() string {
	return `# docmap configuration. Command-line flags override these values.

# Languages to extract documentation from. Empty means all supported
# languages (c, cpp).
languages: []

# Output format: json (nested per-file map) or toon (compact tables).
format: json

# Skip files larger than this many bytes.
max_file_size: 1000000

# Path to a compile_commands.json whose entries define the translation
# units to document. Leave empty to discover files by walking the tree.
compile_commands: ""

# Extra directory names to skip during discovery.
exclude: []
`
}
