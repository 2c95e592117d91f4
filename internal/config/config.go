// Package config loads docmap settings from an optional YAML file in the
// scan root. Command-line flags override anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/docmap/internal/lang"
)

// DefaultFileName is looked up in the scan root when no explicit config
// path is given.
const DefaultFileName = ".docmap.yml"

const defaultMaxFileSize = 1_000_000 // 1 MB

// Config holds the tool's settings.
type Config struct {
	// Languages restricts extraction to the listed languages; empty means
	// every supported language.
	Languages []string `yaml:"languages"`
	// Format selects the output encoding: "json" or "toon".
	Format string `yaml:"format"`
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int `yaml:"max_file_size"`
	// CompileCommands points at a compile_commands.json whose entries
	// define the translation units to document, instead of discovery.
	CompileCommands string `yaml:"compile_commands"`
	// Exclude lists directory names to skip during discovery.
	Exclude []string `yaml:"exclude"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:      "json",
		MaxFileSize: defaultMaxFileSize,
	}
}

// Load returns the configuration for a scan root: Default overlaid with
// the root's .docmap.yml when one exists. A missing file is not an error;
// a malformed one is.
func Load(root string) (Config, error) {
	path := filepath.Join(root, DefaultFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	for _, name := range c.Languages {
		if _, ok := lang.Languages[name]; !ok {
			return fmt.Errorf("unsupported language %q", name)
		}
	}
	switch c.Format {
	case "json", "toon":
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	return nil
}
