// docmap extracts structured documentation from C and C++ sources into a
// per-file map of documented declarations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/phobologic/docmap/internal/comment"
	"github.com/phobologic/docmap/internal/compdb"
	"github.com/phobologic/docmap/internal/config"
	"github.com/phobologic/docmap/internal/discover"
	"github.com/phobologic/docmap/internal/doc"
	"github.com/phobologic/docmap/internal/encode"
	"github.com/phobologic/docmap/internal/extract"
	"github.com/phobologic/docmap/internal/frontend"
	"github.com/phobologic/docmap/internal/lang"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(os.Args[2:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("docmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		langs       string
		format      string
		cachePath   string
		compileDB   string
		buildLog    string
		maxFileSize int
		verbose     bool
		showVersion bool
	)

	fs.StringVar(&langs, "l", "", "comma-separated languages to include")
	fs.StringVar(&langs, "langs", "", "comma-separated languages to include")
	fs.StringVar(&format, "f", "", "output format: json or toon")
	fs.StringVar(&format, "format", "", "output format: json or toon")
	fs.StringVar(&cachePath, "cache", "", "cache file path")
	fs.StringVar(&compileDB, "compile-commands", "", "compile_commands.json defining the translation units")
	fs.StringVar(&buildLog, "build-log", "", "raw build log to recover translation units from")
	fs.IntVar(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	fs.BoolVar(&verbose, "v", false, "verbose diagnostics")
	fs.BoolVar(&verbose, "verbose", false, "verbose diagnostics")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "docmap %s\n", version)
		return nil
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if format != "" {
		cfg.Format = format
	}
	if maxFileSize > 0 {
		cfg.MaxFileSize = maxFileSize
	}
	if compileDB != "" {
		cfg.CompileCommands = compileDB
	}
	if langs != "" {
		cfg.Languages = nil
		for _, name := range strings.Split(langs, ",") {
			cfg.Languages = append(cfg.Languages, strings.TrimSpace(name))
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Determine the translation units to document
	var files []discover.FileEntry
	switch {
	case buildLog != "":
		files, err = unitsFromBuildLog(root, buildLog, cfg.Languages)
	case cfg.CompileCommands != "":
		files, err = unitsFromCompileCommands(root, cfg.CompileCommands, cfg.Languages)
	default:
		files, err = discover.Files(root, cfg.Languages, cfg.Exclude)
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no parseable files found")
	}

	// Check cache freshness
	if cachePath != "" && cacheIsFresh(cachePath, root, files) {
		data, err := os.ReadFile(cachePath)
		if err == nil {
			_, _ = stdout.Write(data)
			return nil
		}
	}

	// Filter by size
	files = filterBySize(root, files, cfg.MaxFileSize, log)
	if len(files) == 0 {
		return fmt.Errorf("no parseable files found (all exceeded size limit)")
	}

	// Parse translation units concurrently
	units := parseUnitsConcurrent(root, files, log)
	if len(units) == 0 {
		return fmt.Errorf("no files could be parsed")
	}

	// Extract, dedup, sort, group
	var obs comment.Observer
	if verbose {
		obs = &nodeLogger{log: log}
	}
	decls, err := extract.FromUnits(context.Background(), units, obs)
	if err != nil {
		return err
	}
	fm := extract.Organize(decls)

	output, err := render(fm, cfg.Format)
	if err != nil {
		return err
	}

	// Write cache
	if cachePath != "" {
		_ = os.WriteFile(cachePath, []byte(output+"\n"), 0o644)
	}

	_, _ = fmt.Fprintln(stdout, output)
	return nil
}

// unitsFromCompileCommands derives the file list from a compilation
// database. A malformed database aborts the whole request.
func unitsFromCompileCommands(root, dbPath string, languages []string) ([]discover.FileEntry, error) {
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	raw, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("reading compilation database: %w", err)
	}
	entries, err := compdb.Parse(raw)
	if err != nil {
		return nil, err
	}

	var files []discover.FileEntry
	for _, language := range languagesOrAll(languages) {
		for _, path := range compdb.Sources(entries, language) {
			files = append(files, fileEntry(root, path, language))
		}
	}
	return files, nil
}

// unitsFromBuildLog recovers the file list from a raw build log. Logs with
// no recognizable compiler invocation abort the whole request.
func unitsFromBuildLog(root, logPath string, languages []string) ([]discover.FileEntry, error) {
	raw, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("reading build log: %w", err)
	}

	var files []discover.FileEntry
	parsed := false
	for _, language := range languagesOrAll(languages) {
		args, ok := compdb.BuildArguments(string(raw), language)
		if !ok {
			continue
		}
		parsed = true
		for _, path := range compdb.SourceArgs(args, language) {
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			files = append(files, fileEntry(root, path, language))
		}
	}
	if !parsed {
		return nil, fmt.Errorf("%s: no compiler invocation found", logPath)
	}
	return files, nil
}

func fileEntry(root, path, language string) discover.FileEntry {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return discover.FileEntry{Path: path, Language: language}
}

func languagesOrAll(languages []string) []string {
	if len(languages) > 0 {
		return languages
	}
	all := make([]string, 0, len(lang.Languages))
	for name := range lang.Languages {
		all = append(all, name)
	}
	sort.Strings(all)
	return all
}

func render(fm *doc.FileMap, format string) (string, error) {
	if format == "toon" {
		return encode.TOON(fm), nil
	}
	data, err := encode.JSON(fm)
	if err != nil {
		return "", fmt.Errorf("encoding output: %w", err)
	}
	return string(data), nil
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, log *logrus.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			log.Warnf("%s: skipped (>%d bytes)", f.Path, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func parseUnitsConcurrent(root string, files []discover.FileEntry, log *logrus.Logger) []extract.Unit {
	type result struct {
		index int
		unit  *frontend.Unit
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parsing backend handle
			ix := frontend.NewIndex()

			for idx := range work {
				f := files[idx]
				absPath := filepath.Join(root, f.Path)
				source, err := os.ReadFile(absPath)
				if err != nil {
					log.Warnf("failed to read %s: %v", f.Path, err)
					continue
				}

				unit, err := ix.Open(context.Background(), f.Path, f.Language, source)
				if err != nil {
					log.Warnf("failed to parse %s: %v", f.Path, err)
					continue
				}
				results <- result{index: idx, unit: unit}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*frontend.Unit, len(files))
	for r := range results {
		indexed[r.index] = r.unit
	}

	var units []extract.Unit
	for _, u := range indexed {
		if u != nil {
			units = append(units, u)
		}
	}

	return units
}

// nodeLogger logs every comment node the classifier visits, at debug level.
type nodeLogger struct {
	log *logrus.Logger
}

func (n *nodeLogger) VisitNode(kind comment.NodeKind, command string) {
	entry := n.log.WithField("kind", kind.String())
	if command != "" {
		entry = entry.WithField("command", command)
	}
	entry.Debug("comment node")
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-l": true, "--l": true,
	"-langs": true, "--langs": true,
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-cache": true, "--cache": true,
	"-compile-commands": true, "--compile-commands": true,
	"-build-log": true, "--build-log": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
