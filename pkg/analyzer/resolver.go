package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
)

// Resolution failures are branch-absent conditions, never analysis errors.
// Callers stop exploring the branch when errors.Is matches one of these.
var (
	// ErrExternalModule marks bare package specifiers; they are deliberately
	// not resolved.
	ErrExternalModule = errors.New("external module specifier")
	// ErrModuleNotFound marks local specifiers that resolve to no file.
	ErrModuleNotFound = errors.New("module not found")
)

const (
	// aliasPrefix is the project-root-relative specifier form.
	aliasPrefix = "~/"
	// projectRootMarker identifies the project root while walking parent
	// directories from the importing file.
	projectRootMarker = "package.json"
	// aliasSourceDir is the fixed subdirectory alias specifiers resolve under.
	aliasSourceDir = "src"

	// resolverCacheSize bounds the resolution cache. Resolution is a pure
	// function of (specifier, importing dir, filesystem), so the cache is
	// purely a performance measure: the same module is resolved from many
	// call sites during one presence search.
	resolverCacheSize = 2048
)

type resolveKey struct {
	specifier string
	fromDir   string
}

type resolveEntry struct {
	path string
	err  error
}

// Resolver maps module specifiers to absolute file paths.
//
// Relative specifiers are joined to the importing file's directory; "~/"
// specifiers are joined under <project root>/src. Both are probed against
// the fixed extension order and directory index files. Everything else is
// classified external. Thread-safe.
type Resolver struct {
	cache  *lru.Cache[resolveKey, resolveEntry]
	logger *slog.Logger
}

// NewResolver creates a resolver with a bounded result cache.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[resolveKey, resolveEntry](resolverCacheSize)
	return &Resolver{
		cache:  cache,
		logger: logger,
	}
}

// Purge drops every cached resolution, hits and not-found entries alike.
// Called when the filesystem shape changes, since a specifier that probed
// to nothing may resolve now and vice versa.
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// Resolve maps specifier, as written in importingFile, to an absolute file
// path. Returns ErrExternalModule for bare package specifiers and
// ErrModuleNotFound when probing finds nothing.
func (r *Resolver) Resolve(specifier, importingFile string) (string, error) {
	fromDir := filepath.Dir(importingFile)
	key := resolveKey{specifier: specifier, fromDir: fromDir}

	if entry, ok := r.cache.Get(key); ok {
		return entry.path, entry.err
	}

	path, err := r.resolveUncached(specifier, fromDir)
	r.cache.Add(key, resolveEntry{path: path, err: err})
	return path, err
}

func (r *Resolver) resolveUncached(specifier, fromDir string) (string, error) {
	switch {
	case isRelativeSpecifier(specifier):
		return r.probe(filepath.Join(fromDir, specifier))

	case strings.HasPrefix(specifier, aliasPrefix):
		root, ok := findProjectRoot(fromDir)
		if !ok {
			return "", fmt.Errorf("no %s above %s: %w", projectRootMarker, fromDir, ErrModuleNotFound)
		}
		return r.probe(filepath.Join(root, aliasSourceDir, specifier[len(aliasPrefix):]))

	default:
		return "", fmt.Errorf("%q: %w", specifier, ErrExternalModule)
	}
}

// probe applies the fixed extension and index-file probing order to a
// specifier already joined to its base directory.
func (r *Resolver) probe(base string) (string, error) {
	// Specifier carried an explicit recognized extension.
	if parser.DetectLanguage(base) != parser.LanguageUnknown && isFile(base) {
		return filepath.Clean(base), nil
	}

	for _, ext := range parser.SupportedExtensions() {
		if candidate := base + ext; isFile(candidate) {
			return filepath.Clean(candidate), nil
		}
	}

	if isDir(base) {
		for _, ext := range parser.SupportedExtensions() {
			if candidate := filepath.Join(base, "index"+ext); isFile(candidate) {
				return filepath.Clean(candidate), nil
			}
		}
	}

	r.logger.Debug("module specifier resolved to no file", "base", base)
	return "", fmt.Errorf("%q: %w", base, ErrModuleNotFound)
}

// isRelativeSpecifier reports whether specifier is ./x or ../x form.
func isRelativeSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// findProjectRoot walks parent directories from fromDir until one containing
// the project-root marker file is found.
func findProjectRoot(fromDir string) (string, bool) {
	dir := fromDir
	for {
		if isFile(filepath.Join(dir, projectRootMarker)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
