// Package runner drives the analyzer over many files: glob-based discovery,
// a parallel worker pool for batch runs, and a debounced filesystem watcher
// for incremental re-analysis.
package runner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
)

// ScanConfig holds the discovery globs, matched against paths relative to
// the scan root using forward slashes.
type ScanConfig struct {
	// Include globs; empty means every recognized source file.
	Include []string
	// Exclude globs, applied to files and directories (a matching directory
	// is skipped entirely).
	Exclude []string
}

// DefaultScanConfig excludes the directories no render tree reaches into.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{"**/*.tsx", "**/*.ts", "**/*.jsx", "**/*.js"},
		Exclude: []string{"**/node_modules/**", "**/dist/**", "**/build/**", "**/.git/**"},
	}
}

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
// Files whose extension is not one of the recognized kinds are dropped even
// when an include glob matches them.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range cfg.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if parser.DetectLanguage(path) == parser.LanguageUnknown {
			return nil
		}

		if len(cfg.Include) > 0 {
			matched := false
			for _, pattern := range cfg.Include {
				if m, _ := doublestar.PathMatch(pattern, relPath); m {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
