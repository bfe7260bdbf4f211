package runner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relPaths(t *testing.T, root string, abs []string) []string {
	t.Helper()
	rels := make([]string, 0, len(abs))
	for _, p := range abs {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func TestDiscoverFilesDefaults(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.tsx":                     "",
		"src/b.ts":                      "",
		"src/c.jsx":                     "",
		"src/d.js":                      "",
		"src/readme.md":                 "",
		"node_modules/pkg/index.ts":     "",
		"dist/out.js":                   "",
		"src/deep/nested/component.tsx": "",
	})

	files, err := DiscoverFiles(root, DefaultScanConfig())
	require.NoError(t, err)

	rels := relPaths(t, root, files)
	assert.ElementsMatch(t, []string{
		"src/a.tsx", "src/b.ts", "src/c.jsx", "src/d.js",
		"src/deep/nested/component.tsx",
	}, rels)
}

func TestDiscoverFilesSorted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/z.tsx": "",
		"src/a.tsx": "",
		"src/m.tsx": "",
	})

	files, err := DiscoverFiles(root, DefaultScanConfig())
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(files))
}

func TestDiscoverFilesIncludeFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.tsx":    "",
		"src/b.ts":     "",
		"other/c.tsx":  "",
		"src/sub/d.ts": "",
	})

	cfg := ScanConfig{Include: []string{"src/**/*.tsx"}}
	files, err := DiscoverFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.tsx"}, relPaths(t, root, files))
}

func TestDiscoverFilesCustomExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.tsx":               "",
		"src/__tests__/a.test.ts": "",
	})

	cfg := DefaultScanConfig()
	cfg.Exclude = append(cfg.Exclude, "**/__tests__/**")
	files, err := DiscoverFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.tsx"}, relPaths(t, root, files))
}

func TestDiscoverFilesDropsUnrecognizedEvenWhenIncluded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.tsx": "",
		"src/b.css": "",
	})

	cfg := ScanConfig{Include: []string{"src/**"}}
	files, err := DiscoverFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.tsx"}, relPaths(t, root, files))
}

func TestDiscoverFilesInvalidPattern(t *testing.T) {
	_, err := DiscoverFiles(t.TempDir(), ScanConfig{Include: []string{"[unclosed"}})
	require.Error(t, err)

	_, err = DiscoverFiles(t.TempDir(), ScanConfig{Exclude: []string{"[unclosed"}})
	require.Error(t, err)
}
