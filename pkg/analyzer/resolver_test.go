package analyzer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0o644))
	return path
}

func TestResolveRelativeWithExtensionProbing(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")
	want := touch(t, root, "src/child.tsx")

	got, err := r.Resolve("./child", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveProbeOrderPrefersTSX(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")
	tsx := touch(t, root, "src/both.tsx")
	touch(t, root, "src/both.ts")

	got, err := r.Resolve("./both", from)
	require.NoError(t, err)
	assert.Equal(t, tsx, got)
}

func TestResolveExplicitExtension(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")
	want := touch(t, root, "src/child.ts")

	got, err := r.Resolve("./child.ts", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveDirectoryIndex(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")
	want := touch(t, root, "src/widget/index.ts")

	got, err := r.Resolve("./widget", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveParentRelative(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/routes/page.tsx")
	want := touch(t, root, "src/shared.tsx")

	got, err := r.Resolve("../shared", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveAliasUnderProjectSrc(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("{}"), 0o644))
	from := touch(t, root, "src/routes/deep/page.tsx")
	want := touch(t, root, "src/components/counter.tsx")

	got, err := r.Resolve("~/components/counter", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveAliasWithoutProjectRoot(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	// No package.json anywhere under the temp root. The walk can still
	// escape into a parent that happens to carry one, so only assert when
	// resolution fails.
	from := touch(t, root, "src/page.tsx")
	if _, err := r.Resolve("~/missing/thing", from); err != nil {
		assert.ErrorIs(t, err, ErrModuleNotFound)
	}
}

func TestResolveExternalModule(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")

	_, err := r.Resolve("@builder.io/qwik", from)
	assert.ErrorIs(t, err, ErrExternalModule)

	_, err = r.Resolve("lodash", from)
	assert.ErrorIs(t, err, ErrExternalModule)
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")

	_, err := r.Resolve("./does-not-exist", from)
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestResolveCachesResults(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")
	want := touch(t, root, "src/child.tsx")

	first, err := r.Resolve("./child", from)
	require.NoError(t, err)

	// Removing the file does not disturb the cached answer; resolution is
	// cached per (specifier, importing dir).
	require.NoError(t, os.Remove(want))
	second, err := r.Resolve("./child", from)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolvePurgeDropsCachedAnswers(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t)

	from := touch(t, root, "src/page.tsx")

	_, err := r.Resolve("./child", from)
	require.ErrorIs(t, err, ErrModuleNotFound)

	// The file appears after the miss was cached; Purge makes the next
	// probe see it.
	want := touch(t, root, "src/child.tsx")
	_, err = r.Resolve("./child", from)
	require.ErrorIs(t, err, ErrModuleNotFound)

	r.Purge()
	got, err := r.Resolve("./child", from)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
