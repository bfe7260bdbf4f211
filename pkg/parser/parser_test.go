package parser

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseTypeScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("const x: number = 1;\nexport function f(): string { return \"ok\"; }\n")
	tree, err := manager.Parse(source, LanguageTypeScript, false)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseTSX(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("export const App = () => <div className=\"x\">hi</div>;\n")
	tree, err := manager.Parse(source, LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.Contains(t, root.ToSexp(), "jsx_element")
}

func TestParseJavaScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("const x = 1;\nmodule.exports = { x };\n")
	tree, err := manager.Parse(source, LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "program", tree.RootNode().Kind())
}

func TestParseFile(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	testCases := []struct {
		fileName string
		source   string
	}{
		{"sample.ts", "const a: number = 1;\n"},
		{"sample.tsx", "export const A = () => <p>x</p>;\n"},
		{"sample.js", "const a = 1;\n"},
		{"sample.jsx", "export const A = () => <p>x</p>;\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.fileName, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte(tc.source), tc.fileName)
			require.NoError(t, err)
			require.NotNil(t, tree)
			defer tree.Close()

			assert.Equal(t, "program", tree.RootNode().Kind())
			assert.False(t, tree.RootNode().HasError())
		})
	}
}

func TestParseFileUnknownExtension(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.ParseFile([]byte("x"), "file.rs")
	require.Error(t, err)
}

func TestParseErrorsSurfaceInTree(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("export const App = () => { return <div\n};\n")
	tree, err := manager.ParseFile(source, "broken.tsx")
	require.NoError(t, err, "tree-sitter always produces a tree")
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := manager.ParseFile([]byte("export const A = () => <p>x</p>;\n"), "a.tsx")
			assert.NoError(t, err)
			if tree != nil {
				tree.Close()
			}
		}()
	}
	wg.Wait()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"a.ts", LanguageTypeScript},
		{"a.tsx", LanguageTypeScript},
		{"a.js", LanguageJavaScript},
		{"a.jsx", LanguageJavaScript},
		{"a.go", LanguageUnknown},
		{"a.d.ts", LanguageTypeScript},
		{"a", LanguageUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLanguage(tc.path))
		})
	}
}

func TestIsTSXFile(t *testing.T) {
	assert.True(t, IsTSXFile("a.tsx"))
	assert.False(t, IsTSXFile("a.jsx"), "JSX files use the JavaScript grammar, which carries JSX natively")
	assert.False(t, IsTSXFile("a.ts"))
	assert.False(t, IsTSXFile("a.js"))
}

func TestSupportedExtensionsOrder(t *testing.T) {
	assert.Equal(t, []string{".tsx", ".ts", ".jsx", ".js"}, SupportedExtensions())
}
