package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
)

// --- helpers ---

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	an := analyzer.New(analyzer.Config{Logger: logger})
	t.Cleanup(func() { _ = an.Close() })
	return NewServer(an, logger)
}

func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"package.json": `{}`,
		"src/root.tsx": `import { component$, Slot } from "@builder.io/qwik";
import { isComponentPresent } from "@builder.io/qwik/build";
import { Child } from "./child";

export const Root = component$(() => {
  isComponentPresent(Child);
  return <Slot />;
});
`,
		"src/child.tsx": `import { component$ } from "@builder.io/qwik";

export const Child = component$(() => {
  return <b>c</b>;
});
`,
		"src/page.tsx": `import { component$ } from "@builder.io/qwik";
import { Root } from "./root";
import { Child } from "./child";

export default component$(() => {
  return (
    <Root>
      <Child />
    </Root>
  );
});
`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- analyze_component_presence ---

func TestHandleAnalyzePresence(t *testing.T) {
	root := fixtureProject(t)
	s := testServer(t)

	result, err := s.handleAnalyzePresence(context.Background(), makeRequest("analyze_component_presence", map[string]any{
		"file": filepath.Join(root, "src", "page.tsx"),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, true, resp["has_component"])

	patches, ok := resp["transformations"].([]any)
	require.True(t, ok)
	assert.Len(t, patches, 1)
}

func TestHandleAnalyzePresence_MissingFileArg(t *testing.T) {
	s := testServer(t)

	result, err := s.handleAnalyzePresence(context.Background(), makeRequest("analyze_component_presence", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAnalyzePresence_SourceOverride(t *testing.T) {
	root := fixtureProject(t)
	s := testServer(t)

	// The buffer renders nothing, so the verdict flips to false even though
	// the on-disk file would report true.
	result, err := s.handleAnalyzePresence(context.Background(), makeRequest("analyze_component_presence", map[string]any{
		"file":   filepath.Join(root, "src", "page.tsx"),
		"source": "export const nothing = 1;\n",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, false, resp["has_component"])
}

// --- apply_transformations ---

func TestHandleApplyTransformations(t *testing.T) {
	root := fixtureProject(t)
	s := testServer(t)

	result, err := s.handleApplyTransformations(context.Background(), makeRequest("apply_transformations", map[string]any{
		"file": filepath.Join(root, "src", "root.tsx"),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	patched := resultText(t, result)
	assert.Contains(t, patched, "isComponentPresent(Child, props.__qwik_analyzer_has_Child)")

	// Without write the disk copy is untouched.
	disk, err := os.ReadFile(filepath.Join(root, "src", "root.tsx"))
	require.NoError(t, err)
	assert.NotContains(t, string(disk), "props.__qwik_analyzer_has_Child")
}

func TestHandleApplyTransformations_Write(t *testing.T) {
	root := fixtureProject(t)
	s := testServer(t)
	file := filepath.Join(root, "src", "root.tsx")

	result, err := s.handleApplyTransformations(context.Background(), makeRequest("apply_transformations", map[string]any{
		"file":  file,
		"write": true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	disk, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(disk), "props.__qwik_analyzer_has_Child")
}

func TestHandleApplyTransformations_AnalysisError(t *testing.T) {
	root := t.TempDir()
	s := testServer(t)

	broken := filepath.Join(root, "broken.tsx")
	require.NoError(t, os.WriteFile(broken, []byte("export const B = () => { return <div\n};\n"), 0o644))

	result, err := s.handleApplyTransformations(context.Background(), makeRequest("apply_transformations", map[string]any{
		"file": broken,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// --- scan_project ---

func TestHandleScanProject(t *testing.T) {
	root := fixtureProject(t)
	s := testServer(t)

	result, err := s.handleScanProject(context.Background(), makeRequest("scan_project", map[string]any{
		"root": root,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
	assert.Len(t, entries, 3)
}

func TestHandleScanProject_MissingRootArg(t *testing.T) {
	s := testServer(t)

	result, err := s.handleScanProject(context.Background(), makeRequest("scan_project", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
