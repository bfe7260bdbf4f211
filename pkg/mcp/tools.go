package mcp

import "github.com/mark3labs/mcp-go/mcp"

func analyzePresenceTool() mcp.Tool {
	return mcp.NewTool("analyze_component_presence",
		mcp.WithDescription("Analyze a source file for isComponentPresent calls and report the resolved verdicts plus the patches that would be applied."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Absolute path of the .ts/.tsx/.js/.jsx file to analyze"),
		),
		mcp.WithString("source",
			mcp.Description("Optional source text overriding the on-disk content, e.g. an unsaved editor buffer"),
		),
	)
}

func applyTransformationsTool() mcp.Tool {
	return mcp.NewTool("apply_transformations",
		mcp.WithDescription("Analyze a source file and return the patched source text with presence props injected and marker calls rewritten."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Absolute path of the file to transform"),
		),
		mcp.WithString("source",
			mcp.Description("Optional source text overriding the on-disk content"),
		),
		mcp.WithBoolean("write",
			mcp.Description("Write the patched text back to disk (default false)"),
		),
	)
}

func scanProjectTool() mcp.Tool {
	return mcp.NewTool("scan_project",
		mcp.WithDescription("Discover source files under a root directory and analyze each, returning a per-file summary."),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Project root directory to scan"),
		),
	)
}
