// Package mcp exposes the analyzer over the Model Context Protocol so
// editor agents can query component presence and apply transformations
// without shelling out to the CLI.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
)

const serverVersion = "0.1.0-dev"

// Server wraps an MCP server around a shared Analyzer.
type Server struct {
	mcpServer *server.MCPServer
	analyzer  *analyzer.Analyzer
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by the given analyzer.
func NewServer(an *analyzer.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{analyzer: an, logger: logger}

	s.mcpServer = server.NewMCPServer(
		"qwik-analyzer",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: analyzePresenceTool(), Handler: s.handleAnalyzePresence},
		server.ServerTool{Tool: applyTransformationsTool(), Handler: s.handleApplyTransformations},
		server.ServerTool{Tool: scanProjectTool(), Handler: s.handleScanProject},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
