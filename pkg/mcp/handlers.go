package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
	"github.com/thejackshelton/qwik-analyzer/pkg/runner"
)

type analyzeResponse struct {
	File            string           `json:"file"`
	HasComponent    bool             `json:"has_component"`
	Transformations []analyzer.Patch `json:"transformations"`
}

func (s *Server) handleAnalyzePresence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var source []byte
	if text := req.GetString("source", ""); text != "" {
		source = []byte(text)
	}

	result, err := s.analyzer.Analyze(file, source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return marshalResult(analyzeResponse{
		File:            file,
		HasComponent:    result.HasComponent,
		Transformations: result.Transformations,
	})
}

func (s *Server) handleApplyTransformations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var source []byte
	if text := req.GetString("source", ""); text != "" {
		source = []byte(text)
	}

	patched, err := s.analyzer.AnalyzeAndApply(file, source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("transformation failed: %v", err)), nil
	}

	if req.GetBool("write", false) {
		if err := os.WriteFile(file, []byte(patched), 0o644); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to write %s: %v", file, err)), nil
		}
		s.analyzer.InvalidateFile(file)
	}

	return mcp.NewToolResultText(patched), nil
}

type scanEntry struct {
	File         string `json:"file"`
	HasComponent bool   `json:"has_component"`
	PatchCount   int    `json:"patch_count"`
	Error        string `json:"error,omitempty"`
}

func (s *Server) handleScanProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := runner.RunBatch(s.analyzer, root, runner.DefaultScanConfig(), false, s.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	entries := make([]scanEntry, 0, len(report.Results)+len(report.Errors))
	for _, res := range report.Results {
		entries = append(entries, scanEntry{
			File:         res.FilePath,
			HasComponent: res.Result.HasComponent,
			PatchCount:   len(res.Result.Transformations),
		})
	}
	for _, ferr := range report.Errors {
		entries = append(entries, scanEntry{File: ferr.FilePath, Error: ferr.Error.Error()})
	}

	return marshalResult(entries)
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
