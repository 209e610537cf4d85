// Package tools implements the MCP tool handlers for project storage.
//
// Each tool receives its dependencies via its struct and exposes the
// mcp-go Definition/Handle pair. Every filesystem touch goes through
// the fsio facade, so tool calls are sandboxed to the project root,
// throttled, and retried.
package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/automaker/store/internal/paths"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// resolveProjectRoot returns the explicit root when given, otherwise
// walks up from the working directory looking for an existing
// .automaker/ directory. Falls back to cwd so tools still work in a
// project that has no state yet.
func resolveProjectRoot(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if info, err := os.Stat(paths.ProjectData(current)); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
