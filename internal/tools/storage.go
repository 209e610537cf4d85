package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/automaker/store/internal/fsio"
	"github.com/mark3labs/mcp-go/mcp"
)

// StorageReadTool handles the automaker_storage_read MCP tool.
// It reads a file from the project's .automaker tree.
type StorageReadTool struct{}

// NewStorageReadTool creates a StorageReadTool.
func NewStorageReadTool() *StorageReadTool {
	return &StorageReadTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *StorageReadTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_storage_read",
		mcp.WithDescription(
			"Read a file from the project state directory. The path is "+
				"relative to the project root and must stay inside it.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_storage_read tool call.
func (t *StorageReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	io, err := fsio.ForRoot(root)
	if err != nil {
		return nil, fmt.Errorf("opening project root: %w", err)
	}

	data, err := io.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %q: %v", path, err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

// ─── StorageWriteTool ───────────────────────────────────────────────────────

// StorageWriteTool handles the automaker_storage_write MCP tool.
type StorageWriteTool struct{}

// NewStorageWriteTool creates a StorageWriteTool.
func NewStorageWriteTool() *StorageWriteTool {
	return &StorageWriteTool{}
}

// Definition returns the MCP tool definition for automaker_storage_write.
func (t *StorageWriteTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_storage_write",
		mcp.WithDescription(
			"Write a file inside the project state directory, creating "+
				"parent directories as needed. Set append=true to append "+
				"instead of overwriting.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Content to write"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Append to the file instead of overwriting it"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_storage_write tool call.
func (t *StorageWriteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	content, ok := req.GetArguments()["content"].(string)
	if !ok {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	io, err := fsio.ForRoot(root)
	if err != nil {
		return nil, fmt.Errorf("opening project root: %w", err)
	}

	if err := io.MkdirAll(parentDir(path), 0o755); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create directories for %q: %v", path, err)), nil
	}

	if boolArg(req, "append", false) {
		err = io.AppendFile(path, []byte(content), 0o644)
	} else {
		err = io.WriteFile(path, []byte(content), 0o644)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write %q: %v", path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %q", len(content), path)), nil
}

// ─── StorageListTool ────────────────────────────────────────────────────────

// StorageListTool handles the automaker_storage_list MCP tool.
type StorageListTool struct{}

// NewStorageListTool creates a StorageListTool.
func NewStorageListTool() *StorageListTool {
	return &StorageListTool{}
}

// Definition returns the MCP tool definition for automaker_storage_list.
func (t *StorageListTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_storage_list",
		mcp.WithDescription(
			"List the entries of a directory inside the project root. "+
				"Directories are suffixed with a slash.",
		),
		mcp.WithString("path",
			mcp.Description("Directory path relative to the project root. Defaults to the project state directory."),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_storage_list tool call.
func (t *StorageListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", ".automaker")

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	io, err := fsio.ForRoot(root)
	if err != nil {
		return nil, fmt.Errorf("opening project root: %w", err)
	}

	entries, err := io.ReadDir(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list %q: %v", path, err)), nil
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%q is empty", path)), nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// ─── StorageStatTool ────────────────────────────────────────────────────────

// StorageStatTool handles the automaker_storage_stat MCP tool.
type StorageStatTool struct{}

// NewStorageStatTool creates a StorageStatTool.
func NewStorageStatTool() *StorageStatTool {
	return &StorageStatTool{}
}

// Definition returns the MCP tool definition for automaker_storage_stat.
func (t *StorageStatTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_storage_stat",
		mcp.WithDescription(
			"Inspect a file or directory inside the project root: size, "+
				"kind, and modification time.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path relative to the project root"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_storage_stat tool call.
func (t *StorageStatTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	io, err := fsio.ForRoot(root)
	if err != nil {
		return nil, fmt.Errorf("opening project root: %w", err)
	}

	info, err := io.Stat(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stat %q: %v", path, err)), nil
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	response := fmt.Sprintf(
		"**Path:** `%s`\n**Kind:** %s\n**Size:** %d bytes\n**Modified:** %s\n",
		path, kind, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"),
	)
	return mcp.NewToolResultText(response), nil
}

// ─── StorageDeleteTool ──────────────────────────────────────────────────────

// StorageDeleteTool handles the automaker_storage_delete MCP tool.
type StorageDeleteTool struct{}

// NewStorageDeleteTool creates a StorageDeleteTool.
func NewStorageDeleteTool() *StorageDeleteTool {
	return &StorageDeleteTool{}
}

// Definition returns the MCP tool definition for automaker_storage_delete.
func (t *StorageDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_storage_delete",
		mcp.WithDescription(
			"Delete a file or directory inside the project root. "+
				"Directories require recursive=true.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path relative to the project root"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Remove directories and their contents"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_storage_delete tool call.
func (t *StorageDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	io, err := fsio.ForRoot(root)
	if err != nil {
		return nil, fmt.Errorf("opening project root: %w", err)
	}

	if boolArg(req, "recursive", false) {
		err = io.RemoveAll(path)
	} else {
		err = io.Remove(path)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete %q: %v", path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %q", path)), nil
}

// parentDir returns the directory portion of a relative path, or "."
// when the path has no separator.
func parentDir(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx <= 0 {
		return "."
	}
	return path[:idx]
}
