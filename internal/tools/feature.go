package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/automaker/store/internal/features"
	"github.com/mark3labs/mcp-go/mcp"
)

// FeatureCreateTool handles the automaker_feature_create MCP tool.
type FeatureCreateTool struct {
	store features.Store
}

// NewFeatureCreateTool creates a FeatureCreateTool with the given store.
func NewFeatureCreateTool(store features.Store) *FeatureCreateTool {
	return &FeatureCreateTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *FeatureCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_feature_create",
		mcp.WithDescription(
			"Create a new feature record in the project state directory. "+
				"The feature ID is derived from the title; collisions get a "+
				"numeric suffix.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short human-readable feature title"),
		),
		mcp.WithString("description",
			mcp.Description("Longer description of what the feature should do"),
		),
		mcp.WithString("agent",
			mcp.Description("Agent assigned to work on the feature"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_feature_create tool call.
func (t *FeatureCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	feature := features.NewFeatureRecord(title, req.GetString("description", ""))
	feature.Agent = req.GetString("agent", "")

	if err := t.store.Create(root, feature); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create feature: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Created feature `%s` (status: %s)", feature.ID, feature.Status,
	)), nil
}

// ─── FeatureListTool ────────────────────────────────────────────────────────

// FeatureListTool handles the automaker_feature_list MCP tool.
type FeatureListTool struct {
	store features.Store
}

// NewFeatureListTool creates a FeatureListTool with the given store.
func NewFeatureListTool(store features.Store) *FeatureListTool {
	return &FeatureListTool{store: store}
}

// Definition returns the MCP tool definition for automaker_feature_list.
func (t *FeatureListTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_feature_list",
		mcp.WithDescription(
			"List all feature records in the project, including archived "+
				"ones, with their status and assigned agent.",
		),
		mcp.WithString("status",
			mcp.Description("Only show features with this status (backlog, in_progress, completed, failed, archived)"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_feature_list tool call.
func (t *FeatureListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	list, err := t.store.List(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list features: %v", err)), nil
	}

	statusFilter := req.GetString("status", "")

	var table strings.Builder
	table.WriteString("| Feature | Status | Agent | Attempts |\n")
	table.WriteString("|---------|--------|-------|----------|\n")

	count := 0
	for _, f := range list {
		if statusFilter != "" && string(f.Status) != statusFilter {
			continue
		}
		agent := f.Agent
		if agent == "" {
			agent = "—"
		}
		fmt.Fprintf(&table, "| `%s` | %s | %s | %d |\n", f.ID, f.Status, agent, f.Attempts)
		count++
	}

	if count == 0 {
		return mcp.NewToolResultText("No features found."), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Features (%d)\n\n%s", count, table.String(),
	)), nil
}

// ─── FeatureUpdateTool ──────────────────────────────────────────────────────

// FeatureUpdateTool handles the automaker_feature_update MCP tool.
// It moves a feature through its lifecycle and tracks attempts.
type FeatureUpdateTool struct {
	store features.Store
}

// NewFeatureUpdateTool creates a FeatureUpdateTool with the given store.
func NewFeatureUpdateTool(store features.Store) *FeatureUpdateTool {
	return &FeatureUpdateTool{store: store}
}

// Definition returns the MCP tool definition for automaker_feature_update.
func (t *FeatureUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_feature_update",
		mcp.WithDescription(
			"Update a feature's status or assigned agent. Moving to "+
				"in_progress increments the attempt counter.",
		),
		mcp.WithString("feature_id",
			mcp.Required(),
			mcp.Description("Feature ID to update"),
		),
		mcp.WithString("status",
			mcp.Description("New status (backlog, in_progress, completed, failed)"),
		),
		mcp.WithString("agent",
			mcp.Description("New assigned agent"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_feature_update tool call.
func (t *FeatureUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	featureID := req.GetString("feature_id", "")
	if featureID == "" {
		return mcp.NewToolResultError("'feature_id' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	feature, err := t.store.Load(root, featureID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feature %q not found: %v", featureID, err)), nil
	}

	if status := req.GetString("status", ""); status != "" {
		next := features.Status(status)
		if !features.ValidStatus(next) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", status)), nil
		}
		if next == features.StatusInProgress && feature.Status != features.StatusInProgress {
			feature.Attempts++
		}
		feature.Status = next
	}
	if agent := req.GetString("agent", ""); agent != "" {
		feature.Agent = agent
	}

	if err := t.store.Save(root, feature); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save feature: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Updated feature `%s` (status: %s, attempts: %d)",
		feature.ID, feature.Status, feature.Attempts,
	)), nil
}

// ─── FeatureArchiveTool ─────────────────────────────────────────────────────

// FeatureArchiveTool handles the automaker_feature_archive MCP tool.
type FeatureArchiveTool struct {
	store features.Store
}

// NewFeatureArchiveTool creates a FeatureArchiveTool with the given store.
func NewFeatureArchiveTool(store features.Store) *FeatureArchiveTool {
	return &FeatureArchiveTool{store: store}
}

// Definition returns the MCP tool definition for automaker_feature_archive.
func (t *FeatureArchiveTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_feature_archive",
		mcp.WithDescription(
			"Archive a finished feature, moving its directory into the "+
				"project history. Features still in progress are refused.",
		),
		mcp.WithString("feature_id",
			mcp.Required(),
			mcp.Description("Feature ID to archive"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_feature_archive tool call.
func (t *FeatureArchiveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	featureID := req.GetString("feature_id", "")
	if featureID == "" {
		return mcp.NewToolResultError("'feature_id' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if err := t.store.Archive(root, featureID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to archive feature %q: %v", featureID, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Archived feature `%s`", featureID)), nil
}
