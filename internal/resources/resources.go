// Package resources implements MCP resource handlers for project storage.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (automaker://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/automaker/store/internal/fsio"
	"github.com/automaker/store/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages storage resource endpoints.
type Handler struct {
	settings settings.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(settings settings.Store) *Handler {
	return &Handler{settings: settings}
}

// StorageStatusResource returns the MCP resource definition for the
// throttling status endpoint.
func (h *Handler) StorageStatusResource() mcp.Resource {
	return mcp.NewResource(
		"automaker://storage/status",
		"Storage Throttling Status",
		mcp.WithResourceDescription("Current throttling configuration and live operation counters"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStorageStatus returns the throttling configuration and the
// live counters as JSON.
func (h *Handler) HandleStorageStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cfg := fsio.Throttling()

	status := struct {
		MaxConcurrency    int    `json:"max_concurrency"`
		MaxRetries        int    `json:"max_retries"`
		BaseDelay         string `json:"base_delay"`
		MaxDelay          string `json:"max_delay"`
		ActiveOperations  int    `json:"active_operations"`
		PendingOperations int    `json:"pending_operations"`
	}{
		MaxConcurrency:    cfg.MaxConcurrency,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         cfg.BaseDelay.String(),
		MaxDelay:          cfg.MaxDelay.String(),
		ActiveOperations:  fsio.ActiveOperations(),
		PendingOperations: fsio.PendingOperations(),
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// SettingsResource returns the MCP resource definition for effective
// settings.
func (h *Handler) SettingsResource() mcp.Resource {
	return mcp.NewResource(
		"automaker://settings/effective",
		"Effective Settings",
		mcp.WithResourceDescription("Global settings merged with the current project's overrides"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSettings returns the merged settings for the current project
// as JSON.
func (h *Handler) HandleSettings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	merged, err := h.settings.Effective(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling settings: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
