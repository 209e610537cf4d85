package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/automaker/store/internal/fsio"
	"github.com/mark3labs/mcp-go/mcp"
)

// ThrottleStatusTool handles the automaker_throttle_status MCP tool.
// It reports the current throttling configuration and live counters.
type ThrottleStatusTool struct{}

// NewThrottleStatusTool creates a ThrottleStatusTool.
func NewThrottleStatusTool() *ThrottleStatusTool {
	return &ThrottleStatusTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ThrottleStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_throttle_status",
		mcp.WithDescription(
			"Show the filesystem throttling configuration and the number "+
				"of active and queued operations right now.",
		),
	)
}

// Handle processes the automaker_throttle_status tool call.
func (t *ThrottleStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := fsio.Throttling()

	response := fmt.Sprintf(
		"# Storage Throttling\n\n"+
			"**Max concurrency:** %d\n"+
			"**Max retries:** %d\n"+
			"**Base delay:** %s\n"+
			"**Max delay:** %s\n\n"+
			"**Active operations:** %d\n"+
			"**Pending operations:** %d\n",
		cfg.MaxConcurrency, cfg.MaxRetries, cfg.BaseDelay, cfg.MaxDelay,
		fsio.ActiveOperations(), fsio.PendingOperations(),
	)
	return mcp.NewToolResultText(response), nil
}

// ─── ThrottleConfigureTool ──────────────────────────────────────────────────

// ThrottleConfigureTool handles the automaker_throttle_configure MCP tool.
// Updates merge over the current configuration; an invalid update is
// rejected whole and the previous configuration stays in effect.
type ThrottleConfigureTool struct{}

// NewThrottleConfigureTool creates a ThrottleConfigureTool.
func NewThrottleConfigureTool() *ThrottleConfigureTool {
	return &ThrottleConfigureTool{}
}

// Definition returns the MCP tool definition for automaker_throttle_configure.
func (t *ThrottleConfigureTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_throttle_configure",
		mcp.WithDescription(
			"Adjust filesystem throttling at runtime. Omitted fields keep "+
				"their current values. Invalid updates are rejected without "+
				"changing anything.",
		),
		mcp.WithNumber("max_concurrency",
			mcp.Description("Maximum filesystem operations running at once (min 1)"),
		),
		mcp.WithNumber("max_retries",
			mcp.Description("Retries after the first attempt for transient errors (min 0)"),
		),
		mcp.WithNumber("base_delay_ms",
			mcp.Description("Base backoff delay in milliseconds (min 1)"),
		),
		mcp.WithNumber("max_delay_ms",
			mcp.Description("Backoff delay cap in milliseconds (must be >= base)"),
		),
	)
}

// Handle processes the automaker_throttle_configure tool call.
func (t *ThrottleConfigureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var update fsio.ThrottlingUpdate
	args := req.GetArguments()

	// Presence matters: an explicit invalid value must reach Configure
	// so the whole update is rejected, not silently skipped.
	if _, ok := args["max_concurrency"]; ok {
		v := intArg(req, "max_concurrency", 0)
		update.MaxConcurrency = &v
	}
	if _, ok := args["max_retries"]; ok {
		v := intArg(req, "max_retries", 0)
		update.MaxRetries = &v
	}
	if _, ok := args["base_delay_ms"]; ok {
		d := time.Duration(intArg(req, "base_delay_ms", 0)) * time.Millisecond
		update.BaseDelay = &d
	}
	if _, ok := args["max_delay_ms"]; ok {
		d := time.Duration(intArg(req, "max_delay_ms", 0)) * time.Millisecond
		update.MaxDelay = &d
	}

	if err := fsio.Configure(update); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("configuration rejected: %v", err)), nil
	}

	cfg := fsio.Throttling()
	return mcp.NewToolResultText(fmt.Sprintf(
		"Throttling updated: concurrency=%d retries=%d base=%s max=%s",
		cfg.MaxConcurrency, cfg.MaxRetries, cfg.BaseDelay, cfg.MaxDelay,
	)), nil
}
