package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/automaker/store/internal/sessions"
	"github.com/mark3labs/mcp-go/mcp"
)

// LogAppendTool handles the automaker_log_append MCP tool.
// It appends one entry to a feature's agent log and mirrors it into
// the session index for later search.
type LogAppendTool struct {
	logs  *sessions.LogStore
	index *sessions.Index
}

// NewLogAppendTool creates a LogAppendTool. The index may be nil, in
// which case entries are only written to the JSONL log.
func NewLogAppendTool(logs *sessions.LogStore, index *sessions.Index) *LogAppendTool {
	return &LogAppendTool{logs: logs, index: index}
}

// Definition returns the MCP tool definition for registration.
func (t *LogAppendTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_log_append",
		mcp.WithDescription(
			"Append an entry to a feature's agent log. Entries are stored "+
				"as JSON lines under the feature's logs directory and indexed "+
				"for cross-session search.",
		),
		mcp.WithString("feature_id",
			mcp.Required(),
			mcp.Description("Feature the entry belongs to"),
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Agent session identifier"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Entry content"),
		),
		mcp.WithString("kind",
			mcp.Description("Entry kind: message, tool_use, or error. Defaults to message."),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_log_append tool call.
func (t *LogAppendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	featureID := req.GetString("feature_id", "")
	if featureID == "" {
		return mcp.NewToolResultError("'feature_id' is required"), nil
	}
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	entry := sessions.LogEntry{
		SessionID: sessionID,
		Kind:      req.GetString("kind", sessions.KindMessage),
		Content:   content,
	}
	if err := t.logs.Append(root, featureID, entry); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to append log entry: %v", err)), nil
	}

	if t.index != nil {
		if err := t.index.RecordSession(sessionID, root, featureID); err != nil {
			return nil, fmt.Errorf("recording session: %w", err)
		}
		if _, err := t.index.AddEntry(sessionID, entry); err != nil {
			return nil, fmt.Errorf("indexing entry: %w", err)
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Logged %s entry for feature `%s`", entry.Kind, featureID,
	)), nil
}

// ─── LogSearchTool ──────────────────────────────────────────────────────────

// LogSearchTool handles the automaker_log_search MCP tool.
type LogSearchTool struct {
	index *sessions.Index
}

// NewLogSearchTool creates a LogSearchTool.
func NewLogSearchTool(index *sessions.Index) *LogSearchTool {
	return &LogSearchTool{index: index}
}

// Definition returns the MCP tool definition for automaker_log_search.
func (t *LogSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_log_search",
		mcp.WithDescription(
			"Full-text search across indexed agent log entries from all "+
				"sessions and projects. An empty query returns the most "+
				"recent entries.",
		),
		mcp.WithString("query",
			mcp.Description("Search terms"),
		),
		mcp.WithString("feature_id",
			mcp.Description("Only match entries from this feature"),
		),
		mcp.WithString("kind",
			mcp.Description("Only match entries of this kind (message, tool_use, error)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 20)"),
		),
	)
}

// Handle processes the automaker_log_search tool call.
func (t *LogSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.index.Search(req.GetString("query", ""), sessions.SearchOptions{
		FeatureID: req.GetString("feature_id", ""),
		Kind:      req.GetString("kind", ""),
		Limit:     intArg(req, "limit", 20),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching log entries."), nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Log entries (%d)\n\n", len(results))
	for _, e := range results {
		fmt.Fprintf(&out, "- [%s] **%s** (session `%s`, feature `%s`): %s\n",
			e.CreatedAt, e.Kind, e.SessionID, e.FeatureID, e.Content)
	}

	return mcp.NewToolResultText(out.String()), nil
}

// ─── SessionSummaryTool ─────────────────────────────────────────────────────

// SessionSummaryTool handles the automaker_session_summary MCP tool.
// It writes the feature's summary file and closes the indexed session.
type SessionSummaryTool struct {
	logs  *sessions.LogStore
	index *sessions.Index
}

// NewSessionSummaryTool creates a SessionSummaryTool. The index may be nil.
func NewSessionSummaryTool(logs *sessions.LogStore, index *sessions.Index) *SessionSummaryTool {
	return &SessionSummaryTool{logs: logs, index: index}
}

// Definition returns the MCP tool definition for automaker_session_summary.
func (t *SessionSummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("automaker_session_summary",
		mcp.WithDescription(
			"Store the summary of a finished agent session. Writes the "+
				"feature's summary.md and marks the indexed session as ended.",
		),
		mcp.WithString("feature_id",
			mcp.Required(),
			mcp.Description("Feature the session worked on"),
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session identifier to close"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Markdown summary of what was accomplished"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor with a .automaker/ directory."),
		),
	)
}

// Handle processes the automaker_session_summary tool call.
func (t *SessionSummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	featureID := req.GetString("feature_id", "")
	if featureID == "" {
		return mcp.NewToolResultError("'feature_id' is required"), nil
	}
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	summary := req.GetString("summary", "")
	if summary == "" {
		return mcp.NewToolResultError("'summary' is required"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if err := t.logs.WriteSummary(root, featureID, summary); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write summary: %v", err)), nil
	}

	if t.index != nil {
		if err := t.index.RecordSession(sessionID, root, featureID); err != nil {
			return nil, fmt.Errorf("recording session: %w", err)
		}
		if err := t.index.EndSession(sessionID, summary); err != nil {
			return nil, fmt.Errorf("ending session: %w", err)
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Summary stored for feature `%s`, session `%s` closed", featureID, sessionID,
	)), nil
}
