// Package prompts implements MCP prompt handlers for project storage.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// SessionStartPrompt handles the automaker-session-start MCP prompt.
// It guides the AI to recover context from past sessions and begin
// logging a new one.
type SessionStartPrompt struct{}

// NewSessionStartPrompt creates a SessionStartPrompt.
func NewSessionStartPrompt() *SessionStartPrompt {
	return &SessionStartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SessionStartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("automaker-session-start",
		mcp.WithPromptDescription(
			"Start a new agent session against a feature. Recovers what "+
				"earlier sessions did, then begins logging the new session.",
		),
		mcp.WithArgument("feature_id",
			mcp.ArgumentDescription("Feature to work on. If omitted, pick from the feature list."),
		),
	)
}

// Handle processes the automaker-session-start prompt request.
func (p *SessionStartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	featureID := ""
	if args := req.Params.Arguments; args != nil {
		if f, ok := args["feature_id"]; ok && f != "" {
			featureID = f
		}
	}

	featureStep := "1. Run `automaker_feature_list` and ask me which feature to work on\n"
	if featureID != "" {
		featureStep = fmt.Sprintf("1. We're working on feature '%s'\n", featureID)
	}

	return &mcp.GetPromptResult{
		Description: "Start an agent session",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to start a new agent session.\n\n" +
						"Please:\n" +
						featureStep +
						"2. Run `automaker_log_search` for the feature to recover what earlier sessions did\n" +
						"3. Move the feature to in_progress with `automaker_feature_update`\n" +
						"4. Pick a fresh session ID and log every significant step with `automaker_log_append`\n" +
						"5. When we're done, store a summary with `automaker_session_summary`",
				),
			},
		},
	}, nil
}
