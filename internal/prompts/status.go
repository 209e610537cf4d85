package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the automaker-status MCP prompt.
// It instructs the AI to read and present the current project state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("automaker-status",
		mcp.WithPromptDescription(
			"Check the current state of the project: features by status, "+
				"recent session activity, and storage throttling health.",
		),
	)
}

// Handle processes the automaker-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Project Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please check my project status.\n\n" +
						"1. Run `automaker_feature_list` and show the features grouped by status\n" +
						"2. Run `automaker_log_search` with an empty query to show recent session activity\n" +
						"3. Run `automaker_throttle_status` and flag anything unusual (queued operations, lowered limits)\n" +
						"4. Tell me what looks like the best thing to work on next",
				),
			},
		},
	}, nil
}
