// ABOUTME: Feedback MCP tool handlers for employees
// ABOUTME: Implements my_feedback and acknowledge_feedback
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type MyFeedbackInput struct {
	PendingOnly bool `json:"pending_only,omitempty" jsonschema:"Only return feedback not yet acknowledged"`
}

func (h *FeedbackHandlers) MyFeedback(ctx context.Context, request *mcp.CallToolRequest, input MyFeedbackInput) (*mcp.CallToolResult, FeedbackListOutput, error) {
	timeline, err := h.store.Timeline(ctx)
	if err != nil {
		return nil, FeedbackListOutput{}, fmt.Errorf("failed to load feedback: %w", err)
	}

	result := make([]FeedbackOutput, 0, len(timeline))
	for _, item := range timeline {
		if input.PendingOnly && item.Acknowledged {
			continue
		}
		result = append(result, feedbackToOutput(item))
	}
	return nil, FeedbackListOutput{Feedback: result}, nil
}

type AcknowledgeFeedbackInput struct {
	ID int64 `json:"id" jsonschema:"Feedback ID to acknowledge (required)"`
}

func (h *FeedbackHandlers) AcknowledgeFeedback(ctx context.Context, request *mcp.CallToolRequest, input AcknowledgeFeedbackInput) (*mcp.CallToolResult, MessageOutput, error) {
	if input.ID <= 0 {
		return nil, MessageOutput{}, fmt.Errorf("id is required")
	}

	if err := h.store.Acknowledge(ctx, input.ID); err != nil {
		return nil, MessageOutput{}, fmt.Errorf("failed to acknowledge feedback: %w", err)
	}
	return nil, MessageOutput{Message: fmt.Sprintf("Acknowledged feedback %d", input.ID)}, nil
}
