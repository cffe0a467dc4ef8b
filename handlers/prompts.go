// ABOUTME: MCP prompt handlers for reusable feedback workflow templates
// ABOUTME: Builds review and team overview prompts from live feedback data
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amanks009/feedback-client/models"
)

type PromptHandlers struct {
	store Store
}

func NewPromptHandlers(store Store) *PromptHandlers {
	return &PromptHandlers{store: store}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "feedback-review":
		return h.getFeedbackReviewPrompt(ctx, request.Params.Arguments)
	case "team-overview":
		return h.getTeamOverviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getFeedbackReviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["employee_id"]
	if !ok {
		return nil, fmt.Errorf("employee_id is required")
	}
	employeeID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid employee_id: %w", err)
	}

	team, err := h.store.Team(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}
	var entry *models.RosterEntry
	for i := range team {
		if team[i].Employee.ID == employeeID {
			entry = &team[i]
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("employee %d is not on your team", employeeID)
	}

	items, err := h.store.EmployeeFeedback(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedback: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please review the feedback history for this employee:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", entry.Employee.Name))
	promptText.WriteString(fmt.Sprintf("Email: %s\n", entry.Employee.Email))
	promptText.WriteString(fmt.Sprintf("Feedback count: %d (positive %d, neutral %d, negative %d)\n",
		entry.FeedbackCount, entry.Sentiments.Positive, entry.Sentiments.Neutral, entry.Sentiments.Negative))

	for _, item := range items {
		promptText.WriteString(fmt.Sprintf("\n[%s] %s, %s\n", item.CreatedAt.Format("2006-01-02"), item.Sentiment.Label(), item.Status()))
		promptText.WriteString(fmt.Sprintf("  Strengths: %s\n", item.Strengths))
		promptText.WriteString(fmt.Sprintf("  Areas to improve: %s\n", item.AreasToImprove))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Recurring strengths across the feedback")
	promptText.WriteString("\n2. Recurring growth areas and whether they are improving")
	promptText.WriteString("\n3. Suggested focus for the next feedback conversation")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Feedback review for %s", entry.Employee.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getTeamOverviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	team, err := h.store.Team(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Here is the feedback summary for my team:\n\n")
	for _, entry := range team {
		promptText.WriteString(fmt.Sprintf("- %s: %d feedback (positive %d, neutral %d, negative %d)\n",
			entry.Employee.Name, entry.FeedbackCount,
			entry.Sentiments.Positive, entry.Sentiments.Neutral, entry.Sentiments.Negative))
	}
	promptText.WriteString("\nWho has not received feedback recently, and where should I focus next?")

	return &mcp.GetPromptResult{
		Description: "Team feedback overview",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
