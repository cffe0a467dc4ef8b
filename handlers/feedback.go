// ABOUTME: Feedback MCP tool handlers for managers
// ABOUTME: Implements list_team, list_employee_feedback, give_feedback, update_feedback and delete_feedback
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amanks009/feedback-client/models"
)

// Store is the remote feedback store the tools call through.
type Store interface {
	Team(ctx context.Context) ([]models.RosterEntry, error)
	EmployeeFeedback(ctx context.Context, employeeID int64) ([]models.FeedbackItem, error)
	CreateFeedback(ctx context.Context, p models.FeedbackPayload) (*models.FeedbackItem, error)
	UpdateFeedback(ctx context.Context, feedbackID int64, p models.FeedbackPayload) (*models.FeedbackItem, error)
	DeleteFeedback(ctx context.Context, feedbackID int64) error
	Timeline(ctx context.Context) ([]models.FeedbackItem, error)
	Acknowledge(ctx context.Context, feedbackID int64) error
}

type FeedbackHandlers struct {
	store Store
}

func NewFeedbackHandlers(store Store) *FeedbackHandlers {
	return &FeedbackHandlers{store: store}
}

type FeedbackOutput struct {
	ID             int64  `json:"id"`
	EmployeeID     int64  `json:"employee_id"`
	Strengths      string `json:"strengths"`
	AreasToImprove string `json:"areas_to_improve"`
	Sentiment      string `json:"sentiment"`
	Acknowledged   bool   `json:"acknowledged"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type RosterEntryOutput struct {
	EmployeeID    int64  `json:"employee_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	FeedbackCount int    `json:"feedback_count"`
	Positive      int    `json:"positive"`
	Neutral       int    `json:"neutral"`
	Negative      int    `json:"negative"`
}

type ListTeamInput struct{}

type ListTeamOutput struct {
	Team []RosterEntryOutput `json:"team"`
}

func (h *FeedbackHandlers) ListTeam(ctx context.Context, request *mcp.CallToolRequest, input ListTeamInput) (*mcp.CallToolResult, ListTeamOutput, error) {
	team, err := h.store.Team(ctx)
	if err != nil {
		return nil, ListTeamOutput{}, fmt.Errorf("failed to load team: %w", err)
	}

	result := make([]RosterEntryOutput, len(team))
	for i, entry := range team {
		result[i] = rosterEntryToOutput(entry)
	}
	return nil, ListTeamOutput{Team: result}, nil
}

type ListEmployeeFeedbackInput struct {
	EmployeeID int64 `json:"employee_id" jsonschema:"Employee ID (required)"`
}

type FeedbackListOutput struct {
	Feedback []FeedbackOutput `json:"feedback"`
}

func (h *FeedbackHandlers) ListEmployeeFeedback(ctx context.Context, request *mcp.CallToolRequest, input ListEmployeeFeedbackInput) (*mcp.CallToolResult, FeedbackListOutput, error) {
	if input.EmployeeID <= 0 {
		return nil, FeedbackListOutput{}, fmt.Errorf("employee_id is required")
	}

	items, err := h.store.EmployeeFeedback(ctx, input.EmployeeID)
	if err != nil {
		return nil, FeedbackListOutput{}, fmt.Errorf("failed to load feedback: %w", err)
	}
	return nil, FeedbackListOutput{Feedback: feedbackToOutputs(items)}, nil
}

type GiveFeedbackInput struct {
	EmployeeID     int64  `json:"employee_id" jsonschema:"Employee ID the feedback is for (required)"`
	Strengths      string `json:"strengths" jsonschema:"What the employee does well (required)"`
	AreasToImprove string `json:"areas_to_improve" jsonschema:"What the employee could work on (required)"`
	Sentiment      string `json:"sentiment" jsonschema:"Overall sentiment: positive, neutral or negative (required)"`
}

type FeedbackResultOutput struct {
	Message  string          `json:"message"`
	Feedback *FeedbackOutput `json:"feedback,omitempty"`
}

func (h *FeedbackHandlers) GiveFeedback(ctx context.Context, request *mcp.CallToolRequest, input GiveFeedbackInput) (*mcp.CallToolResult, FeedbackResultOutput, error) {
	payload, err := buildPayload(input.EmployeeID, input.Strengths, input.AreasToImprove, input.Sentiment)
	if err != nil {
		return nil, FeedbackResultOutput{}, err
	}

	item, err := h.store.CreateFeedback(ctx, payload)
	if err != nil {
		return nil, FeedbackResultOutput{}, fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil, savedOutput("Feedback created", item), nil
}

type UpdateFeedbackInput struct {
	ID             int64  `json:"id" jsonschema:"Feedback ID (required)"`
	EmployeeID     int64  `json:"employee_id" jsonschema:"Employee ID the feedback belongs to (required)"`
	Strengths      string `json:"strengths" jsonschema:"Updated strengths (required)"`
	AreasToImprove string `json:"areas_to_improve" jsonschema:"Updated areas to improve (required)"`
	Sentiment      string `json:"sentiment" jsonschema:"Updated sentiment: positive, neutral or negative (required)"`
}

func (h *FeedbackHandlers) UpdateFeedback(ctx context.Context, request *mcp.CallToolRequest, input UpdateFeedbackInput) (*mcp.CallToolResult, FeedbackResultOutput, error) {
	if input.ID <= 0 {
		return nil, FeedbackResultOutput{}, fmt.Errorf("id is required")
	}

	payload, err := buildPayload(input.EmployeeID, input.Strengths, input.AreasToImprove, input.Sentiment)
	if err != nil {
		return nil, FeedbackResultOutput{}, err
	}

	item, err := h.store.UpdateFeedback(ctx, input.ID, payload)
	if err != nil {
		return nil, FeedbackResultOutput{}, fmt.Errorf("failed to update feedback: %w", err)
	}
	return nil, savedOutput("Feedback updated", item), nil
}

type DeleteFeedbackInput struct {
	ID int64 `json:"id" jsonschema:"Feedback ID (required)"`
}

type MessageOutput struct {
	Message string `json:"message"`
}

func (h *FeedbackHandlers) DeleteFeedback(ctx context.Context, request *mcp.CallToolRequest, input DeleteFeedbackInput) (*mcp.CallToolResult, MessageOutput, error) {
	if input.ID <= 0 {
		return nil, MessageOutput{}, fmt.Errorf("id is required")
	}

	if err := h.store.DeleteFeedback(ctx, input.ID); err != nil {
		return nil, MessageOutput{}, fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil, MessageOutput{Message: fmt.Sprintf("Deleted feedback %d", input.ID)}, nil
}

func buildPayload(employeeID int64, strengths, improve, sentiment string) (models.FeedbackPayload, error) {
	s, err := models.ParseSentiment(sentiment)
	if err != nil {
		return models.FeedbackPayload{}, fmt.Errorf("invalid sentiment: %w", err)
	}
	p, err := models.NewFeedbackPayload(employeeID, strengths, improve, s)
	if err != nil {
		return models.FeedbackPayload{}, err
	}
	return p, nil
}

func savedOutput(message string, item *models.FeedbackItem) FeedbackResultOutput {
	out := FeedbackResultOutput{Message: message}
	if item != nil && item.ID != 0 {
		fo := feedbackToOutput(*item)
		out.Feedback = &fo
	}
	return out
}

func feedbackToOutput(item models.FeedbackItem) FeedbackOutput {
	out := FeedbackOutput{
		ID:             item.ID,
		EmployeeID:     item.EmployeeID,
		Strengths:      item.Strengths,
		AreasToImprove: item.AreasToImprove,
		Sentiment:      string(item.Sentiment),
		Acknowledged:   item.Acknowledged,
	}
	if !item.CreatedAt.IsZero() {
		out.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	return out
}

func feedbackToOutputs(items []models.FeedbackItem) []FeedbackOutput {
	result := make([]FeedbackOutput, len(items))
	for i, item := range items {
		result[i] = feedbackToOutput(item)
	}
	return result
}

func rosterEntryToOutput(entry models.RosterEntry) RosterEntryOutput {
	return RosterEntryOutput{
		EmployeeID:    entry.Employee.ID,
		Name:          entry.Employee.Name,
		Email:         entry.Employee.Email,
		FeedbackCount: entry.FeedbackCount,
		Positive:      entry.Sentiments.Positive,
		Neutral:       entry.Sentiments.Neutral,
		Negative:      entry.Sentiments.Negative,
	}
}
