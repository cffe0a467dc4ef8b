// ABOUTME: Tests for feedback MCP tool, resource and prompt handlers
// ABOUTME: Runs the handlers against the in-memory API stub through the real client
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/apitest"
	"github.com/amanks009/feedback-client/models"
)

func setupHandlers(t *testing.T, token string) (*FeedbackHandlers, *apitest.Server) {
	t.Helper()
	srv := apitest.Seed()
	srv.AddFeedback(models.FeedbackItem{
		EmployeeID:     1,
		Strengths:      "Mentoring",
		AreasToImprove: "Planning",
		Sentiment:      models.SentimentPositive,
		CreatedAt:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	client := api.New(api.Options{BaseURL: srv.Start(t), Token: token, Timeout: 5 * time.Second})
	return NewFeedbackHandlers(client), srv
}

func TestListTeamHandler(t *testing.T) {
	h, _ := setupHandlers(t, apitest.ManagerToken)

	_, out, err := h.ListTeam(context.Background(), nil, ListTeamInput{})
	require.NoError(t, err)
	require.Len(t, out.Team, 2)
	assert.Equal(t, "Ada Lovelace", out.Team[0].Name)
	assert.Equal(t, 1, out.Team[0].FeedbackCount)
	assert.Equal(t, 1, out.Team[0].Positive)
	assert.Equal(t, 0, out.Team[1].FeedbackCount)
}

func TestGiveFeedbackHandler(t *testing.T) {
	h, srv := setupHandlers(t, apitest.ManagerToken)
	ctx := context.Background()

	_, out, err := h.GiveFeedback(ctx, nil, GiveFeedbackInput{
		EmployeeID:     2,
		Strengths:      " Debugging ",
		AreasToImprove: "Pairing",
		Sentiment:      "neutral",
	})
	require.NoError(t, err)
	assert.Equal(t, "Feedback created", out.Message)
	require.NotNil(t, out.Feedback)
	assert.Equal(t, "Debugging", out.Feedback.Strengths)
	assert.Equal(t, "NEUTRAL", out.Feedback.Sentiment)

	_, list, err := h.ListEmployeeFeedback(ctx, nil, ListEmployeeFeedbackInput{EmployeeID: 2})
	require.NoError(t, err)
	require.Len(t, list.Feedback, 1)
	assert.Equal(t, out.Feedback.ID, list.Feedback[0].ID)
	assert.Equal(t, 1, srv.CountRequests(http.MethodPost, "/feedback"))
}

func TestGiveFeedbackRejectsInvalidInput(t *testing.T) {
	h, srv := setupHandlers(t, apitest.ManagerToken)
	ctx := context.Background()

	_, _, err := h.GiveFeedback(ctx, nil, GiveFeedbackInput{EmployeeID: 1, Strengths: "x", AreasToImprove: "y", Sentiment: "great"})
	assert.ErrorContains(t, err, "invalid sentiment")

	_, _, err = h.GiveFeedback(ctx, nil, GiveFeedbackInput{EmployeeID: 1, Strengths: "  ", AreasToImprove: "y", Sentiment: "positive"})
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/feedback"))
}

func TestUpdateAndDeleteFeedbackHandlers(t *testing.T) {
	h, srv := setupHandlers(t, apitest.ManagerToken)
	ctx := context.Background()

	_, out, err := h.UpdateFeedback(ctx, nil, UpdateFeedbackInput{
		ID:             1,
		EmployeeID:     1,
		Strengths:      "Mentoring juniors",
		AreasToImprove: "Planning",
		Sentiment:      "NEGATIVE",
	})
	require.NoError(t, err)
	assert.Equal(t, "Feedback updated", out.Message)
	stored, ok := srv.Feedback(1)
	require.True(t, ok)
	assert.Equal(t, "Mentoring juniors", stored.Strengths)
	assert.Equal(t, models.SentimentNegative, stored.Sentiment)

	_, del, err := h.DeleteFeedback(ctx, nil, DeleteFeedbackInput{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Deleted feedback 1", del.Message)

	_, team, err := h.ListTeam(ctx, nil, ListTeamInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, team.Team[0].FeedbackCount)
	assert.Equal(t, 0, team.Team[0].Negative)

	_, _, err = h.DeleteFeedback(ctx, nil, DeleteFeedbackInput{ID: 1})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	_, _, err = h.DeleteFeedback(ctx, nil, DeleteFeedbackInput{})
	assert.EqualError(t, err, "id is required")
}

func TestMyFeedbackAndAcknowledgeHandlers(t *testing.T) {
	h, _ := setupHandlers(t, apitest.EmployeeToken)
	ctx := context.Background()

	_, out, err := h.MyFeedback(ctx, nil, MyFeedbackInput{})
	require.NoError(t, err)
	require.Len(t, out.Feedback, 1)
	assert.False(t, out.Feedback[0].Acknowledged)
	assert.Equal(t, "2024-05-01T00:00:00Z", out.Feedback[0].CreatedAt)

	_, ack, err := h.AcknowledgeFeedback(ctx, nil, AcknowledgeFeedbackInput{ID: out.Feedback[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Acknowledged feedback 1", ack.Message)

	_, pending, err := h.MyFeedback(ctx, nil, MyFeedbackInput{PendingOnly: true})
	require.NoError(t, err)
	assert.Empty(t, pending.Feedback)
}

func TestManagerToolsRequireManager(t *testing.T) {
	h, _ := setupHandlers(t, apitest.EmployeeToken)

	_, _, err := h.ListTeam(context.Background(), nil, ListTeamInput{})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))
}

func TestReadResource(t *testing.T) {
	srv := apitest.Seed()
	srv.AddFeedback(models.FeedbackItem{EmployeeID: 2, Strengths: "a", AreasToImprove: "b", Sentiment: models.SentimentNeutral})
	client := api.New(api.Options{BaseURL: srv.Start(t), Token: apitest.ManagerToken})
	h := NewResourceHandlers(client)
	ctx := context.Background()

	res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "feedback://team"}})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	var team []RosterEntryOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &team))
	require.Len(t, team, 2)
	assert.Equal(t, 1, team[1].Neutral)

	res, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "feedback://employees/2/feedback"}})
	require.NoError(t, err)
	var items []FeedbackOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &items))
	assert.Len(t, items, 1)

	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "https://example.com/team"}})
	assert.Error(t, err)
	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "feedback://nope"}})
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	h, _ := setupHandlers(t, apitest.ManagerToken)
	prompts := NewPromptHandlers(h.store)
	ctx := context.Background()

	res, err := prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "feedback-review",
		Arguments: map[string]string{"employee_id": "1"},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Mentoring")
	assert.Contains(t, text, "Positive, Pending")

	_, err = prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "feedback-review",
		Arguments: map[string]string{"employee_id": "42"},
	}})
	assert.ErrorContains(t, err, "not on your team")

	res, err = prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "team-overview"}})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "Grace Hopper: 0 feedback")
}
