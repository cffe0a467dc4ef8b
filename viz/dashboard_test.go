// ABOUTME: Tests for the team feedback summary
// ABOUTME: Checks aggregation of roster entries and the rendered sentiment bars
package viz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanks009/feedback-client/models"
)

func roster() []models.RosterEntry {
	return []models.RosterEntry{
		{
			Employee:      models.Employee{ID: 1, Name: "Ada Lovelace"},
			FeedbackCount: 2,
			Sentiments:    models.SentimentCounts{Positive: 1, Neutral: 1},
		},
		{
			Employee:      models.Employee{ID: 2, Name: "Grace Hopper"},
			FeedbackCount: 3,
			Sentiments:    models.SentimentCounts{Positive: 1, Negative: 2},
		},
		{
			Employee: models.Employee{ID: 3, Name: "Alan Turing"},
		},
	}
}

func TestGenerateDashboardStats(t *testing.T) {
	stats := GenerateDashboardStats(roster())

	assert.Equal(t, 3, stats.Members)
	assert.Equal(t, 5, stats.TotalFeedback)
	assert.Equal(t, models.SentimentCounts{Positive: 2, Neutral: 1, Negative: 2}, stats.Sentiments)
	assert.Equal(t, []string{"Alan Turing"}, stats.NoFeedback)
	assert.Equal(t, []string{"Grace Hopper"}, stats.MostNegative)

	require.Len(t, stats.Employees, 3)
	assert.Equal(t, "Grace Hopper", stats.Employees[0].Name)
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(roster()))

	assert.Contains(t, out, "TEAM FEEDBACK SUMMARY")
	assert.Contains(t, out, "Positive  ████░░░░░░   2 (40%)")
	assert.Contains(t, out, "Neutral   ██░░░░░░░░   1 (20%)")
	assert.Contains(t, out, "3 team members")
	assert.Contains(t, out, "1 without feedback: Alan Turing")
}

func TestRenderEmptyDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(nil))

	assert.Contains(t, out, "0 team members")
	assert.Contains(t, out, "░░░░░░░░░░   0 (0%)")
	assert.NotContains(t, out, "NEEDS ATTENTION")
}
