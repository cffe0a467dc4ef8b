// ABOUTME: Tests for the feedback CLI commands
// ABOUTME: Runs commands against the in-memory API stub and checks printed output
package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/apitest"
	"github.com/amanks009/feedback-client/models"
	"github.com/amanks009/feedback-client/session"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := stdout
	stdout = buf
	t.Cleanup(func() { stdout = old })
	return buf
}

func withInput(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

func setupTestCLI(t *testing.T, token string) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.Seed()
	srv.AddFeedback(models.FeedbackItem{
		EmployeeID:     1,
		Strengths:      "Clear writing",
		AreasToImprove: "Delegation",
		Sentiment:      models.SentimentPositive,
		CreatedAt:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	return api.New(api.Options{BaseURL: srv.Start(t), Token: token, Timeout: 5 * time.Second}), srv
}

func TestTeamCommand(t *testing.T) {
	client, _ := setupTestCLI(t, apitest.ManagerToken)
	out := captureOutput(t)

	require.NoError(t, TeamCommand(client, nil))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "grace@example.com")
}

func TestListFeedbackCommand(t *testing.T) {
	client, _ := setupTestCLI(t, apitest.ManagerToken)

	out := captureOutput(t)
	require.NoError(t, ListFeedbackCommand(client, []string{"1"}))
	assert.Contains(t, out.String(), "Clear writing")
	assert.Contains(t, out.String(), "Positive")
	assert.Contains(t, out.String(), "Pending")

	out.Reset()
	require.NoError(t, ListFeedbackCommand(client, []string{"2"}))
	assert.Contains(t, out.String(), "No feedback yet for this employee")

	assert.Error(t, ListFeedbackCommand(client, nil))
	assert.Error(t, ListFeedbackCommand(client, []string{"abc"}))
}

func TestGiveFeedbackCommand(t *testing.T) {
	client, srv := setupTestCLI(t, apitest.ManagerToken)
	out := captureOutput(t)

	err := GiveFeedbackCommand(client, []string{
		"--employee", "2",
		"--strengths", "  Fast reviews ",
		"--improve", "Testing",
		"--sentiment", "Neutral",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Feedback created (ID: 2)")

	item, ok := srv.Feedback(2)
	require.True(t, ok)
	assert.Equal(t, "Fast reviews", item.Strengths)
	assert.Equal(t, models.SentimentNeutral, item.Sentiment)
}

func TestGiveFeedbackCommandValidation(t *testing.T) {
	client, srv := setupTestCLI(t, apitest.ManagerToken)
	captureOutput(t)

	assert.EqualError(t, GiveFeedbackCommand(client, []string{"--strengths", "x"}), "--employee is required")

	err := GiveFeedbackCommand(client, []string{"--employee", "1", "--strengths", "x", "--improve", "y", "--sentiment", "meh"})
	assert.ErrorContains(t, err, "invalid sentiment")

	err = GiveFeedbackCommand(client, []string{"--employee", "1", "--strengths", " ", "--improve", "y", "--sentiment", "positive"})
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/feedback"))
}

func TestEditFeedbackCommand(t *testing.T) {
	client, srv := setupTestCLI(t, apitest.ManagerToken)
	out := captureOutput(t)

	require.NoError(t, EditFeedbackCommand(client, []string{"--employee", "1", "--sentiment", "negative", "1"}))
	assert.Contains(t, out.String(), "✓ Feedback updated (ID: 1)")

	item, _ := srv.Feedback(1)
	assert.Equal(t, "Clear writing", item.Strengths, "omitted fields are kept")
	assert.Equal(t, "Delegation", item.AreasToImprove)
	assert.Equal(t, models.SentimentNegative, item.Sentiment)

	err := EditFeedbackCommand(client, []string{"--employee", "2", "1"})
	assert.ErrorContains(t, err, "not found for employee 2")
	assert.Error(t, EditFeedbackCommand(client, []string{"1"}))
}

func TestDeleteFeedbackCommand(t *testing.T) {
	client, srv := setupTestCLI(t, apitest.ManagerToken)
	out := captureOutput(t)

	withInput(t, "n\n")
	require.NoError(t, DeleteFeedbackCommand(client, []string{"1"}))
	assert.Contains(t, out.String(), "Cancelled")
	_, ok := srv.Feedback(1)
	assert.True(t, ok)
	assert.Equal(t, 0, srv.CountRequests(http.MethodDelete, "/feedback/1"))

	withInput(t, "y\n")
	require.NoError(t, DeleteFeedbackCommand(client, []string{"1"}))
	assert.Contains(t, out.String(), "✓ Feedback deleted (ID: 1)")
	_, ok = srv.Feedback(1)
	assert.False(t, ok)

	err := DeleteFeedbackCommand(client, []string{"--yes", "1"})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestTimelineAndAckCommands(t *testing.T) {
	client, srv := setupTestCLI(t, apitest.EmployeeToken)
	out := captureOutput(t)

	require.NoError(t, TimelineCommand(client, nil))
	assert.Contains(t, out.String(), "Clear writing")

	require.NoError(t, AckCommand(client, []string{"1"}))
	assert.Contains(t, out.String(), "✓ Feedback acknowledged (ID: 1)")
	item, _ := srv.Feedback(1)
	assert.True(t, item.Acknowledged)

	out.Reset()
	require.NoError(t, TimelineCommand(client, []string{"--pending"}))
	assert.Contains(t, out.String(), "No feedback received yet")
}

func TestSummaryCommand(t *testing.T) {
	client, _ := setupTestCLI(t, apitest.ManagerToken)
	out := captureOutput(t)

	require.NoError(t, SummaryCommand(client, nil))
	assert.Contains(t, out.String(), "TEAM FEEDBACK SUMMARY")
	assert.Contains(t, out.String(), "2 team members")

	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, SummaryCommand(client, []string{"--output", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Grace Hopper")
}

func TestLoginWhoamiLogout(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "")
	client, _ := setupTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "session.json")
	out := captureOutput(t)

	withInput(t, apitest.Password+"\n")
	require.NoError(t, LoginCommand(client, path, []string{"--email", "mona@example.com"}))
	assert.Contains(t, out.String(), "✓ Signed in as mona@example.com (Manager)")

	sess, err := session.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, apitest.ManagerToken, sess.Token)
	assert.NotEmpty(t, sess.DeviceID)

	out.Reset()
	require.NoError(t, WhoamiCommand(path))
	assert.Contains(t, out.String(), "Mona Manager <mona@example.com>")
	assert.Contains(t, out.String(), "Role: Manager")

	// Signing in again keeps the device ID.
	withInput(t, "ada@example.com\n"+apitest.Password+"\n")
	require.NoError(t, LoginCommand(client, path, nil))
	again, err := session.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, sess.DeviceID, again.DeviceID)
	assert.True(t, again.User.IsEmployee())

	require.NoError(t, LogoutCommand(path))
	out.Reset()
	require.NoError(t, WhoamiCommand(path))
	assert.Contains(t, out.String(), "Not signed in")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "")
	client, _ := setupTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "session.json")
	captureOutput(t)

	err := LoginCommand(client, path, []string{"--email", "mona@example.com", "--password", "nope"})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewMCPServer(t *testing.T) {
	client, _ := setupTestCLI(t, apitest.ManagerToken)
	assert.NotPanics(t, func() { NewMCPServer(client, "test") })
}
