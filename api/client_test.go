// ABOUTME: Tests for the feedback API client against the in-memory stub
// ABOUTME: Covers request shapes, auth headers, error messages and the circuit breaker

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanks009/feedback-client/apitest"
	"github.com/amanks009/feedback-client/models"
)

func newTestClient(t *testing.T, srv *apitest.Server, token string) *Client {
	t.Helper()
	return New(Options{BaseURL: srv.Start(t), Token: token, DeviceID: "01TESTDEVICE", Timeout: 5 * time.Second})
}

func TestLogin(t *testing.T) {
	srv := apitest.Seed()
	c := newTestClient(t, srv, "")

	res, err := c.Login(context.Background(), "mona@example.com", apitest.Password)
	require.NoError(t, err)
	assert.Equal(t, apitest.ManagerToken, res.Token)
	assert.True(t, res.User.IsManager())

	_, err = c.Login(context.Background(), "mona@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid email or password", ErrorMessage(err, "fallback"))
}

func TestTeamRequiresBearerToken(t *testing.T) {
	srv := apitest.Seed()

	_, err := newTestClient(t, srv, "").Team(context.Background())
	assert.True(t, IsUnauthorized(err))

	team, err := newTestClient(t, srv, apitest.ManagerToken).Team(context.Background())
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "Ada Lovelace", team[0].Employee.Name)
}

func TestRequestHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"team":null}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL + "/", Token: "abc", DeviceID: "01DEVICE"})
	team, err := c.Team(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, team, "null team decodes to an empty slice")
	got := <-headers
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Equal(t, "01DEVICE", got.Get("X-Device-ID"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestFeedbackLifecycle(t *testing.T) {
	srv := apitest.Seed()
	ctx := context.Background()
	mgr := newTestClient(t, srv, apitest.ManagerToken)

	p, err := models.NewFeedbackPayload(1, " clear writing ", " estimates ", models.SentimentPositive)
	require.NoError(t, err)
	created, err := mgr.CreateFeedback(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "clear writing", created.Strengths)

	p.Sentiment = models.SentimentNeutral
	_, err = mgr.UpdateFeedback(ctx, created.ID, p)
	require.NoError(t, err)

	items, err := mgr.EmployeeFeedback(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.SentimentNeutral, items[0].Sentiment)

	emp := newTestClient(t, srv, apitest.EmployeeToken)
	timeline, err := emp.Timeline(ctx)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.False(t, timeline[0].Acknowledged)

	require.NoError(t, emp.Acknowledge(ctx, created.ID))
	stored, _ := srv.Feedback(created.ID)
	assert.True(t, stored.Acknowledged)

	require.NoError(t, mgr.DeleteFeedback(ctx, created.ID))
	items, err = mgr.EmployeeFeedback(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteUpdatesRosterAggregates(t *testing.T) {
	srv := apitest.New()
	srv.AddEmployee(models.Employee{ID: 1, Name: "A", Email: "a@x.com"})
	srv.AddAccount(models.User{ID: 99, Role: models.RoleManager, Email: "m@x.com"}, "pw", "tok")
	pos := srv.AddFeedback(models.FeedbackItem{EmployeeID: 1, Strengths: "s", AreasToImprove: "a", Sentiment: models.SentimentPositive})
	srv.AddFeedback(models.FeedbackItem{EmployeeID: 1, Strengths: "s", AreasToImprove: "a", Sentiment: models.SentimentNeutral})

	ctx := context.Background()
	c := newTestClient(t, srv, "tok")

	team, err := c.Team(ctx)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, 2, team[0].FeedbackCount)
	assert.Equal(t, models.SentimentCounts{Positive: 1, Neutral: 1}, team[0].Sentiments)

	items, err := c.EmployeeFeedback(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, c.DeleteFeedback(ctx, pos.ID))

	items, err = c.EmployeeFeedback(ctx, 1)
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEqual(t, pos.ID, it.ID)
	}

	team, err = c.Team(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, team[0].FeedbackCount)
	assert.Equal(t, models.SentimentCounts{Neutral: 1}, team[0].Sentiments)
	assert.True(t, team[0].Consistent())
}

func TestCreateRejectsInvalidPayloadWithoutRequest(t *testing.T) {
	srv := apitest.Seed()
	c := newTestClient(t, srv, apitest.ManagerToken)

	_, err := c.CreateFeedback(context.Background(), models.FeedbackPayload{EmployeeID: 1, Strengths: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidPayload))
	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/feedback"))
}

func TestServerMessageIsSurfaced(t *testing.T) {
	srv := apitest.Seed()
	srv.FailNext(http.MethodPut, "/feedback/5", http.StatusConflict, "Feedback was edited elsewhere")
	c := newTestClient(t, srv, apitest.ManagerToken)

	p, _ := models.NewFeedbackPayload(1, "a", "b", models.SentimentNegative)
	_, err := c.UpdateFeedback(context.Background(), 5, p)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
	assert.Equal(t, "Feedback was edited elsewhere", ErrorMessage(err, "Failed to update feedback"))
	assert.Equal(t, "Failed to load", ErrorMessage(errors.New("dial tcp: refused"), "Failed to load"))
}

func TestMutationIgnoresUnexpectedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"created"`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Token: "t"})
	p, _ := models.NewFeedbackPayload(1, "a", "b", models.SentimentPositive)
	_, err := c.CreateFeedback(context.Background(), p)
	assert.NoError(t, err)
}

func TestMutationIgnoresUnparseableFields(t *testing.T) {
	var stored atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stored.Add(1)
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(`{"id":7,"createdAt":"2024-03-01 09:00:00"}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Token: "t"})
	p, _ := models.NewFeedbackPayload(1, "a", "b", models.SentimentPositive)

	created, err := c.CreateFeedback(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, created)

	updated, err := c.UpdateFeedback(context.Background(), 7, p)
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, int32(2), stored.Load())

	_, err = c.EmployeeFeedback(context.Background(), 1)
	assert.Error(t, err, "reads still report bodies they cannot decode")
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Token: "t"})
	for i := 0; i < 5; i++ {
		_, err := c.Team(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	}

	_, err := c.Team(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), calls.Load(), "open breaker must not reach the server")
}

func TestHalfOpenBreakerAdmitsRefreshPair(t *testing.T) {
	var healthy atomic.Bool
	var arrived atomic.Int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if arrived.Add(1) == 2 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"team":[]}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Token: "t"})
	c.breaker = newBreaker(c.logger, 50*time.Millisecond)
	for i := 0; i < 5; i++ {
		_, err := c.Team(context.Background())
		require.Error(t, err)
	}
	_, err := c.Team(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	healthy.Store(true)
	time.Sleep(100 * time.Millisecond)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Team(context.Background())
			errs <- err
		}()
	}
	for i := 0; i < 2; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, int32(2), arrived.Load())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Token: "t"})
	for i := 0; i < 8; i++ {
		_, err := c.EmployeeFeedback(context.Background(), 42)
		assert.True(t, IsNotFound(err))
	}
}

func TestCancelledContext(t *testing.T) {
	srv := apitest.Seed()
	c := newTestClient(t, srv, apitest.ManagerToken)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Team(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
