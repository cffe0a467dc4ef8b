// ABOUTME: HTTP client for the remote feedback store REST API
// ABOUTME: Bearer auth via oauth2, request IDs, zap logging and a circuit breaker

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/amanks009/feedback-client/models"
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	Token    string
	DeviceID string
	Timeout  time.Duration
	Logger   *zap.Logger

	// HTTPClient supplies the base transport; defaults to http.DefaultTransport.
	HTTPClient *http.Client
}

// Client talks to the feedback REST API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// New creates a client. With a token set, every request carries a bearer
// Authorization header.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}

	httpClient := &http.Client{Transport: base.Transport, Timeout: base.Timeout}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		deviceID: opts.DeviceID,
		http:     httpClient,
		logger:   logger,
	}
	c.breaker = newBreaker(logger, breakerTimeout)

	return c
}

// breakerTimeout is how long the breaker stays open before probing again.
const breakerTimeout = 20 * time.Second

// newBreaker lets a refresh's roster and feedback requests through together
// while half-open.
func newBreaker(logger *zap.Logger, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feedback-api",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// isSuccessful decides what the breaker counts as a failure: transport errors
// and 5xx responses. Client errors and caller cancellation do not count.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return !apiErr.serverFault()
	}
	return false
}

// do issues one request. body is JSON-encoded when non-nil; out is decoded
// from the response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("X-Request-ID", requestID)
		if c.deviceID != "" {
			req.Header.Set("X-Device-ID", c.deviceID)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, newError(method, path, resp.StatusCode, data)
		}
		return data, nil
	})

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("request cancelled", fields...)
		} else {
			c.logger.Warn("request failed", append(fields, zap.Error(err))...)
		}
		return err
	}
	c.logger.Debug("request ok", fields...)

	data, _ := result.([]byte)
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w: %w", method, path, errUnreadableBody, err)
	}
	return nil
}

// LoginResult is the body returned by POST /login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	return &res, nil
}

// Timeline fetches feedback addressed to the signed-in employee, in server order.
func (c *Client) Timeline(ctx context.Context) ([]models.FeedbackItem, error) {
	var res struct {
		Timeline []models.FeedbackItem `json:"timeline"`
	}
	if err := c.do(ctx, http.MethodGet, "/employee-dashboard", nil, &res); err != nil {
		return nil, err
	}
	if res.Timeline == nil {
		res.Timeline = []models.FeedbackItem{}
	}
	return res.Timeline, nil
}

// Acknowledge marks one feedback item as reviewed by its recipient.
func (c *Client) Acknowledge(ctx context.Context, feedbackID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/acknowledge/%d", feedbackID), nil, nil)
}

// Team fetches the manager's roster with feedback aggregates.
func (c *Client) Team(ctx context.Context) ([]models.RosterEntry, error) {
	var res struct {
		Team []models.RosterEntry `json:"team"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &res); err != nil {
		return nil, err
	}
	if res.Team == nil {
		res.Team = []models.RosterEntry{}
	}
	return res.Team, nil
}

// EmployeeFeedback fetches all feedback items for one employee.
func (c *Client) EmployeeFeedback(ctx context.Context, employeeID int64) ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/feedback/%d", employeeID), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FeedbackItem{}
	}
	return items, nil
}

// CreateFeedback submits new feedback. The payload must already be validated.
func (c *Client) CreateFeedback(ctx context.Context, p models.FeedbackPayload) (*models.FeedbackItem, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var item models.FeedbackItem
	if err := c.do(ctx, http.MethodPost, "/feedback", p, &item); err != nil {
		if isDecodeError(err) {
			return &models.FeedbackItem{}, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateFeedback replaces the content of an existing item.
func (c *Client) UpdateFeedback(ctx context.Context, feedbackID int64, p models.FeedbackPayload) (*models.FeedbackItem, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var item models.FeedbackItem
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/feedback/%d", feedbackID), p, &item); err != nil {
		if isDecodeError(err) {
			return &models.FeedbackItem{ID: feedbackID}, nil
		}
		return nil, err
	}
	return &item, nil
}

// DeleteFeedback removes an item.
func (c *Client) DeleteFeedback(ctx context.Context, feedbackID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/feedback/%d", feedbackID), nil, nil)
}

// isDecodeError matches a 2xx whose body was not the expected shape. Mutation
// responses only matter for success, so callers treat these as success.
func isDecodeError(err error) bool {
	return errors.Is(err, errUnreadableBody)
}
