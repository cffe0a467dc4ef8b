// ABOUTME: Error types returned by the feedback API client
// ABOUTME: Separates server-reported failures from transport and breaker failures

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("feedback service temporarily unavailable")

// errUnreadableBody marks a 2xx response whose body could not be decoded.
var errUnreadableBody = errors.New("unreadable response body")

// Error is a non-2xx response from the remote store.
type Error struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// serverFault reports whether the failure should count against the breaker.
func (e *Error) serverFault() bool {
	return e.Status >= 500
}

// newError builds an Error, pulling a message out of a JSON body when present.
func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Status: status, Method: method, Path: path}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = strings.TrimSpace(payload.Message)
		if e.Message == "" {
			e.Message = strings.TrimSpace(payload.Error)
		}
	}
	return e
}

// ErrorMessage returns the server-provided message carried by err, or fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNotFound(err error) bool     { return StatusCode(err) == http.StatusNotFound }
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }
