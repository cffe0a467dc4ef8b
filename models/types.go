// ABOUTME: Data models for the feedback tracker
// ABOUTME: Defines Employee, FeedbackItem, RosterEntry, Sentiment and the session User
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Employee struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sentiment is the tone classification attached to one feedback item.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// Sentiments lists the valid values in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// ParseSentiment accepts wire values and display labels in any case.
func ParseSentiment(s string) (Sentiment, error) {
	v := Sentiment(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid sentiment %q (want positive, neutral or negative)", s)
	}
	return v, nil
}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Label returns the title-cased display form, e.g. "Positive".
func (s Sentiment) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Short returns the lowercase display form.
func (s Sentiment) Short() string {
	return strings.ToLower(string(s))
}

// UnmarshalJSON normalizes case so "Positive" and "POSITIVE" decode alike.
// Unknown values are kept (uppercased) rather than failing the whole payload.
func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sentiment(strings.ToUpper(strings.TrimSpace(raw)))
	return nil
}

type FeedbackItem struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employeeId"`
	Strengths      string    `json:"strengths"`
	AreasToImprove string    `json:"areasToImprove"`
	Sentiment      Sentiment `json:"sentiment"`
	Acknowledged   bool      `json:"acknowledged"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UnmarshalJSON also accepts the snake_case employee_id some endpoints send.
func (f *FeedbackItem) UnmarshalJSON(data []byte) error {
	type alias FeedbackItem
	aux := struct {
		*alias
		EmployeeIDSnake *int64 `json:"employee_id"`
	}{alias: (*alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if f.EmployeeID == 0 && aux.EmployeeIDSnake != nil {
		f.EmployeeID = *aux.EmployeeIDSnake
	}
	return nil
}

// Status is the acknowledgment state shown to users.
func (f FeedbackItem) Status() string {
	if f.Acknowledged {
		return "Acknowledged"
	}
	return "Pending"
}

// SentimentCounts is the server-computed breakdown for one employee.
type SentimentCounts struct {
	Positive int `json:"POSITIVE"`
	Neutral  int `json:"NEUTRAL"`
	Negative int `json:"NEGATIVE"`
}

func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// Of returns the count for a single sentiment.
func (c SentimentCounts) Of(s Sentiment) int {
	switch s {
	case SentimentPositive:
		return c.Positive
	case SentimentNeutral:
		return c.Neutral
	case SentimentNegative:
		return c.Negative
	}
	return 0
}

// Add adjusts the count for s by delta.
func (c *SentimentCounts) Add(s Sentiment, delta int) {
	switch s {
	case SentimentPositive:
		c.Positive += delta
	case SentimentNeutral:
		c.Neutral += delta
	case SentimentNegative:
		c.Negative += delta
	}
}

// RosterEntry wraps an Employee with server-side feedback aggregates.
type RosterEntry struct {
	Employee      Employee        `json:"employee"`
	FeedbackCount int             `json:"feedback_count"`
	Sentiments    SentimentCounts `json:"sentiments"`
}

// Consistent reports whether the breakdown sums to the feedback count.
func (r RosterEntry) Consistent() bool {
	return r.FeedbackCount >= 0 && r.Sentiments.Total() == r.FeedbackCount
}

// Role gates which views a user can reach.
type Role string

const (
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsManager() bool  { return strings.EqualFold(string(u.Role), string(RoleManager)) }
func (u User) IsEmployee() bool { return strings.EqualFold(string(u.Role), string(RoleEmployee)) }
