// ABOUTME: Create/update request body for feedback and its client-side validation
// ABOUTME: Uses go-playground/validator tags after trimming free-text fields
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload marks client-side validation failures. No request is
// issued for a payload that fails validation.
var ErrInvalidPayload = errors.New("invalid feedback payload")

// MsgFillAllFields is the single inline message shown for an incomplete form.
const MsgFillAllFields = "Please fill in all fields"

var validate = validator.New()

// FeedbackPayload is the body of POST /feedback and PUT /feedback/{id}.
type FeedbackPayload struct {
	EmployeeID     int64     `json:"employee_id" validate:"gt=0"`
	Strengths      string    `json:"strengths" validate:"required"`
	AreasToImprove string    `json:"areasToImprove" validate:"required"`
	Sentiment      Sentiment `json:"sentiment" validate:"required,oneof=POSITIVE NEUTRAL NEGATIVE"`
}

// NewFeedbackPayload trims free-text fields and validates the result.
func NewFeedbackPayload(employeeID int64, strengths, areasToImprove string, sentiment Sentiment) (FeedbackPayload, error) {
	p := FeedbackPayload{
		EmployeeID:     employeeID,
		Strengths:      strings.TrimSpace(strengths),
		AreasToImprove: strings.TrimSpace(areasToImprove),
		Sentiment:      sentiment,
	}
	if err := p.Validate(); err != nil {
		return FeedbackPayload{}, err
	}
	return p, nil
}

func (p FeedbackPayload) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch field {
	case "EmployeeID":
		field = "employee_id"
	case "AreasToImprove":
		field = "areasToImprove"
	default:
		field = strings.ToLower(field)
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be set", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
