package evaluation

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when the résumé text or job description is blank
var ErrMissingInput = errors.New("resume and job description are required")

// APICallError represents a failure talking to the model provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model reply that is not the expected JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UserMessage maps an evaluation error to the text shown to the user.
// Provider and parse failures share one message.
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingInput) {
		return MessageMissingInput
	}
	return MessageTryAgain
}
