package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/jonathan/smart-ats/internal/fetch"
	"github.com/jonathan/smart-ats/internal/resume"
)

// ErrHistoryDisabled is returned by history endpoints when no store is configured
var ErrHistoryDisabled = errors.New("history disabled")

// ErrValidation indicates request validation failure.
// It unwraps to evaluation.ErrMissingInput so pages show the missing-input message.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e *ErrValidation) Unwrap() error {
	return evaluation.ErrMissingInput
}

// ErrNotFound indicates a stored evaluation does not exist
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("evaluation not found: %s", e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		notFoundErr    *ErrNotFound
		tooLargeErr    *http.MaxBytesError
		unsupportedErr *resume.UnsupportedTypeError
		extractErr     *resume.ExtractError
		apiErr         *evaluation.APICallError
		parseErr       *evaluation.ParseError
		fetchErr       *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr), errors.Is(err, evaluation.ErrMissingInput):
		return http.StatusBadRequest
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr), errors.As(err, &parseErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &notFoundErr), errors.Is(err, ErrHistoryDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text returned to API clients.
// Upstream failures are reduced to the generic retry message.
func publicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return evaluation.UserMessage(err)
	}
	return err.Error()
}

// isTooLarge reports whether err came from exceeding the request body cap
func isTooLarge(err error) bool {
	var tooLargeErr *http.MaxBytesError
	if errors.As(err, &tooLargeErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
