package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`

	// verbatim makes Description return Detail even when it is empty
	verbatim bool
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Description returns the human-readable text surfaced to API clients.
// Detail wins over Message when present.
func (e *CustomError) Description() string {
	if e.verbatim || e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// AsCustomError unwraps err into a *CustomError, wrapping unknown errors as internal errors
func AsCustomError(err error) *CustomError {
	var cerr *CustomError
	if errors.As(err, &cerr) {
		return cerr
	}
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Type:    "internal_error",
		Message: err.Error(),
	}
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Type:    "bad_request",
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Type:    "validation_failed",
		Message: "Validation failed",
		Detail:  detail,
	}
}

// NewConfigurationError reports a missing or invalid process setting.
// The operator has to fix the environment and restart; retrying won't help.
func NewConfigurationError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Type:    "configuration_error",
		Message: message,
	}
}

// NewAnalysisError carries the failure text of the analysis routine verbatim in Detail
func NewAnalysisError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Type:     "analysis_failed",
		Message:  "Analysis failed",
		Detail:   detail,
		verbatim: true,
	}
}
