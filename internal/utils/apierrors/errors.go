package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a client-facing failure: a stable code, the HTTP status it
// maps to, a human-readable message, and the internal cause (logged
// server-side, never serialized).
type APIError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// New builds an APIError with an explicit HTTP status.
func New(code string, status int, message string, err error) *APIError {
	return &APIError{Code: code, Status: status, Message: message, Err: err}
}

// As extracts an APIError from an error chain, or nil when there is none.
func As(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func BadRequest(code, message string) *APIError {
	return New(code, http.StatusBadRequest, message, nil)
}

func Forbidden(code, message string) *APIError {
	return New(code, http.StatusForbidden, message, nil)
}

func Internal(code, message string, err error) *APIError {
	return New(code, http.StatusInternalServerError, message, err)
}
