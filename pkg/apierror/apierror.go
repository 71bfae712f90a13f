// Package apierror carries structured failures returned by the remote
// backend: the HTTP status plus the human-readable message extracted
// from the response body (or a generic fallback when the body had none).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return e.Message
}

func New(status int, code string, message string) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

// StatusOf returns the HTTP status embedded in err, or 0 when err is
// not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}

	return 0
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a remote 401.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
