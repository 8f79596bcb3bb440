package bwerror

import (
	"net/http"

	"github.com/pkg/errors"
)

type (
	// A BWError represents the error format that can be rendered by bluewiki server.
	BWError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	var bwerr *BWError
	if errors.As(err, &bwerr) && bwerr.HTTPCode != 0 {
		return bwerr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new BWError with the given message.
func New(message string) *BWError {
	return &BWError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new BWError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *BWError {
	return &BWError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a 404 BWError.
func NotFound(message string) *BWError {
	return NewWithTagCode(http.StatusNotFound, "not-found", message)
}

// Forbidden returns a 403 BWError.
func Forbidden(message string) *BWError {
	return NewWithTagCode(http.StatusForbidden, "forbidden", message)
}

// Unavailable returns a 503 BWError.
func Unavailable(message string) *BWError {
	return NewWithTagCode(http.StatusServiceUnavailable, "unavailable", message)
}

// Tag returns the tag of the error.
func (e *BWError) Tag() string {
	return e.FieldError.Tag
}

// Error implements error interface.
func (e *BWError) Error() string {
	return e.FieldError.Message
}
