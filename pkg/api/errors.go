package api

import (
	"fmt"
	"net/http"
)

// Error is the structured body every failing endpoint returns:
// {"error": ..., "details": ..., "provider": ..., "errors": {...}}
type Error struct {
	Status   int               `json:"-"`
	Message  string            `json:"error"`
	Details  string            `json:"details,omitempty"`
	Provider string            `json:"provider,omitempty"`
	Fields   map[string]string `json:"errors,omitempty"`

	// Log is an internal cause for server-side logging, never serialized
	Log error `json:"-"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Log }

type ErrorOption func(*Error)

// NewError creates a generic error body.
func NewError(status int, message string, opts ...ErrorOption) *Error {
	e := &Error{Status: status, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithDetails(details string) ErrorOption {
	return func(e *Error) { e.Details = details }
}

func WithProvider(id string) ErrorOption {
	return func(e *Error) { e.Provider = id }
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ErrorOption {
	return func(e *Error) { e.Log = err }
}

func WithFields(fields map[string]string) ErrorOption {
	return func(e *Error) { e.Fields = fields }
}

func BadRequestError(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusBadRequest, message, opts...)
}

// ValidationError reports field failures; message should already cite the offending fields.
func ValidationError(message string, fields map[string]string) *Error {
	return NewError(http.StatusBadRequest, message, WithFields(fields))
}

func UnauthorizedError(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusUnauthorized, message, opts...)
}

func MethodNotAllowedError() *Error {
	return NewError(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func NotFoundError(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

// UnavailableError is used when the provider could not be reached at all.
func UnavailableError(message string, err error, opts ...ErrorOption) *Error {
	opts = append([]ErrorOption{WithDetails(err.Error()), WithLog(err)}, opts...)
	return NewError(http.StatusServiceUnavailable, message, opts...)
}

// UpstreamError mirrors a provider's non-2xx status back to the caller.
func UpstreamError(status int, message, body string, opts ...ErrorOption) *Error {
	opts = append([]ErrorOption{WithDetails(body)}, opts...)
	return NewError(status, message, opts...)
}

// InternalError creates a standard error for any internal server error
func InternalError(err error, opts ...ErrorOption) *Error {
	opts = append([]ErrorOption{WithDetails(err.Error()), WithLog(err)}, opts...)
	return NewError(http.StatusInternalServerError, "Internal server error", opts...)
}
