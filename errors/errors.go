package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type of the client.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the status code returned by the server, or 0 when the
	// error was raised locally.
	HTTPStatus int `json:"status,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Code == ErrCodeResponse {
		msg = fmt.Sprintf("%d %s", e.HTTPStatus, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Constructors ---

// Option creates an error for an invalid option combination.
func Option(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeOptionInvalid, Message: fmt.Sprintf(format, args...)}
}

// EmptyName creates an error for an empty path segment.
func EmptyName(segment string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyName, Message: fmt.Sprintf("%s name must not be empty", segment),
		Details: map[string]any{"segment": segment},
	}
}

// Authentication creates an error for a failed credential exchange.
func Authentication(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeAuthentication, Message: fmt.Sprintf(format, args...)}
}

// AuthenticationStatus creates an authentication error carrying the identity
// service's response status.
func AuthenticationStatus(status int, text string) *AppError {
	return &AppError{
		Code: ErrCodeAuthentication, Message: fmt.Sprintf("%d: %s", status, text),
		HTTPStatus: status,
	}
}

// Response creates an error for a non-success response. An empty text is
// replaced by the standard status text.
func Response(status int, text string) *AppError {
	if text == "" {
		text = http.StatusText(status)
	}
	return &AppError{Code: ErrCodeResponse, Message: text, HTTPStatus: status}
}

// TempURLKeyMissing creates an error for signing without a configured key.
func TempURLKeyMissing() *AppError {
	return &AppError{Code: ErrCodeTempURLKeyMissing, Message: "temp_url_key is not configured"}
}

// UnseekableBody creates an error for a streamed body that cannot be rewound.
func UnseekableBody(bodyType string) *AppError {
	return &AppError{
		Code: ErrCodeUnseekableBody, Message: fmt.Sprintf("request body of type %s does not implement io.Seeker", bodyType),
		Details: map[string]any{"type": bodyType},
	}
}

// --- Inspection helpers ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsResponse reports whether err is a ResponseError, optionally with one of
// the given status codes.
func IsResponse(err error, statuses ...int) bool {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeResponse {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if appErr.HTTPStatus == s {
			return true
		}
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return 0
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
