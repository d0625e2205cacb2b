package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// PluginNotFound creates an AppError for an unregistered plugin name.
func PluginNotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodePluginNotFound, Message: fmt.Sprintf("plugin %q is not registered", name),
		Details: map[string]any{"plugin": name},
	}
}

// PluginUnavailable creates an AppError for a plugin whose precondition check failed.
func PluginUnavailable(name string) *AppError {
	return &AppError{
		Code: ErrCodePluginUnavailable, Message: fmt.Sprintf("plugin %q is not available", name),
		Retryable: true,
		Details:   map[string]any{"plugin": name},
	}
}

// ActivationFailed creates an AppError for a failed activation attempt.
func ActivationFailed(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeActivationFailed, Message: fmt.Sprintf("plugin %q failed to activate: %s", name, reason),
		Details: map[string]any{"plugin": name, "reason": reason},
	}
}

// DeactivationFailed creates an AppError for a plugin that failed to stop cleanly.
func DeactivationFailed(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeactivationFailed, Message: fmt.Sprintf("plugin %q failed to deactivate", name),
		Details: map[string]any{"plugin": name},
		Cause:   cause,
	}
}

// FallbackExhausted creates an AppError carrying the complete per-plugin error map.
func FallbackExhausted(primary string, perPlugin map[string]string) *AppError {
	return &AppError{
		Code: ErrCodeFallbackExhausted, Message: "no transcription plugin could be activated",
		Details: map[string]any{"primary": primary, "plugin_errors": perPlugin},
	}
}

// InvalidOptions creates an AppError for a rejected option map.
func InvalidOptions(plugin, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidOptions, Message: fmt.Sprintf("invalid options for plugin %q: %s", plugin, reason),
		Details: map[string]any{"plugin": plugin},
	}
}

// MissingField creates an AppError for a missing required option field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("required field %q is missing", field),
		Details: map[string]any{"field": field},
	}
}

// ModelMissing creates an AppError for an absent model asset.
func ModelMissing(plugin, path string) *AppError {
	return &AppError{
		Code: ErrCodeModelMissing, Message: fmt.Sprintf("model for plugin %q not found at %s", plugin, path),
		Details: map[string]any{"plugin": plugin, "path": path},
	}
}

// DataError creates an AppError for a failed plugin data operation.
func DataError(plugin string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDataError, Message: fmt.Sprintf("data operation failed for plugin %q", plugin),
		Details: map[string]any{"plugin": plugin},
		Cause:   cause,
	}
}

// Internal creates an AppError for an internal failure.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Validation creates an AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidOptions, Message: message}
}

// --- Inspection helpers ---

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError extracts an *AppError from err, wrapping plain errors as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error()).WithCause(err)
}

// IsRetryable reports whether the error is worth retrying later.
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
