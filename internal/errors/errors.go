package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a memnotes error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrCategoryNotEmpty  ErrorCode = "CATEGORY_NOT_EMPTY"  // 409
	ErrBusy              ErrorCode = "BUSY"                // 409
	ErrProducerFailure   ErrorCode = "PRODUCER_FAILURE"    // 422
	ErrRenderFailure     ErrorCode = "RENDER_FAILURE"      // 500
	ErrPersistFailure    ErrorCode = "PERSIST_FAILURE"     // 500
	ErrShareFailure      ErrorCode = "SHARE_FAILURE"       // 502
	ErrShareUnavailable  ErrorCode = "SHARE_UNAVAILABLE"   // 503
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// NoteError represents a structured error with code, status, and details.
type NoteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is the underlying error, kept for logging only.
	cause error
}

// Error implements the error interface.
func (e *NoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *NoteError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NoteError {
	return &NoteError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing note or category.
func NewNotFound(kind, identifier string) *NoteError {
	return &NoteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for category name collisions.
func NewNameAlreadyExists(name string) *NoteError {
	return &NoteError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("category with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewCategoryNotEmpty creates a 409 error for deleting a category that
// still holds notes.
func NewCategoryNotEmpty(name string, notes int) *NoteError {
	return &NoteError{
		Code:    ErrCategoryNotEmpty,
		Status:  409,
		Message: fmt.Sprintf("category %q still contains %d note(s); move or delete them first", name, notes),
		Details: map[string]any{"name": name, "notes": notes},
	}
}

// NewBusy creates a 409 error returned when an export is already running.
func NewBusy() *NoteError {
	return &NoteError{
		Code:    ErrBusy,
		Status:  409,
		Message: "an export is already in progress",
	}
}

// NewProducerFailure creates a 422 error when the note producer fails.
func NewProducerFailure(err error) *NoteError {
	return &NoteError{
		Code:    ErrProducerFailure,
		Status:  422,
		Message: causeMessage("no note data available", err),
		cause:   err,
	}
}

// NewRenderFailure creates a 500 error when document markup cannot be built.
func NewRenderFailure(err error) *NoteError {
	return &NoteError{
		Code:    ErrRenderFailure,
		Status:  500,
		Message: causeMessage("failed to render document", err),
		cause:   err,
	}
}

// NewPersistFailure creates a 500 error when the document cannot be written.
func NewPersistFailure(path string, err error) *NoteError {
	return &NoteError{
		Code:    ErrPersistFailure,
		Status:  500,
		Message: causeMessage("failed to write document", err),
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewShareFailure creates a 502 error when the share facility rejects a file.
func NewShareFailure(path string, err error) *NoteError {
	return &NoteError{
		Code:    ErrShareFailure,
		Status:  502,
		Message: causeMessage("failed to share document", err),
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewShareUnavailable creates a 503 error when no share facility exists.
func NewShareUnavailable(path string) *NoteError {
	return &NoteError{
		Code:    ErrShareUnavailable,
		Status:  503,
		Message: "sharing is not available in this environment",
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NoteError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NoteError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error (or anything it wraps) is a NoteError with the given code.
func Is(err error, code ErrorCode) bool {
	var nErr *NoteError
	if stderrors.As(err, &nErr) {
		return nErr.Code == code
	}
	return false
}

// As returns err as a *NoteError, wrapping unknown errors as INTERNAL.
func As(err error) *NoteError {
	if err == nil {
		return nil
	}
	var nErr *NoteError
	if stderrors.As(err, &nErr) {
		return nErr
	}
	return NewInternal(err)
}

func causeMessage(prefix string, err error) string {
	if err == nil {
		return prefix
	}
	return prefix + ": " + err.Error()
}
