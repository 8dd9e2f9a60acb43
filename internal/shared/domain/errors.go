package domain

import "errors"

// Error kinds shared by every bounded context. Adapters map these onto
// transport status codes; callers match them with errors.Is.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrStorageFailure         = errors.New("storage failure")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// Error is a classified domain error carrying a human readable message.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// NewError creates a classified error.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// InvalidInput creates an ErrInvalidInput error with the given message.
func InvalidInput(message string) *Error {
	return NewError(ErrInvalidInput, message)
}

// NotFound creates an ErrNotFound error with the given message.
func NotFound(message string) *Error {
	return NewError(ErrNotFound, message)
}

// StorageFailure wraps an infrastructure error as ErrStorageFailure.
func StorageFailure(cause error) *Error {
	msg := ErrStorageFailure.Error()
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: ErrStorageFailure, Message: msg, Cause: cause}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Message extracts the human readable message from err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
