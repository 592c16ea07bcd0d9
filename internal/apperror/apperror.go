// Package apperror defines the error taxonomy shared by sessions, the repository and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSignedIn is returned by operations that need a signed-in user.
	ErrNotSignedIn = errors.New("no user is signed in")
	// ErrUnauthorized is returned when credentials or tokens are rejected.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrNotFound is returned by lookups that the caller expects to succeed.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports input that was rejected before any work was dispatched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// RemoteError wraps a failure of a network-bound collaborator.
// Its message is the underlying message, unchanged, so it can be shown to the user.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemote wraps err as a RemoteError for op.
func NewRemote(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRemote reports whether err is or wraps a RemoteError.
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}

// Message returns the text a UI should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var r *RemoteError
	if errors.As(err, &r) {
		return r.Error()
	}
	return err.Error()
}
