package align

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection code.
type Code string

const (
	// CodeValidation marks a request that is incomplete, such as a commit
	// with an empty required selection.
	CodeValidation Code = "VALIDATION"
	// CodeConflict marks a request that would put a token in two alignments.
	CodeConflict Code = "CONFLICT"
	// CodeNotFound marks a reference to a token that was never loaded.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is a recoverable engine error. None of them is fatal; the engine
// state is unchanged whenever one is returned.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConflict   = &Error{Code: CodeConflict, Message: "conflict"}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
)

// Validation creates a validation rejection.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Conflict creates a conflict rejection.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// NotFound creates a not-found error for a token reference.
func NotFound(id TokenID, side Side) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s token %q not loaded", side, id)}
}

// IsRejection reports whether err is a commit rejection rather than an
// unexpected failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}
