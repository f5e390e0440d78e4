package service

import (
	"errors"
	"fmt"

	"github.com/ericogr/mtcg/internal/storage"
)

// Code classifies service errors so callers can map them to responses.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeValidation   Code = "validation"
	CodePersistence  Code = "persistence"
	CodeUnauthorized Code = "unauthorized"
)

// Error is the error type returned by the service layer.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrPersistence  = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
)

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// storeError converts a storage failure into a service error.
func storeError(message string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return wrapError(CodeNotFound, message, err)
	case errors.Is(err, storage.ErrStaleBattle), errors.Is(err, storage.ErrOwnershipChanged):
		return wrapError(CodeConflict, message, err)
	}
	return wrapError(CodePersistence, message, err)
}

// CodeOf returns the code of the first service error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}
