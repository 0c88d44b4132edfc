// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-waitset.

package api

import "fmt"

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInternal
	ErrCodeInsufficientResources
	ErrCodeInsufficientCapacity
	ErrCodeAlreadyAttached
	ErrCodeInsufficientPermissions
	ErrCodeNoAttachments
	ErrCodeNotSupported
)

// Common errors used across the library. Each carries only its code and a
// base message; call sites add context via WithContext.
var (
	ErrInternal                = NewError(ErrCodeInternal, "internal error")
	ErrInsufficientResources   = NewError(ErrCodeInsufficientResources, "insufficient resources")
	ErrInsufficientCapacity    = NewError(ErrCodeInsufficientCapacity, "waitset capacity exhausted")
	ErrAlreadyAttached         = NewError(ErrCodeAlreadyAttached, "event source already attached")
	ErrInsufficientPermissions = NewError(ErrCodeInsufficientPermissions, "insufficient permissions")
	ErrNoAttachments           = NewError(ErrCodeNoAttachments, "waitset has no attachments")
	ErrNotSupported            = NewError(ErrCodeNotSupported, "operation not supported on this platform")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches errors by code so that sentinel comparisons via errors.Is work
// on wrapped and contextualized instances alike.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapError attaches a cause to a new structured error.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext returns a copy of the error carrying an extra context entry.
// The receiver is not mutated, so package-level sentinels stay pristine.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx, Cause: e.Cause}
}
