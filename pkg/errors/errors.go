// Package errors defines the structured error taxonomy used across the
// Identra core: validation, authorization, lookup, expiry, data-access,
// token, and internal failures, each mapped to an error code and HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/identra/identra/pkg/constants"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// AppError is the structured error type returned by every core operation.
type AppError struct {
	code       constants.ErrorCode
	httpStatus int
	message    string
	fields     []FieldError
	cause      error
}

func (e *AppError) Error() string {
	if len(e.fields) == 0 {
		return e.message
	}
	parts := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		parts = append(parts, f.String())
	}
	return e.message + ": " + strings.Join(parts, "; ")
}

// Code returns the error code for this error.
func (e *AppError) Code() constants.ErrorCode { return e.code }

// HTTPStatus returns the HTTP status the error maps to at the boundary.
func (e *AppError) HTTPStatus() int { return e.httpStatus }

// Fields returns the aggregated field-level messages, if any.
func (e *AppError) Fields() []FieldError { return e.fields }

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error { return e.cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// New creates an AppError with an explicit code and status.
func New(code constants.ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{code: code, httpStatus: httpStatus, message: message}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrValidationFailed aggregates every failed rule for an input; callers must
// pass the complete list, not just the first failure.
func ErrValidationFailed(fields ...FieldError) *AppError {
	return &AppError{
		code:       constants.ErrCodeValidationFailed,
		httpStatus: http.StatusBadRequest,
		message:    "input validation failed",
		fields:     fields,
	}
}

// ErrForbidden signals that a principal may not execute an operation.
func ErrForbidden(principal string, operation constants.OperationKind) *AppError {
	return &AppError{
		code:       constants.ErrCodeForbidden,
		httpStatus: http.StatusForbidden,
		message:    fmt.Sprintf("principal %q is not allowed to execute %q", principal, operation),
	}
}

// ErrNotFound signals an absent entity or credential.
func ErrNotFound(entity string) *AppError {
	return &AppError{
		code:       constants.ErrCodeNotFound,
		httpStatus: http.StatusNotFound,
		message:    entity + " not found",
	}
}

// ErrExpired signals a credential past its expiry.
func ErrExpired(what string) *AppError {
	return &AppError{
		code:       constants.ErrCodeExpired,
		httpStatus: http.StatusUnauthorized,
		message:    what + " has expired",
	}
}

// ErrDataAccess wraps a repository or backend failure.
func ErrDataAccess(cause error) *AppError {
	return &AppError{
		code:       constants.ErrCodeDataAccess,
		httpStatus: http.StatusServiceUnavailable,
		message:    "data access failure",
		cause:      cause,
	}
}

// ErrInvalidToken signals a malformed or unverifiable token.
func ErrInvalidToken(cause error) *AppError {
	return &AppError{
		code:       constants.ErrCodeInvalidToken,
		httpStatus: http.StatusUnauthorized,
		message:    "token is invalid",
		cause:      cause,
	}
}

// ErrInternal is the normalized error re-raised by the containment stage for
// unexpected failures; the underlying detail is logged, never exposed.
func ErrInternal(cause error) *AppError {
	return &AppError{
		code:       constants.ErrCodeInternal,
		httpStatus: http.StatusInternalServerError,
		message:    "internal error",
		cause:      cause,
	}
}

// ================================================================================
// Classification Helpers
// ================================================================================

// CodeOf extracts the error code, or ErrCodeInternal for foreign errors.
func CodeOf(err error) constants.ErrorCode {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code()
	}
	return constants.ErrCodeInternal
}

func is(err error, code constants.ErrorCode) bool {
	var app *AppError
	return errors.As(err, &app) && app.Code() == code
}

func IsValidationFailed(err error) bool { return is(err, constants.ErrCodeValidationFailed) }
func IsForbidden(err error) bool        { return is(err, constants.ErrCodeForbidden) }
func IsNotFound(err error) bool         { return is(err, constants.ErrCodeNotFound) }
func IsExpired(err error) bool          { return is(err, constants.ErrCodeExpired) }
func IsDataAccess(err error) bool       { return is(err, constants.ErrCodeDataAccess) }
func IsInvalidToken(err error) bool     { return is(err, constants.ErrCodeInvalidToken) }
func IsInternal(err error) bool         { return is(err, constants.ErrCodeInternal) }

// As is a convenience re-export so callers need not import both packages.
func As(err error, target any) bool { return errors.As(err, target) }

// Is re-exports errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }
