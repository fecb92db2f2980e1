// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by services and handlers.

Domain packages declare sentinels with [New] (ALREADY_OWNED,
INSUFFICIENT_BALANCE, CHAPTER_LOCKED, ...). Services return them, possibly
decorated with a cause via [AppError.WithCause], and respond.Error turns
whatever reaches the handler into the JSON error envelope. Anything that is
not an AppError is rendered as a 500.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries a client-safe message and a stable machine code.
// Cause is for server logs only and is never serialized.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one entry of a VALIDATION_ERROR's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError with the same Code, so a sentinel still matches
// after WithCause copied it.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && other != nil && e.Code == other.Code
}

// WithCause returns a copy of e carrying cause; e itself is left untouched.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// New declares an error with its own code and status.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # 4xx

// NotFound builds "<resource> not found" with code NOT_FOUND.
func NotFound(resource string) *AppError {
	return New("NOT_FOUND", resource+" not found", http.StatusNotFound)
}

func Unauthorized(message string) *AppError {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New("FORBIDDEN", message, http.StatusForbidden)
}

func Conflict(message string) *AppError {
	return New("CONFLICT", message, http.StatusConflict)
}

// ValidationError is a 400 with optional per-field details.
func ValidationError(message string, details ...FieldError) *AppError {
	err := New("VALIDATION_ERROR", message, http.StatusBadRequest)
	err.Details = details
	return err
}

func RateLimited(retryAfterSeconds int) *AppError {
	return New("RATE_LIMITED", fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds), http.StatusTooManyRequests)
}

// # 5xx

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New("INTERNAL_ERROR", "An unexpected error occurred", http.StatusInternalServerError).WithCause(cause)
}

func ServiceUnavailable(message string) *AppError {
	return New("SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable)
}

// # Helpers

// IsAppError reports whether err's chain contains an *AppError.
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first *AppError in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
