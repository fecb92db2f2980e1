// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
// Besides the NotFound mapping, the package sorts PostgreSQL failures into the
// three buckets the transactional code cares about:
//
//   - Contention: serialization failures and deadlocks (safe to re-run).
//   - Unique violations: a concurrent writer won the race for a unique key.
//   - Unavailability: the server could not be reached or went away.
package dberr

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")

	// ErrUnavailable is returned when the database cannot be reached.
	ErrUnavailable = apperr.ServiceUnavailable("Storage is temporarily unavailable")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Errors already classified by a lower layer pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique key collisions surface as conflicts
	if IsUniqueViolation(err) {
		return apperr.Conflict(action + ": duplicate record").WithCause(err)
	}

	// 3. Connectivity problems surface as 503
	if IsUnavailable(err) {
		return ErrUnavailable.WithCause(err)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsSerializationFailure reports whether err is a PostgreSQL serialization
// failure (40001) or deadlock (40P01). Both abort the transaction without
// applying any of its writes.
func IsSerializationFailure(err error) bool {
	code := sqlState(err)
	return code == pgerrcode.SerializationFailure || code == pgerrcode.DeadlockDetected
}

// IsUniqueViolation reports whether err is a unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return sqlState(err) == pgerrcode.UniqueViolation
}

// IsNumericOutOfRange reports whether err is a numeric overflow (22003).
func IsNumericOutOfRange(err error) bool {
	return sqlState(err) == pgerrcode.NumericValueOutOfRange
}

// IsCheckViolation reports whether err is a CHECK constraint violation (23514).
func IsCheckViolation(err error) bool {
	return sqlState(err) == pgerrcode.CheckViolation
}

// IsUnavailable reports whether err means the database could not be used at
// all: connection exceptions, server shutdown, network or timeout errors.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	code := sqlState(err)
	if pgerrcode.IsConnectionException(code) ||
		code == pgerrcode.AdminShutdown ||
		code == pgerrcode.CrashShutdown ||
		code == pgerrcode.CannotConnectNow ||
		code == pgerrcode.QueryCanceled {
		return true
	}

	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sqlState extracts the SQLSTATE code from a pgx error chain.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
