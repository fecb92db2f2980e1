// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/dberr"
)

/*
TestWrap_Classification maps raw driver errors onto application errors.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, "CONFLICT", http.StatusConflict},
		{"admin_shutdown", &pgconn.PgError{Code: "57P01"}, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "test"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.status, ae.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "test"))
}

/*
TestWrap_PassesAppErrorsThrough keeps already-classified errors intact.
*/
func TestWrap_PassesAppErrorsThrough(t *testing.T) {
	original := apperr.Forbidden("nope")
	assert.Same(t, original, dberr.Wrap(original, "test"))
}

/*
TestIsSerializationFailure recognises both contention codes.
*/
func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, dberr.IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, dberr.IsSerializationFailure(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, dberr.IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsSerializationFailure(errors.New("plain")))
}

/*
TestIsUnavailable separates connectivity faults from logic faults.
*/
func TestIsUnavailable(t *testing.T) {
	assert.True(t, dberr.IsUnavailable(&pgconn.PgError{Code: "08006"}))
	assert.True(t, dberr.IsUnavailable(context.DeadlineExceeded))
	assert.False(t, dberr.IsUnavailable(&pgconn.PgError{Code: "23514"}))
	assert.False(t, dberr.IsUnavailable(nil))
	assert.True(t, dberr.IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, dberr.IsNumericOutOfRange(fmt.Errorf("update: %w", &pgconn.PgError{Code: "22003"})))
	assert.False(t, dberr.IsNumericOutOfRange(&pgconn.PgError{Code: "23514"}))
}
