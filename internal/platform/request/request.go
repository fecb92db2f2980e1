// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil extracts path parameters, identity and JSON bodies from
HTTP requests, returning [apperr.AppError] values handlers can pass straight
to respond.Error.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/sec"
	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned when a body exceeds [MaxBodyBytes].
var ErrBodyTooLarge = apperr.New("PAYLOAD_TOO_LARGE", "Request body is too large", http.StatusRequestEntityTooLarge)

/*
DecodeJSON decodes exactly one JSON value from the request body into target.

Returns:
  - error: ErrBodyTooLarge, or validate.ErrInvalidJSON for empty, malformed
    or trailing content
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, MaxBodyBytes))

	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return validate.ErrInvalidJSON
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}

	return nil
}

// ID returns the named chi path parameter.
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// UUIDParam returns the named path parameter, rejecting anything that is not
// a canonical UUID with a 400 before it can reach a uuid column.
func UUIDParam(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if !uuid.IsValid(value) {
		return "", validate.RequiredError(name, "Must be a valid UUID")
	}
	return value, nil
}

// Claims returns the verified token claims, or nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// OptionalUserID returns the caller's user ID, or "" for anonymous requests.
func OptionalUserID(request *http.Request) string {
	return ctxutil.UserID(request.Context())
}

// RequiredClaims returns the claims or a 401 when the request is anonymous.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := Claims(request)
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the caller's user ID or a 401.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
