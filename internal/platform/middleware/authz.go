// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/respond"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

var (
	errMalformedAuthorization = apperr.Unauthorized("Authorization header must be 'Bearer <token>'")
	errInvalidToken           = apperr.Unauthorized("Invalid or expired token")
	errAuthenticationRequired = apperr.Unauthorized("Authentication required")
	errInsufficientRole       = apperr.Forbidden("Insufficient permissions")
)

// TokenVerifier is satisfied by *sec.TokenVerifier and by test stubs.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// claimsHolder lets StructuredLogger, which runs before Authenticate, learn
// who the caller was once the request is done.
type claimsHolder struct {
	userID string
}

type claimsHolderKey struct{}

func withClaimsHolder(ctx context.Context, holder *claimsHolder) context.Context {
	return context.WithValue(ctx, claimsHolderKey{}, holder)
}

/*
Authenticate verifies an optional bearer token.

Description: Requests without an Authorization header continue anonymously,
since the catalog and free chapters are public. A header that is present but
malformed or carries a bad token is rejected with 401 instead of being
downgraded to anonymous.
*/
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Error(writer, request, errMalformedAuthorization)
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				respond.Error(writer, request, errInvalidToken.WithCause(err))
				return
			}

			if holder, ok := request.Context().Value(claimsHolderKey{}).(*claimsHolder); ok {
				holder.userID = claims.UserID
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireAuth rejects anonymous callers. Mount it below [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return RequireRole(sec.RoleMember)(next)
}

// RequireRole rejects anonymous callers with 401 and callers ranked below
// role with 403.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			switch {
			case claims == nil:
				respond.Error(writer, request, errAuthenticationRequired)
			case !claims.UserRole().AtLeast(role):
				respond.Error(writer, request, errInsufficientRole)
			default:
				next.ServeHTTP(writer, request)
			}
		})
	}
}
