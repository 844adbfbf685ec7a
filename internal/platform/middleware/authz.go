// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/spark/internal/platform/request"
	"github.com/taibuivan/spark/internal/platform/respond"
	"github.com/taibuivan/spark/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify bearer tokens in middleware.
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to easily inject fakes during unit testing.
type TokenVerifier interface {
	Verify(token string) (*sec.Identity, error)
}

// SessionResolver resolves a session cookie value into the principal that owns it.
// It returns nil, nil when the session is unknown or expired.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*sec.Identity, error)
}

// Authenticate resolves the caller's identity.
//
// # Flow
//  1. 'Authorization: Bearer <token>' is verified via [TokenVerifier]. A bearer
//     that fails verification aborts with 401.
//  2. Otherwise the 'session' cookie is resolved via [SessionResolver].
//  3. With neither, the request proceeds as anonymous.
//  4. A resolved [*sec.Identity] is injected into the request context.
//
// sessions may be nil, in which case cookies are ignored.
func Authenticate(verifier TokenVerifier, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Bearer Token ───────────────────────────────────────────────
			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				scheme, token, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				identity, err := verifier.Verify(strings.TrimSpace(token))
				if err != nil {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}

				next.ServeHTTP(writer, request.WithContext(withIdentity(ctx, identity)))
				return
			}

			// ── 2. Session Cookie ─────────────────────────────────────────────
			if sessions != nil {
				if sessionID := requestutil.SessionID(request); sessionID != "" {
					identity, err := sessions.ResolveSession(ctx, sessionID)
					if err != nil {
						respond.Error(writer, request, err)
						return
					}
					if identity != nil {
						ctx = withIdentity(ctx, identity)
					}
				}
			}

			// ── 3. Anonymous Access ───────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// withIdentity stores identity and tags the request logger with its user id.
func withIdentity(ctx context.Context, identity *sec.Identity) context.Context {
	logger := ctxutil.GetLogger(ctx).With(slog.String("user_id", identity.UserID))
	return ctxutil.WithIdentity(ctxutil.WithLogger(ctx, logger), identity)
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
