package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// AuthnMiddleware verifies the session token and attaches the user identity
// and role to the request context. The token is read from the session cookie
// first, falling back to an Authorization bearer header for API clients.
// Requests without a valid token never reach the next handler.
func AuthnMiddleware(v jwtx.Verifier, cookie SessionCookie) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := cookie.Read(r)
			if !ok {
				raw = bearerToken(r)
			}
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					WriteError(w, http.StatusUnauthorized, "session expired, please log in again")
					return
				}
				log.Warn("session token rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
