package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAuthnStack(t *testing.T) (*jwtx.HS256, http.Handler, *string, *string) {
	t.Helper()

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test")
	require.NoError(t, err)

	var gotUser, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserIDFromContext(r.Context())
		gotRole, _ = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Chain(inner, AuthnMiddleware(signer, testCookie()))
	return signer, handler, &gotUser, &gotRole
}

func TestAuthnMiddlewareCookie(t *testing.T) {
	signer, handler, gotUser, gotRole := newAuthnStack(t)

	token, err := signer.Sign(jwtx.NewSessionClaims("u1", "hr", "test", time.Hour, time.Now()))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", *gotUser)
	require.Equal(t, "hr", *gotRole)
}

func TestAuthnMiddlewareBearerFallback(t *testing.T) {
	signer, handler, gotUser, _ := newAuthnStack(t)

	token, err := signer.Sign(jwtx.NewSessionClaims("u2", "user", "test", time.Hour, time.Now()))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u2", *gotUser)
}

func TestAuthnMiddlewareRejections(t *testing.T) {
	signer, handler, _, _ := newAuthnStack(t)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := signer.Sign(jwtx.NewSessionClaims("u3", "user", "test", time.Hour, time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: expired})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test")
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Chain(inner,
		AuthnMiddleware(signer, testCookie()),
		RequireRole("admin", "hr"),
	)

	do := func(role string) int {
		token, err := signer.Sign(jwtx.NewSessionClaims("u", role, "test", time.Hour, time.Now()))
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("admin"))
	require.Equal(t, http.StatusOK, do("hr"))
	require.Equal(t, http.StatusForbidden, do("user"))
}
