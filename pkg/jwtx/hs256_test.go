package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "suggestbox-test"

func newTestHS256(t *testing.T) *HS256 {
	t.Helper()
	h, err := NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	return h
}

func TestNewHS256RequiresSecret(t *testing.T) {
	_, err := NewHS256(nil, testIssuer)
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = NewHS256([]byte{}, testIssuer)
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	h := newTestHS256(t)

	claims := NewSessionClaims("user-123", "hr", testIssuer, DefaultSessionTTL, time.Now())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", got.Subject)
	require.Equal(t, "hr", got.Role)
	require.Equal(t, testIssuer, got.Issuer)
}

func TestVerifyExpiryWindow(t *testing.T) {
	h := newTestHS256(t)

	t.Run("accepted just before 24h", func(t *testing.T) {
		issued := time.Now().Add(-(DefaultSessionTTL - time.Minute))
		token, err := h.Sign(NewSessionClaims("u", "user", testIssuer, DefaultSessionTTL, issued))
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.NoError(t, err)
	})

	t.Run("rejected just after 24h", func(t *testing.T) {
		issued := time.Now().Add(-(DefaultSessionTTL + time.Minute))
		token, err := h.Sign(NewSessionClaims("u", "user", testIssuer, DefaultSessionTTL, issued))
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestVerifyRejectsTampering(t *testing.T) {
	h := newTestHS256(t)

	token, err := h.Sign(NewSessionClaims("u", "user", testIssuer, DefaultSessionTTL, time.Now()))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewHS256([]byte("another-secret-entirely-32bytes!"), testIssuer)
		require.NoError(t, err)

		_, err = other.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("mangled signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		mangled := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

		_, err := h.Verify(mangled)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := h.Verify("not-a-jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestVerifyEnforcesIssuer(t *testing.T) {
	h := newTestHS256(t)

	token, err := h.Sign(NewSessionClaims("u", "user", "someone-else", DefaultSessionTTL, time.Now()))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}
