package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
)

func newAuthService(t *testing.T) (*AuthService, *jwtx.HS256) {
	t.Helper()

	hs, err := jwtx.NewHS256([]byte("test-secret"), "suggestbox")
	require.NoError(t, err)

	return &AuthService{
		Store:  newTestStore(t),
		Signer: hs,
		Issuer: "suggestbox",
	}, hs
}

func TestLoginSuccess(t *testing.T) {
	svc, hs := newAuthService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "correct horse", domain.RoleHR)

	user, token, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, u.ID, user.ID)

	claims, err := hs.Verify(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "hr", claims.Role)
	require.WithinDuration(t, time.Now().Add(jwtx.DefaultSessionTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	seedActiveUser(t, svc.Store, "ada@example.com", "correct horse", domain.RoleUser)

	_, _, err := svc.Login(context.Background(), "ada@example.com", "wrong horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedBeforePasswordCheck(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "correct horse", domain.RoleUser)
	require.NoError(t, svc.Store.Users().SetUserActive(ctx, u.ID, false))

	// Deactivation wins even when the password is correct...
	_, _, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.ErrorIs(t, err, ErrAccountDeactivated)

	// ...and also when it is wrong.
	_, _, err = svc.Login(ctx, "ada@example.com", "wrong horse")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)

	got, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	_, err = svc.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "old password", domain.RoleUser)

	err := svc.ChangePassword(ctx, u.ID, "not the old one", "new password")
	require.ErrorIs(t, err, ErrPasswordMismatch)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old password", "new password"))

	_, _, err = svc.Login(ctx, "ada@example.com", "old password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ada@example.com", "new password")
	require.NoError(t, err)
}
