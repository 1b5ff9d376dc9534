package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
)

func newRecoveryService(t *testing.T) (*RecoveryService, *recordingMailer) {
	t.Helper()

	mailer := &recordingMailer{}
	return &RecoveryService{
		Store:  newTestStore(t),
		Mailer: mailer,
	}, mailer
}

// codeFromMail pulls the 6-digit code out of the recovery email body.
func codeFromMail(t *testing.T, m sentMail) string {
	t.Helper()

	const marker = "password reset is: "
	i := strings.Index(m.Body, marker)
	require.GreaterOrEqual(t, i, 0)
	return m.Body[i+len(marker) : i+len(marker)+6]
}

func TestRequestCodeEmailsOTP(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)

	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))

	m := mailer.last(t)
	require.Equal(t, "ada@example.com", m.To)
	require.Equal(t, "Password Reset OTP", m.Subject)
	require.Len(t, codeFromMail(t, m), 6)

	got, err := svc.Store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPCode)
	require.NotNil(t, got.OTPExpiresAt)
	require.WithinDuration(t, time.Now().Add(RecoveryCodeTTL), *got.OTPExpiresAt, time.Minute)
}

func TestRequestCodeUnknownEmail(t *testing.T) {
	svc, _ := newRecoveryService(t)

	err := svc.RequestCode(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyCodeIsSingleUse(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)
	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	code := codeFromMail(t, mailer.last(t))

	token, err := svc.VerifyCode(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The same code cannot be consumed twice.
	_, err = svc.VerifyCode(ctx, code)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyCodeWrongAndExpired(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)
	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	code := codeFromMail(t, mailer.last(t))

	_, err := svc.VerifyCode(ctx, "000000")
	require.ErrorIs(t, err, ErrInvalidCode)

	// Force the code past its expiry; the correct value must now fail too.
	require.NoError(t, svc.Store.Users().SetRecoveryCode(ctx, u.ID, code, time.Now().UTC().Add(-time.Second)))
	_, err = svc.VerifyCode(ctx, code)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestRequestCodeLastWriteWins(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)

	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	first := codeFromMail(t, mailer.last(t))

	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	second := codeFromMail(t, mailer.last(t))

	if first == second {
		t.Skip("collision between generated codes")
	}

	_, err := svc.VerifyCode(ctx, first)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.VerifyCode(ctx, second)
	require.NoError(t, err)
}

func TestResetPasswordRequiresTicket(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "old pw", domain.RoleUser)

	// Without ever verifying a code, a reset must be refused.
	err := svc.ResetPassword(ctx, "ada@example.com", "made-up-token", "new pw")
	require.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	code := codeFromMail(t, mailer.last(t))

	token, err := svc.VerifyCode(ctx, code)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "ada@example.com", token, "new pw"))

	// The ticket is single-use.
	err = svc.ResetPassword(ctx, "ada@example.com", token, "another pw")
	require.ErrorIs(t, err, ErrInvalidResetToken)

	got, err := svc.Store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.ResetTokenHash)
}

func TestResetPasswordExpiredTicket(t *testing.T) {
	svc, mailer := newRecoveryService(t)
	ctx := context.Background()

	u := seedActiveUser(t, svc.Store, "ada@example.com", "old pw", domain.RoleUser)

	require.NoError(t, svc.RequestCode(ctx, "ada@example.com"))
	token, err := svc.VerifyCode(ctx, codeFromMail(t, mailer.last(t)))
	require.NoError(t, err)

	// Age the ticket out.
	got, err := svc.Store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Store.Users().SetResetTicket(ctx, u.ID, *got.ResetTokenHash, time.Now().UTC().Add(-time.Second)))

	err = svc.ResetPassword(ctx, "ada@example.com", token, "new pw")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}
