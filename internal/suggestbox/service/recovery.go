package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/mail"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/cryptox"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

const (
	// RecoveryCodeTTL bounds how long an emailed code stays usable.
	RecoveryCodeTTL = 10 * time.Minute

	// ResetTicketTTL bounds the window between verifying a code and
	// actually setting the new password.
	ResetTicketTTL = 10 * time.Minute

	recoveryCodeDigits = 6
)

// RecoveryService implements the forgot/verify/reset password flow.
//
// The flow is three steps: RequestCode emails a 6-digit code, VerifyCode
// consumes it and returns an opaque reset token, and ResetPassword requires
// that token. A reset is therefore always bound to a verified code.
type RecoveryService struct {
	Store  store.Store
	Mailer mail.Mailer
}

// RequestCode issues a recovery code for the account behind the email and
// sends it out. An outstanding code is simply overwritten: last write wins.
func (s *RecoveryService) RequestCode(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidInput
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := cryptox.GenerateNumericCode(recoveryCodeDigits)
	if err != nil {
		return err
	}

	if err := s.Store.Users().SetRecoveryCode(ctx, user.ID, code, time.Now().UTC().Add(RecoveryCodeTTL)); err != nil {
		return err
	}

	subject, body := mail.RecoveryCodeEmail(user.Name, code)
	if err := s.Mailer.Send(ctx, user.Email, subject, body); err != nil {
		return err
	}

	log.Info("recovery code issued", "user_id", user.ID)
	return nil
}

// VerifyCode consumes a recovery code and mints a single-use reset token.
// Wrong, expired, and already-used codes all produce the same error.
func (s *RecoveryService) VerifyCode(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrInvalidCode
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}
	fingerprint := cryptox.FingerprintToken(token)

	// Clearing the code and minting the ticket must be atomic so a code can
	// never be consumed twice.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByRecoveryCode(ctx, code, time.Now().UTC())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCode
			}
			return err
		}

		if err := tx.Users().ClearRecoveryCode(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().SetResetTicket(ctx, user.ID, fingerprint, time.Now().UTC().Add(ResetTicketTTL))
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// ResetPassword sets a new password for the account behind the email,
// provided the caller holds a live reset token from VerifyCode.
func (s *RecoveryService) ResetPassword(ctx context.Context, email, resetToken, newPassword string) error {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || newPassword == "" {
		return ErrInvalidInput
	}
	if resetToken == "" {
		return ErrInvalidResetToken
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	now := time.Now().UTC()
	if user.ResetTokenHash == nil || user.ResetExpiresAt == nil ||
		now.After(*user.ResetExpiresAt) ||
		*user.ResetTokenHash != cryptox.FingerprintToken(resetToken) {
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUserPasswordHash(ctx, user.ID, hash); err != nil {
			return err
		}
		return tx.Users().ClearResetTicket(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	log.Info("password reset completed", "user_id", user.ID)
	return nil
}
