package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/cryptox"
	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// AuthService handles login, session issuance, and self-service password
// changes.
type AuthService struct {
	Store  store.Store
	Signer jwtx.Signer

	Issuer     string
	SessionTTL time.Duration
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.SessionTTL
}

// Login authenticates an email/password pair and mints a session token.
//
// The checks run in a deliberate order: an unknown email reports invalid
// credentials, a deactivated account is refused before the password is even
// compared, and only then is the password verified.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if !user.Active {
		log.Warn("login refused for deactivated account", "user_id", user.ID)
		return domain.User{}, "", ErrAccountDeactivated
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	claims := jwtx.NewSessionClaims(user.ID, user.Role.String(), s.Issuer, s.sessionTTL(), time.Now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.User{}, "", err
	}

	log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Profile returns the caller's own user record.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return ErrPasswordMismatch
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdateUserPasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}
