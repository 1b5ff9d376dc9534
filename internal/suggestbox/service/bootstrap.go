package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/cryptox"
	"github.com/aussiebroadwan/suggestbox/pkg/idx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// BootstrapService seeds the very first admin account. Self-registration is
// not supported, so an empty user table would otherwise be a locked-out
// system.
type BootstrapService struct {
	Store store.Store

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// EnsureDefaultAdmin creates the configured admin account if the user table
// is empty. Called once at startup; a no-op on every boot after the first.
func (s *BootstrapService) EnsureDefaultAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if strings.TrimSpace(s.AdminEmail) == "" || s.AdminPassword == "" {
		l.Warn("user table is empty but no default admin is configured")
		return nil
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.New().String(),
		Name:         s.AdminName,
		Email:        s.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	l.Info("default admin created", slog.String("user_id", admin.ID), slog.String("email", admin.Email))
	return nil
}
