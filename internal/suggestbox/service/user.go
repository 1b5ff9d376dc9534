package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/mail"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/cryptox"
	"github.com/aussiebroadwan/suggestbox/pkg/idx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// UserService covers admin/HR account management: creation with generated
// credentials, listing, updates, and activation toggling.
type UserService struct {
	Store  store.Store
	Mailer mail.Mailer
}

// CreateUser provisions an account with a random initial password, which is
// delivered by email rather than returned to the caller. HR may create hr
// and user accounts but never admins.
func (s *UserService) CreateUser(ctx context.Context, actorRole domain.Role, name, email string, role domain.Role) (domain.User, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return domain.User{}, ErrInvalidInput
	}

	if !actorRole.CanAssign(role) {
		log.Warn("role assignment refused", "actor_role", actorRole, "target_role", role)
		return domain.User{}, ErrForbidden
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	subject, body := mail.CredentialsEmail(name, email, password)
	if err := s.Mailer.Send(ctx, email, subject, body); err != nil {
		return domain.User{}, err
	}

	log.Info("user created", "user_id", user.ID, "role", role)
	return user, nil
}

// ListUsers returns a filtered page of accounts, newest first, plus the
// total count for the filter.
func (s *UserService) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, int, error) {
	return s.Store.Users().ListUsers(ctx, f)
}

// UpdateUserParams carries the optional fields of an update; nil means
// leave unchanged.
type UpdateUserParams struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	Password *string
}

// UpdateUser mutates name, email, role, and optionally the password of an
// account. A deactivated target cannot be edited. A password change here
// skips the old-password check (it is an admin/HR action) and emails the new
// password to the user.
func (s *UserService) UpdateUser(ctx context.Context, actorRole domain.Role, id string, p UpdateUserParams) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if !user.Active {
		return domain.User{}, ErrInvalidInput
	}

	name := user.Name
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		name = strings.TrimSpace(*p.Name)
	}
	email := user.Email
	if p.Email != nil && strings.TrimSpace(*p.Email) != "" {
		email = strings.TrimSpace(*p.Email)
	}
	role := user.Role
	if p.Role != nil {
		if !actorRole.CanAssign(*p.Role) {
			return domain.User{}, ErrForbidden
		}
		role = *p.Role
	}

	if err := s.Store.Users().UpdateUserProfile(ctx, id, name, email, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if p.Password != nil && *p.Password != "" {
		hash, err := cryptox.HashPassword(*p.Password)
		if err != nil {
			return domain.User{}, err
		}
		if err := s.Store.Users().UpdateUserPasswordHash(ctx, id, hash); err != nil {
			return domain.User{}, err
		}

		subject, body := mail.PasswordUpdatedEmail(name, *p.Password)
		if err := s.Mailer.Send(ctx, email, subject, body); err != nil {
			return domain.User{}, err
		}
		log.Info("password updated by staff", "user_id", id)
	}

	return s.Store.Users().GetUserByID(ctx, id)
}

// ToggleStatus flips the active flag. Deactivation is reversible; records
// are never hard-deleted.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if err := s.Store.Users().SetUserActive(ctx, id, !user.Active); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user status toggled", "user_id", id, "active", !user.Active)
	user.Active = !user.Active
	return user, nil
}
