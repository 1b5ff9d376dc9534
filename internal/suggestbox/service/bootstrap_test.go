package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
)

func TestEnsureDefaultAdmin(t *testing.T) {
	svc := &BootstrapService{
		Store:         newTestStore(t),
		AdminName:     "Administrator",
		AdminEmail:    "admin@example.com",
		AdminPassword: "change me",
	}
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx))

	admin, err := svc.Store.Users().GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)
	require.True(t, admin.Active)

	// A second boot is a no-op.
	require.NoError(t, svc.EnsureDefaultAdmin(ctx))
	_, total, err := svc.Store.Users().ListUsers(ctx, store.UserFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestEnsureDefaultAdminSkipsNonEmptyTable(t *testing.T) {
	svc := &BootstrapService{
		Store:         newTestStore(t),
		AdminEmail:    "admin@example.com",
		AdminPassword: "change me",
	}
	ctx := context.Background()

	seedActiveUser(t, svc.Store, "ada@example.com", "pw", domain.RoleUser)

	require.NoError(t, svc.EnsureDefaultAdmin(ctx))
	_, err := svc.Store.Users().GetUserByEmail(ctx, "admin@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
