package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, name, email string, role domain.Role) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "$argon2id$fake",
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "Ada Lovelace", "ada@example.com", domain.RoleAdmin)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.True(t, got.Active)
	require.Nil(t, got.OTPCode)

	got, err = s.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetUserByID(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)

	dup := domain.User{
		ID:           idx.New().String(),
		Name:         "Other Ada",
		Email:        "ada@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	err := s.Users().CreateUser(context.Background(), dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestListUsersFiltersAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := seedUser(t, s, "Grace Hopper", "grace@example.com", domain.RoleAdmin)
	seedUser(t, s, "Ada Lovelace", "ada@example.com", domain.RoleUser)
	deactivated := seedUser(t, s, "Alan Turing", "alan@example.com", domain.RoleUser)
	require.NoError(t, s.Users().SetUserActive(ctx, deactivated.ID, false))

	users, total, err := s.Users().ListUsers(ctx, store.UserFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 3)

	users, total, err = s.Users().ListUsers(ctx, store.UserFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, admin.ID, users[0].ID)

	active := true
	users, total, err = s.Users().ListUsers(ctx, store.UserFilter{Active: &active})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, users, 2)

	users, total, err = s.Users().ListUsers(ctx, store.UserFilter{Name: "lovelace"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Ada Lovelace", users[0].Name)

	users, total, err = s.Users().ListUsers(ctx, store.UserFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 2)

	users, _, err = s.Users().ListUsers(ctx, store.UserFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRecoveryCodeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)

	require.NoError(t, s.Users().SetRecoveryCode(ctx, u.ID, "123456", now.Add(10*time.Minute)))

	got, err := s.Users().GetUserByRecoveryCode(ctx, "123456", now)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	// Wrong code and expired code both surface as not found.
	_, err = s.Users().GetUserByRecoveryCode(ctx, "000000", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByRecoveryCode(ctx, "123456", now.Add(11*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)

	// A later request overwrites the outstanding code.
	require.NoError(t, s.Users().SetRecoveryCode(ctx, u.ID, "654321", now.Add(10*time.Minute)))
	_, err = s.Users().GetUserByRecoveryCode(ctx, "123456", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().ClearRecoveryCode(ctx, u.ID))
	_, err = s.Users().GetUserByRecoveryCode(ctx, "654321", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetTicketLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)

	require.NoError(t, s.Users().SetResetTicket(ctx, u.ID, "fingerprint", now.Add(10*time.Minute)))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResetTokenHash)
	require.Equal(t, "fingerprint", *got.ResetTokenHash)

	require.NoError(t, s.Users().ClearResetTicket(ctx, u.ID))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.ResetTokenHash)
	require.Nil(t, got.ResetExpiresAt)
}

func TestDeleteExpiredRecoveryState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)
	fresh := seedUser(t, s, "Grace", "grace@example.com", domain.RoleUser)

	require.NoError(t, s.Users().SetRecoveryCode(ctx, expired.ID, "111111", now.Add(-time.Minute)))
	require.NoError(t, s.Users().SetRecoveryCode(ctx, fresh.ID, "222222", now.Add(10*time.Minute)))

	require.NoError(t, s.Users().DeleteExpiredRecoveryState(ctx, now))

	got, err := s.Users().GetUserByID(ctx, expired.ID)
	require.NoError(t, err)
	require.Nil(t, got.OTPCode)

	got, err = s.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPCode)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)

	wantErr := store.ErrNotFound
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetUserActive(ctx, u.ID, false); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.Active)
}

func TestMessagesRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sender := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)

	m := domain.Message{
		ID:          idx.New().String(),
		Title:       "Broken coffee machine",
		Description: "The machine on level 2 leaks.",
		SenderID:    sender.ID,
		Type:        domain.MessageTypeIssue,
		Status:      domain.MessageStatusPending,
		Files: []domain.Attachment{
			{URL: "https://blob/1.jpg", MimeType: "image/jpeg"},
			{URL: "https://blob/2.pdf", MimeType: "application/pdf"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Messages().CreateMessage(ctx, m))

	got, err := s.Messages().GetMessageByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, m.Title, got.Title)
	require.Equal(t, domain.MessageStatusPending, got.Status)
	require.Len(t, got.Files, 2)
	require.Equal(t, "image/jpeg", got.Files[0].MimeType)

	_, err = s.Messages().GetMessageByID(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListMessagesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := seedUser(t, s, "Ada", "ada@example.com", domain.RoleUser)
	b := seedUser(t, s, "Grace", "grace@example.com", domain.RoleUser)

	mk := func(sender, title string, mtype domain.MessageType) domain.Message {
		m := domain.Message{
			ID:          idx.New().String(),
			Title:       title,
			Description: "d",
			SenderID:    sender,
			Type:        mtype,
			Status:      domain.MessageStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, s.Messages().CreateMessage(ctx, m))
		return m
	}

	issue := mk(a.ID, "Leaky tap", domain.MessageTypeIssue)
	mk(a.ID, "Standing desks", domain.MessageTypeIdea)
	mk(b.ID, "Bike racks", domain.MessageTypeIdea)

	msgs, total, err := s.Messages().ListMessages(ctx, store.MessageFilter{Type: domain.MessageTypeIdea})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, msgs, 2)

	msgs, total, err = s.Messages().ListMessages(ctx, store.MessageFilter{SenderID: a.ID})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	msgs, total, err = s.Messages().ListMessages(ctx, store.MessageFilter{Title: "leaky"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, issue.ID, msgs[0].ID)

	require.NoError(t, s.Messages().ResolveMessage(ctx, issue.ID, "Plumber booked."))

	msgs, total, err = s.Messages().ListMessages(ctx, store.MessageFilter{Status: domain.MessageStatusResolved})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Plumber booked.", msgs[0].Comment)

	err = s.Messages().ResolveMessage(ctx, "nope", "x")
	require.ErrorIs(t, err, store.ErrNotFound)
}
