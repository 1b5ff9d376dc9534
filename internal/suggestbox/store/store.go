package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Messages() Messages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. This is the recommended way to run multi-step mutations
	// (e.g. OTP consumption, which must clear the code and mint the reset
	// ticket atomically).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// UserFilter narrows and pages ListUsers. Zero values mean "no filter".
type UserFilter struct {
	Name   string // substring match, case-insensitive
	Email  string // substring match, case-insensitive
	Role   domain.Role
	Active *bool // nil = both active and deactivated

	Page  int // 1-based; values < 1 are treated as 1
	Limit int // values < 1 fall back to a default page size
}

// MessageFilter narrows and pages ListMessages.
type MessageFilter struct {
	Title    string // substring match, case-insensitive
	Type     domain.MessageType
	Status   domain.MessageStatus
	SenderID string // exact match; used for the "my submissions" view

	Page  int
	Limit int
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and password recovery.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns a page of users sorted newest-created-first, plus
	// the total count matching the filter.
	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, int, error)

	// UpdateUserProfile mutates name, email, and role, and bumps updated_at.
	UpdateUserProfile(ctx context.Context, id, name, email string, role domain.Role) error

	// UpdateUserPasswordHash sets the password hash and bumps updated_at.
	UpdateUserPasswordHash(ctx context.Context, id, newHash string) error

	// SetUserActive flips the activation flag. Deactivation is reversible.
	SetUserActive(ctx context.Context, id string, active bool) error

	// SetRecoveryCode overwrites the outstanding recovery code. Last write
	// wins: a concurrent forgot-password request simply replaces the code.
	SetRecoveryCode(ctx context.Context, id, code string, expiresAt time.Time) error

	// GetUserByRecoveryCode finds the user whose stored code matches AND
	// whose code expiry is still in the future. ErrNotFound covers wrong,
	// expired, and already-consumed codes alike.
	GetUserByRecoveryCode(ctx context.Context, code string, now time.Time) (domain.User, error)

	// ClearRecoveryCode nulls the code and its expiry (single-use).
	ClearRecoveryCode(ctx context.Context, id string) error

	// SetResetTicket stores the fingerprint of the reset token minted when
	// an OTP is verified.
	SetResetTicket(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ClearResetTicket nulls the reset ticket (single-use).
	ClearResetTicket(ctx context.Context, id string) error

	// DeleteExpiredRecoveryState clears codes and tickets whose expiry has
	// passed. Housekeeping only; expiry is already enforced at read time.
	DeleteExpiredRecoveryState(ctx context.Context, now time.Time) error

	// IsEmpty returns true if there are no users (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Messages interface {
	// CreateMessage inserts a submission together with its attachments.
	CreateMessage(ctx context.Context, m domain.Message) error

	// GetMessageByID returns a message with its attachments.
	GetMessageByID(ctx context.Context, id string) (domain.Message, error)

	// ListMessages returns a page sorted newest-created-first, plus the
	// total count matching the filter.
	ListMessages(ctx context.Context, f MessageFilter) ([]domain.Message, int, error)

	// ResolveMessage sets status=resolved and records the triage comment.
	ResolveMessage(ctx context.Context, id, comment string) error
}
