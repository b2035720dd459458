package store

import (
	"context"
	"errors"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict is returned when a conditional update matched no row.
	ErrConflict = errors.New("store: conflict")
	// ErrNestedTx is returned by Tx and WithTx on a transaction-scoped store.
	ErrNestedTx = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx cannot open another transaction by accident.
type Store interface {
	Users() Users
	ResetTokens() ResetTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A duplicate email is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string, at time.Time) error

	// UpdateLastLogin records a successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetActive flips the active flag and bumps updated_at.
	SetActive(ctx context.Context, userID string, active bool, at time.Time) error

	// LockUser takes a row lock on the user for the rest of the transaction
	// where the driver supports it. Returns ErrNotFound for unknown users.
	LockUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type ResetTokens interface {
	// CreateResetToken stores a new token. A second unused token for the
	// same user is rejected with ErrAlreadyExists.
	CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetResetTokenByHash returns the token regardless of its state.
	GetResetTokenByHash(ctx context.Context, hash string) (domain.PasswordResetToken, error)

	// InvalidateUserResetTokens marks every unused token of the user as used
	// and returns how many were changed.
	InvalidateUserResetTokens(ctx context.Context, userID string, at time.Time) (int64, error)

	// ConsumeResetToken atomically marks an unused, unexpired token as used
	// and returns its user id. Returns ErrConflict if no such token matched.
	ConsumeResetToken(ctx context.Context, hash string, now time.Time) (string, error)

	// CountLiveResetTokens counts unused, unexpired tokens of a user.
	CountLiveResetTokens(ctx context.Context, userID string, now time.Time) (int64, error)
}
