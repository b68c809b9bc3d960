package store

import (
	"context"
	"errors"
	"time"

	"github.com/supportportal/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. The portal's only persistent aggregate is the user record;
// attempt counters are deliberately memory-only.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by primary key.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the identity lookup used on the login path.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by password reset.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a username or email collision.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser mutates profile fields, role and flags, and bumps
	// updated_at. Password and login timestamps have dedicated methods.
	UpdateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// SetLocked flips the durable lock flag.
	SetLocked(ctx context.Context, userID string, locked bool) error

	// RecordLogin shifts last_login_at into the displayed slot and stores
	// the new login time.
	RecordLogin(ctx context.Context, userID string, at time.Time) error

	// UpdateProfileImageURL stores the public URL of the user's image.
	UpdateProfileImageURL(ctx context.Context, userID, url string) error

	// DeleteUser removes the record outright.
	DeleteUser(ctx context.Context, userID string) error
}
