package store

import (
	"context"
	"errors"
	"time"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories hang off it so a Tx exposes exactly the same
// surface as the Store it came from.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ListFilter narrows ListUsers. Zero values mean "no filter"; Limit <= 0
// means no limit.
type ListFilter struct {
	Search string // substring of name or email, case-insensitive
	Role   domain.Role
	Offset int
	Limit  int
}

// Users is the account directory.
type Users interface {
	// GetUserByID returns ErrNotFound for unknown ids.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u as given (id is a ULID chosen by the caller).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateLastLogin records a successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	UpdateName(ctx context.Context, userID, name string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	SetActive(ctx context.Context, userID string, active bool) error

	// UpdatePasswordHash replaces the stored hash, e.g. after a rehash.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// ListUsers returns one page, newest first, and the total matching count.
	ListUsers(ctx context.Context, f ListFilter) ([]domain.User, int, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// EscapeLike escapes LIKE wildcards in s using backslash, for drivers that
// build "%s%" patterns with ESCAPE '\'.
func EscapeLike(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}
