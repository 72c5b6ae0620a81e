package store

import (
	"context"
	"errors"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	TenantUsers() TenantUsers
	Staff() Staff
	Challenges() Challenges
	BackupCodes() BackupCodes
	Pumps() Pumps
	Audit() Audit

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error,
	// the transaction is rolled back; otherwise it is committed. This is
	// the recommended way to handle transactions.
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

// TenantUsers is the credential store for owner/manager/operator rows.
// The role selects the backing table; email lookup is case-insensitive.
type TenantUsers interface {
	// GetByEmail returns the user for (role, email) or ErrNotFound.
	GetByEmail(ctx context.Context, role domain.Role, email string) (domain.User, error)

	// GetByID returns the user for (role, id) or ErrNotFound.
	GetByID(ctx context.Context, role domain.Role, id string) (domain.User, error)

	// Create inserts a new tenant user into the role's table.
	Create(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	// Used both for password changes and legacy-plaintext migration.
	UpdatePasswordHash(ctx context.Context, role domain.Role, id, newHash string) error

	// TouchLogin updates last_login to now.
	TouchLogin(ctx context.Context, role domain.Role, id string) error
}

// Staff is the credential store for company_users rows.
type Staff interface {
	// GetByEmail returns the staff user for (role, email) or ErrNotFound.
	GetByEmail(ctx context.Context, role domain.Role, email string) (domain.StaffUser, error)

	// GetByID returns the staff user by id or ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.StaffUser, error)

	// GetSuperAdmin returns the single superadmin row.
	GetSuperAdmin(ctx context.Context) (domain.StaffUser, error)

	// Create inserts a new staff user. Duplicate email returns
	// ErrAlreadyExists.
	Create(ctx context.Context, u domain.StaffUser) error

	// Delete removes a staff user. The superadmin row is never deleted.
	Delete(ctx context.Context, id string) error

	// List returns all staff excluding the superadmin row, newest first.
	List(ctx context.Context) ([]domain.StaffUser, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id, newHash string) error

	// TouchLogin updates last_login to now.
	TouchLogin(ctx context.Context, id string) error

	// SetPendingTOTPSecret writes the unconfirmed enrollment secret.
	// Overwrites any prior pending secret; never touches the active slot.
	SetPendingTOTPSecret(ctx context.Context, id, secret string) error

	// EnableTOTP promotes pending -> active, sets the enabled flag and
	// clears the pending slot in a single statement.
	EnableTOTP(ctx context.Context, id string) error

	// DisableTOTP clears the enabled flag, both secret slots.
	DisableTOTP(ctx context.Context, id string) error
}

// Challenges stores pending numeric one-time codes keyed by (email, role).
type Challenges interface {
	// Upsert writes the challenge, overwriting any prior challenge for
	// the same (email, role) key.
	Upsert(ctx context.Context, c domain.Challenge) error

	// Get returns the pending challenge for (email, role), expired or not.
	Get(ctx context.Context, email string, role domain.Role) (domain.Challenge, error)

	// Consume atomically deletes the non-expired challenge matching
	// (role, code) and returns it. ErrNotFound covers wrong code,
	// expired code and already-consumed code alike.
	Consume(ctx context.Context, role domain.Role, code string, now time.Time) (domain.Challenge, error)

	// Delete removes the challenge for (email, role) if present.
	Delete(ctx context.Context, email string, role domain.Role) error

	// DeleteExpired removes all expired challenges (housekeeping) and
	// reports how many rows were swept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BackupCodes stores hashed single-use recovery codes for staff users.
type BackupCodes interface {
	// Create stores a backup code hash for a user.
	Create(ctx context.Context, userID, codeHash string) error

	// Burn conditionally deletes the given code hash. Returns true only
	// for the caller whose delete removed the row, so concurrent
	// attempts on the same code have at most one winner.
	Burn(ctx context.Context, userID, codeHash string) (bool, error)

	// DeleteAll removes all backup codes for a user.
	DeleteAll(ctx context.Context, userID string) error

	// Count returns the number of remaining backup codes for a user.
	Count(ctx context.Context, userID string) (int, error)
}

// Pumps exposes the minimal pump lookup used for tenant resolution.
type Pumps interface {
	// GetOwnerID returns the owning tenant of a pump or ErrNotFound.
	GetOwnerID(ctx context.Context, pumpID string) (string, error)

	// Create inserts a pump row.
	Create(ctx context.Context, p domain.Pump) error
}

// Audit persists audit entries.
type Audit interface {
	Insert(ctx context.Context, e domain.AuditEntry) error
}
