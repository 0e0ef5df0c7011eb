package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this
// and expose sub-repositories to keep concerns tidy and testable. Having the
// sub-repos hang off Store and Tx stops people from accidentally doing
// transactions within transactions.
type Store interface {
	Users() Users
	AuditLog() AuditLog

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Only the Tx
	// passed to fn may be used inside fn.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped view of the repositories.
type Tx interface {
	Users() Users
	AuditLog() AuditLog
}

// Users is the credential store. Every email argument must already be
// normalized (see domain.NormalizeEmail).
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the email
	// is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ActivateUser sets status=active and email_verified, clears the legacy
	// verification code fields and stamps updated_at with now.
	ActivateUser(ctx context.Context, userID string, now time.Time) error

	// SetResetCode stores a reset code hash and expiry, overwriting any
	// pending code.
	SetResetCode(ctx context.Context, userID, codeHash string, expiresAt, now time.Time) error

	// ResetPassword sets the password hash, increments password_version by
	// exactly one and clears the reset code fields in one statement.
	ResetPassword(ctx context.Context, userID, newHash string, now time.Time) error

	// ClearExpiredResetCodes nulls reset codes whose expiry is at or before
	// now and returns how many accounts were touched.
	ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error)
}

// AuditFilter narrows ListAuditEntries. Zero fields match everything.
type AuditFilter struct {
	Action   domain.AuditAction
	TargetID string
	Limit    int
}

type AuditLog interface {
	// AppendAuditEntry writes one entry. The log is append-only.
	AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error

	// ListAuditEntries returns entries oldest first.
	ListAuditEntries(ctx context.Context, f AuditFilter) ([]domain.AuditEntry, error)
}
