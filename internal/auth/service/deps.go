package service

import (
	"context"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
)

// PasswordHasher hashes passwords and reset codes. Implementations must be
// safe for concurrent use and must not hold up unrelated requests while
// hashing (see cryptox.Hasher).
type PasswordHasher interface {
	Hash(ctx context.Context, secret string) (string, error)
	// Verify returns nil on match and an error otherwise.
	Verify(ctx context.Context, secret, encoded string) error
}

// IdentityVerifier checks an external identity credential (a Google ID
// token) against the configured audience.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (domain.ExternalIdentity, error)
}

// AuditSink records security events. Record must not block the caller for
// long and never reports failure; the sink owns retries.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

// Notifier delivers a password reset code to the account holder.
type Notifier interface {
	SendResetCode(ctx context.Context, email, code string) error
}
