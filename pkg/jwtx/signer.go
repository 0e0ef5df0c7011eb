package jwtx

import "errors"

var (
	// ErrMissingSecret is returned when no signing secret is configured. We
	// never fall back to a default secret.
	ErrMissingSecret = errors.New("jwtx: signing secret not configured")

	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
)

// minSecretLength is the HS256 key size (RFC 7518 3.2).
const minSecretLength = 32

// Signer is our interface for anything that can sign session tokens.
type Signer interface {
	Alg() string
	Sign(SessionClaims) (string, error)
	Validate() error
}

// Verifier validates a session token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (SessionClaims, error)
}
