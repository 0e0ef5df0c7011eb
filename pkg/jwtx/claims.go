package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is the fixed lifetime of a session token. There is no
// refresh mechanism; clients sign in again once it lapses.
const SessionTokenTTL = 7 * 24 * time.Hour

// SessionClaims are the claims embedded in a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Role  string `json:"role"`

	// PasswordVersion ("pv") is the user's password version at issuance. A
	// verifier that compares it with the live record can invalidate tokens
	// issued before a password change.
	PasswordVersion int64 `json:"pv"`
}

// NewSessionClaims builds the claim set for a session token issued at now.
func NewSessionClaims(subject, email, role string, passwordVersion int64, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
			ID:        NewJTI(),
		},
		Email:           email,
		Role:            role,
		PasswordVersion: passwordVersion,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired at now.
func (c *SessionClaims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
