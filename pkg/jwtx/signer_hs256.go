package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Signer implements the Signer interface using HMAC-SHA256 over a
// shared secret.
type HS256Signer struct {
	key []byte
	alg string
}

// NewSignerHS256 creates an HS256 signer. An empty secret fails closed with
// ErrMissingSecret; a short one is rejected outright.
func NewSignerHS256(secret string) (*HS256Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwtx: signing secret must be at least %d bytes", minSecretLength)
	}

	return &HS256Signer{
		key: []byte(secret),
		alg: jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims SessionClaims) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Validate makes sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if s == nil || len(s.key) == 0 {
		return ErrMissingSecret
	}
	return nil
}

// HS256Verifier validates session tokens signed by an HS256Signer with the
// same secret. It checks signature and expiry only.
type HS256Verifier struct {
	key []byte
	now func() time.Time
}

// NewVerifierHS256 creates a verifier for the given secret.
func NewVerifierHS256(secret string) (*HS256Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &HS256Verifier{key: []byte(secret), now: time.Now}, nil
}

// Verify validates the JWT string and returns its parsed claims.
func (v *HS256Verifier) Verify(tokenStr string) (SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)

	var claims SessionClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return SessionClaims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return SessionClaims{}, ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return SessionClaims{}, ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return SessionClaims{}, ErrMalformed
	default:
		return SessionClaims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}
}
