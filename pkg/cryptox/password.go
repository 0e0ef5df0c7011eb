package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// ErrMismatch is returned by Verify when the secret does not match the hash.
var ErrMismatch = errors.New("password does not match")

// Params are the argon2id cost parameters. They are encoded into every hash,
// so raising them later does not invalidate hashes produced with older values.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams follows the OWASP argon2id baseline (19 MiB, t=2, p=1).
var DefaultParams = Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
}

const (
	keyLength  = 32
	saltLength = 16
)

// Hasher hashes and verifies secrets with argon2id. Each call takes a slot
// from a bounded pool so a burst of logins cannot starve the rest of the
// process of CPU.
type Hasher struct {
	params Params
	pepper string
	slots  *semaphore.Weighted
}

// NewHasher creates a Hasher. Zero fields in params fall back to
// DefaultParams and a concurrency <= 0 means GOMAXPROCS.
func NewHasher(params Params, pepper string, concurrency int) *Hasher {
	if params.Memory == 0 {
		params.Memory = DefaultParams.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultParams.Parallelism
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	return &Hasher{
		params: params,
		pepper: pepper,
		slots:  semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash generates a PHC-format argon2id hash string including salt and parameters.
func (h *Hasher) Hash(ctx context.Context, secret string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("cryptox: waiting for hash slot: %w", err)
	}
	defer h.slots.Release(1)

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey(
		[]byte(secret+h.pepper),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares a plaintext secret against a PHC-style argon2id hash. It
// returns ErrMismatch for a wrong secret and a descriptive error for a
// malformed hash.
func (h *Hasher) Verify(ctx context.Context, secret, encoded string) error {
	p, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("cryptox: waiting for hash slot: %w", err)
	}
	defer h.slots.Release(1)

	computed := argon2.IDKey(
		[]byte(secret+h.pepper),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrMismatch
}

// decodeHash parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return Params{}, nil, nil, errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return Params{}, nil, nil, errors.New("invalid hash format: wrong version")
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}
	if len(key) == 0 {
		return Params{}, nil, nil, errors.New("invalid hash format: empty hash")
	}

	return p, salt, key, nil
}

// GeneratePassword returns a random alphanumeric password. Accounts created
// through federated sign-in get one of these hashed and never disclosed.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}

	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
