package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/campusauth/pkg/cryptox"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, e domain.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) byAction(action domain.AuditAction) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type captureNotifier struct {
	mu      sync.Mutex
	codes   map[string][]string
	ctxErrs []error
	bounded []bool
	err     error
}

func (n *captureNotifier) SendResetCode(ctx context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = make(map[string][]string)
	}
	n.codes[email] = append(n.codes[email], code)
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	_, hasDeadline := ctx.Deadline()
	n.bounded = append(n.bounded, hasDeadline)
	return n.err
}

func (n *captureNotifier) last(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	codes := n.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

// countingHasher counts Hash calls made through the service.
type countingHasher struct {
	PasswordHasher

	mu     sync.Mutex
	hashes int
}

func (h *countingHasher) Hash(ctx context.Context, secret string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.PasswordHasher.Hash(ctx, secret)
}

func (h *countingHasher) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

type stubIdentity struct {
	ident domain.ExternalIdentity
	err   error
	calls int
}

func (s *stubIdentity) Verify(_ context.Context, _ string) (domain.ExternalIdentity, error) {
	s.calls++
	return s.ident, s.err
}

var errProviderDown = errors.New("jwks fetch failed")

type fixture struct {
	svc      *AuthService
	store    *sqlite.Store
	audit    *recordingAudit
	notifier *captureNotifier
	identity *stubIdentity
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		audit:    &recordingAudit{},
		notifier: &captureNotifier{},
		identity: &stubIdentity{},
		clock:    time.Now().UTC().Truncate(time.Second),
	}
	f.svc = &AuthService{
		Store:    st,
		Hasher:   cryptox.NewHasher(cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1}, "test-pepper", 2),
		Signer:   signer,
		Identity: f.identity,
		Audit:    f.audit,
		Notifier: f.notifier,
		Now:      func() time.Time { return f.clock },
	}
	t.Cleanup(func() { _ = f.svc.WaitForDeliveries(context.Background()) })
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

// flush waits for background reset-code deliveries.
func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.WaitForDeliveries(ctx))
}

// seedUser inserts a user directly, bypassing Register's role and status
// policy.
func (f *fixture) seedUser(t *testing.T, email, password string, role domain.Role, status domain.Status) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := f.svc.Hasher.Hash(ctx, password)
	require.NoError(t, err)

	u := domain.User{
		ID:            idx.New().String(),
		Name:          "Seeded",
		Email:         domain.NormalizeEmail(email),
		PasswordHash:  hash,
		Role:          role,
		Status:        status,
		EmailVerified: status == domain.StatusActive,
		CreatedAt:     f.clock,
		UpdatedAt:     f.clock,
	}
	if status == domain.StatusPending {
		legacy := "legacy-code-hash"
		exp := f.clock.Add(24 * time.Hour)
		u.EmailVerificationCodeHash = &legacy
		u.EmailVerificationCodeExpiresAt = &exp
	}
	require.NoError(t, f.store.Users().CreateUser(ctx, u))
	return u
}

func (f *fixture) reload(t *testing.T, id string) domain.User {
	t.Helper()
	u, err := f.store.Users().GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func verifyToken(t *testing.T, token string) jwtx.SessionClaims {
	t.Helper()
	v, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)
	claims, err := v.Verify(token)
	require.NoError(t, err)
	return claims
}
