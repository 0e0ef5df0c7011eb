package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser(email string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleStudent,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser("ada@example.edu")
	code := "legacy-hash"
	exp := time.Now().Add(time.Hour).UTC()
	u.EmailVerificationCodeHash = &code
	u.EmailVerificationCodeExpiresAt = &exp
	u.StudentID = "S1234"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, "S1234", byID.StudentID)
	require.Equal(t, domain.StatusPending, byID.Status)
	require.NotNil(t, byID.EmailVerificationCodeExpiresAt)
	require.True(t, exp.Equal(*byID.EmailVerificationCodeExpiresAt))
	require.Nil(t, byID.ResetPasswordCodeHash)

	byEmail, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.edu")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("dup@example.edu")))
	err := s.Users().CreateUser(ctx, newTestUser("dup@example.edu"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_ActivateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser("pending@example.edu")
	code := "legacy-hash"
	u.EmailVerificationCodeHash = &code
	require.NoError(t, s.Users().CreateUser(ctx, u))

	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Users().ActivateUser(ctx, u.ID, at))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.Activated())
	require.Nil(t, got.EmailVerificationCodeHash)
	require.Nil(t, got.EmailVerificationCodeExpiresAt)
	require.True(t, at.Equal(got.UpdatedAt), "updated_at comes from the caller's clock")

	require.ErrorIs(t, s.Users().ActivateUser(ctx, "missing", at), store.ErrNotFound)
}

func TestUsers_ResetCodeLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser("reset@example.edu")
	u.Status = domain.StatusActive
	require.NoError(t, s.Users().CreateUser(ctx, u))

	issuedAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	exp := issuedAt.Add(10 * time.Minute)
	require.NoError(t, s.Users().SetResetCode(ctx, u.ID, "code-hash", exp, issuedAt))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResetPasswordCodeHash)
	require.Equal(t, "code-hash", *got.ResetPasswordCodeHash)
	require.True(t, exp.Equal(*got.ResetPasswordCodeExpiresAt))
	require.True(t, issuedAt.Equal(got.UpdatedAt))

	resetAt := issuedAt.Add(time.Minute)
	require.NoError(t, s.Users().ResetPassword(ctx, u.ID, "new-hash", resetAt))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Equal(t, u.PasswordVersion+1, got.PasswordVersion)
	require.Nil(t, got.ResetPasswordCodeHash)
	require.Nil(t, got.ResetPasswordCodeExpiresAt)
	require.True(t, resetAt.Equal(got.UpdatedAt))

	require.ErrorIs(t, s.Users().ResetPassword(ctx, "missing", "x", resetAt), store.ErrNotFound)
}

func TestUsers_ClearExpiredResetCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	expired := newTestUser("expired@example.edu")
	fresh := newTestUser("fresh@example.edu")
	require.NoError(t, s.Users().CreateUser(ctx, expired))
	require.NoError(t, s.Users().CreateUser(ctx, fresh))
	require.NoError(t, s.Users().SetResetCode(ctx, expired.ID, "a", now.Add(-time.Second), now))
	require.NoError(t, s.Users().SetResetCode(ctx, fresh.ID, "b", now.Add(time.Minute), now))

	n, err := s.Users().ClearExpiredResetCodes(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := s.Users().GetUserByID(ctx, expired.ID)
	require.NoError(t, err)
	require.Nil(t, got.ResetPasswordCodeHash)

	got, err = s.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResetPasswordCodeHash)
}

func TestAuditLog_AppendAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC()
	entries := []domain.AuditEntry{
		{Action: domain.AuditLoginFailure, Entity: domain.AuditEntityUser, Message: "unknown email", Timestamp: base},
		{Action: domain.AuditLoginSuccess, ActorID: "u1", TargetID: "u1", Entity: domain.AuditEntityUser, EntityID: "u1",
			Metadata: map[string]string{"method": "google"}, Timestamp: base.Add(time.Millisecond)},
		{Action: domain.AuditLoginFailure, ActorID: "u1", TargetID: "u1", Entity: domain.AuditEntityUser, EntityID: "u1", Timestamp: base.Add(2 * time.Millisecond)},
	}
	for _, e := range entries {
		require.NoError(t, s.AuditLog().AppendAuditEntry(ctx, e))
	}

	all, err := s.AuditLog().ListAuditEntries(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domain.AuditLoginFailure, all[0].Action)
	require.Empty(t, all[0].ActorID)
	require.Equal(t, "google", all[1].Metadata["method"])
	require.NotEmpty(t, all[1].ID)

	failures, err := s.AuditLog().ListAuditEntries(ctx, store.AuditFilter{Action: domain.AuditLoginFailure, TargetID: "u1"})
	require.NoError(t, err)
	require.Len(t, failures, 1)

	limited, err := s.AuditLog().ListAuditEntries(ctx, store.AuditFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestAuditLog_AppendOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AuditLog().AppendAuditEntry(ctx, domain.AuditEntry{
		Action: domain.AuditLoginSuccess, Entity: domain.AuditEntityUser, Timestamp: time.Now(),
	}))

	_, err := s.db.ExecContext(ctx, `UPDATE audit_log SET message = 'tampered'`)
	require.Error(t, err)
	_, err = s.db.ExecContext(ctx, `DELETE FROM audit_log`)
	require.Error(t, err)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser("tx@example.edu")
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}
