package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmail_ActivatesWithoutCheckingCode(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u := f.seedUser(t, "pending@example.edu", "pw", domain.RoleCoordinator, domain.StatusPending)

	got, err := f.svc.VerifyEmail(context.Background(), " Pending@Example.edu", "not-the-code")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.StatusActive, got.Status)
	require.True(t, got.EmailVerified)

	stored := f.reload(t, u.ID)
	require.Nil(t, stored.EmailVerificationCodeHash)
	require.Nil(t, stored.EmailVerificationCodeExpiresAt)
	require.Len(t, f.audit.byAction(domain.AuditAccountActivated), 1)
}

func TestVerifyEmail_UnknownEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.VerifyEmail(context.Background(), "ghost@example.edu", "123456")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.VerifyEmail(context.Background(), "", "123456")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestResendVerification(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	pending := f.seedUser(t, "pending@example.edu", "pw", domain.RoleStudent, domain.StatusPending)
	active := f.seedUser(t, "active@example.edu", "pw", domain.RoleStudent, domain.StatusActive)

	require.NoError(t, f.svc.ResendVerification(ctx, "pending@example.edu"))
	require.True(t, f.reload(t, pending.ID).Activated())

	before := f.reload(t, active.ID)
	require.NoError(t, f.svc.ResendVerification(ctx, "ACTIVE@example.edu"))
	after := f.reload(t, active.ID)
	require.Equal(t, before.UpdatedAt, after.UpdatedAt)

	activations := f.audit.byAction(domain.AuditAccountActivated)
	require.Len(t, activations, 1)
	require.Equal(t, pending.ID, activations[0].TargetID)

	require.ErrorIs(t, f.svc.ResendVerification(ctx, "ghost@example.edu"), ErrInvalidEmail)
}
