package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u := f.seedUser(t, "ada@example.edu", "pw", domain.RoleStudent, domain.StatusActive)

	got, err := f.svc.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "ada@example.edu", got.Email)

	_, err = f.svc.CurrentUser(ctx, "01JAAAAAAAAAAAAAAAAAAAAAAA")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.CurrentUser(ctx, "")
	require.ErrorIs(t, err, ErrUserNotFound)
}
