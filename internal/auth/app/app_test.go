package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresService(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfigFrom(map[string]string{
		"AUTH_JWT_SECRET":      testSecret,
		"AUTH_DATABASE_FILE":   filepath.Join(dir, "auth.db"),
		"AUTH_PEPPER_FILE":     filepath.Join(dir, "pepper"),
		"NOTIFY_DROP_DIR":      filepath.Join(dir, "outbox"),
		"AUTH_HASH_MEMORY_KIB": "1024",
		"AUTH_HASH_ITERATIONS": "1",
		"LOG_LEVEL":            "error",
	})
	require.NoError(t, err)

	app, err := New(cfg)
	require.NoError(t, err)
	app.housekeepingService.Start()
	t.Cleanup(func() { require.NoError(t, app.Shutdown()) })

	require.Nil(t, app.google)
	require.Nil(t, app.authService.Identity)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	client := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "disabled", ready.Checks.Google)

	reg, err := client.Register(ctx, authsdk.RegisterRequest{Name: "Lee", Email: "lee@example.edu", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, reg.Token)

	require.NoError(t, client.ForgotPassword(ctx, "lee@example.edu"))
	require.NoError(t, app.authService.WaitForDeliveries(ctx))

	matches, err := filepath.Glob(filepath.Join(dir, "outbox", "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = client.SignInWithGoogle(ctx, "token")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFrom(map[string]string{})
	require.NoError(t, err)

	_, err = New(cfg)
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}
