package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/")
}

func TestNewSDKClient_TrimsSlash(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://auth.example.edu/")
	require.Equal(t, "https://auth.example.edu", client.BaseURL)
	require.Equal(t, "https://auth.example.edu/v1/auth/login", client.url("/v1/auth/login"))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "correct horse" {
			ErrInvalidCredentials.WriteError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AuthResponse{
			Success: true,
			User:    User{ID: "u1", Email: req.Email, Role: "student"},
			Token:   "tok",
		})
	})

	t.Run("success", func(t *testing.T) {
		sess, err := client.Login(context.Background(), "ada@example.edu", "correct horse")
		require.NoError(t, err)
		require.Equal(t, "tok", sess.Token())
		require.Equal(t, "u1", sess.User().ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(context.Background(), "ada@example.edu", "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "invalid email or password", apiErr.Description)
	})
}

func TestRegister_NullToken(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/register", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u2","email":"bo@example.edu"},"email":"bo@example.edu","token":null}`))
	})

	out, err := client.Register(context.Background(), RegisterRequest{
		Name: "Bo", Email: "bo@example.edu", Password: "pw",
	})
	require.NoError(t, err)
	require.Nil(t, out.Token)
	require.Equal(t, "bo@example.edu", out.Email)
	require.Nil(t, client.SessionFromRegistration(out))

	tok := "abc"
	out.Token = &tok
	sess := client.SessionFromRegistration(out)
	require.NotNil(t, sess)
	require.Equal(t, "abc", sess.Token())
}

func TestSessionMe(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			ErrInvalidToken.WriteError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(MeResponse{User: User{ID: "u3"}})
	})

	me, err := client.NewSession("good").Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u3", me.User.ID)

	_, err = client.NewSession("bad").Me(context.Background())
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = client.NewSession("").Me(context.Background())
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPostSuccessEndpoints(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
	)
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/v1/auth/reset-password" {
			ErrUserNotFound.WriteError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	ctx := context.Background()
	require.NoError(t, client.ResendVerification(ctx, "a@example.edu"))
	require.NoError(t, client.ForgotPassword(ctx, "a@example.edu"))
	require.ErrorIs(t, client.ResetPassword(ctx, "a@example.edu", "new"), ErrUserNotFound)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"/v1/auth/resend-verification",
		"/v1/auth/forgot-password",
		"/v1/auth/reset-password",
	}, paths)
}

func TestParseErrorResponse_Fallback(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream down</html>"))
	})

	_, err := client.GetLiveness(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Contains(t, apiErr.Description, "502")
}

func TestGetReadiness(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/readyz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","checks":{"database":"ok","signer":"ok","google":"disabled"}}`))
	})

	health, err := client.GetReadiness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "disabled", health.Checks.Google)
}
