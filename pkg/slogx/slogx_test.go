package slogx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "auth", Version: "test", Env: "test", Format: "json", Output: &buf})

	logger.Info("reset issued", "email", "ada@example.edu", "code", "123456", "password", "hunter2")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "ada@example.edu", line["email"])
	require.Equal(t, "[REDACTED]", line["code"])
	require.Equal(t, "[REDACTED]", line["password"])
	require.Equal(t, "auth", line["service"])
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "text", Output: &buf})

	logger.Info("hidden")
	require.Zero(t, buf.Len())

	logger.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestFromContext_DefaultsWhenMissing(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))
}

func TestHTTPMiddleware_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	var sawLogger bool
	h := HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = FromContext(r.Context()) != base
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
		require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		require.True(t, sawLogger)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
		require.Contains(t, buf.String(), `"req_id":"req-123"`)
	})
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(Config{Format: "json", Output: &buf}))

	ctx = With(ctx, "user_id", "01HZX")
	FromContext(ctx).Info("me")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "01HZX", line["user_id"])
}
