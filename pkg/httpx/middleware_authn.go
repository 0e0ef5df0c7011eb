package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer session token. It checks the
// signature and expiry only; the password version claim is passed through
// untouched.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					writeBearerError(w, "token expired")
					return
				}
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(time.Now()); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
