package httpx

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws to h so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Timeout bounds the request context. Store and identity provider calls
// made with that context give up once it expires.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a panic in a handler into a 500 response.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slogx.FromContext(r.Context()).Error("panic serving request",
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					WriteError(w, http.StatusInternalServerError, "server_error", "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
