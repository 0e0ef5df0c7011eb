package httpx

import (
	"context"

	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// ClaimsFromContext returns the session claims injected by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (jwtx.SessionClaims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.SessionClaims)
	return c, ok
}

func contextWithAuth(ctx context.Context, c jwtx.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
