package httpx

import (
	"context"

	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Principal is the authenticated caller, taken from a verified access token.
type Principal struct {
	UserID    string
	Role      string
	SessionID string
	Claims    jwtx.Claims
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFrom returns the caller set by AuthnMiddleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
