package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// Cookie names shared by the handlers that set them and the middleware
// that reads them.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// AccessToken extracts the raw access token from the Authorization header,
// falling back to the access token cookie.
func AccessToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, raw, ok := strings.Cut(authz, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(raw)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthnMiddleware verifies the access token and stores the Principal in the
// request context. Verification is stateless, no store lookup is made.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := AccessToken(r)
			if raw == "" {
				writeBearerError(w, "missing access token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Debug("access token rejected", "err", err)
				writeBearerError(w, "invalid or expired access token")
				return
			}

			ctx = WithPrincipal(ctx, Principal{
				UserID:    claims.Subject,
				Role:      claims.Role,
				SessionID: claims.SID,
				Claims:    claims,
			})
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
