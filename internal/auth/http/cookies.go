package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/careerhub/pkg/httpx"
)

// CookieConfig controls the token cookies. Secure should only be off for
// local development over plain HTTP.
type CookieConfig struct {
	Secure bool
	Domain string
}

func (c CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) setAccess(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, c.cookie(httpx.AccessTokenCookie, token, ttl))
}

func (c CookieConfig) setRefresh(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, c.cookie(httpx.RefreshTokenCookie, token, ttl))
}

// clear expires both token cookies.
func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{httpx.AccessTokenCookie, httpx.RefreshTokenCookie} {
		ck := c.cookie(name, "", 0)
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

// refreshToken prefers the body over the cookie.
func refreshToken(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if ck, err := r.Cookie(httpx.RefreshTokenCookie); err == nil {
		return ck.Value
	}
	return ""
}
