package http

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/pkg/httpx"
)

// maxHeaderLen bounds, in bytes, what is copied into session records.
const maxHeaderLen = 512

// requestMeta is what session binding knows about the client.
func requestMeta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{
		IPAddress:      httpx.ClientIP(r),
		UserAgent:      headerValue(r.UserAgent()),
		AcceptLanguage: headerValue(r.Header.Get("Accept-Language")),
		AcceptEncoding: headerValue(r.Header.Get("Accept-Encoding")),
	}
}

// headerValue makes a raw header safe for a TEXT column: invalid UTF-8 is
// replaced and the result is cut on a rune boundary.
func headerValue(s string) string {
	s = strings.ToValidUTF8(s, "�")
	if len(s) <= maxHeaderLen {
		return s
	}
	cut := maxHeaderLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
