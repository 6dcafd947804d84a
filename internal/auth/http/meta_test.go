package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestHeaderValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "careerhub/1.0", "careerhub/1.0"},
		{"invalid bytes", "agent\xff\xfe", "agent�"},
		{"ascii over limit", strings.Repeat("a", maxHeaderLen+10), strings.Repeat("a", maxHeaderLen)},
		{"rune across the limit", strings.Repeat("a", maxHeaderLen-1) + "é", strings.Repeat("a", maxHeaderLen-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := headerValue(tt.in)
			require.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
			require.LessOrEqual(t, len(got), maxHeaderLen)
		})
	}
}

func TestRequestMeta_SanitisesHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "192.0.2.10:4000"
	r.Header.Set("User-Agent", strings.Repeat("日", 200)+"\xc3")
	r.Header.Set("Accept-Language", "en-AU\x80")

	meta := requestMeta(r)
	require.Equal(t, "192.0.2.10", meta.IPAddress)
	require.True(t, utf8.ValidString(meta.UserAgent))
	require.LessOrEqual(t, len(meta.UserAgent), maxHeaderLen)
	require.Equal(t, "en-AU�", meta.AcceptLanguage)
}
