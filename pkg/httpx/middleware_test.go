package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/pkg/httpx"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	h := httpx.Chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}), httpx.TimeoutMiddleware(time.Second))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, deadline.IsZero())
	require.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, httpx.DecodeJSON(r, &body))
	require.Equal(t, "a@b.c", body.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.ErrorIs(t, httpx.DecodeJSON(r, &body), httpx.ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	require.Error(t, httpx.DecodeJSON(r, &body))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x"}{"email":"y"}`))
	require.Error(t, httpx.DecodeJSON(r, &body))
}

func newAccessKey(t *testing.T) *jwtx.HS256 {
	t.Helper()
	k, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), jwtx.HS256Options{Type: jwtx.TypeAccess})
	require.NoError(t, err)
	return k
}

func TestAuthnMiddleware(t *testing.T) {
	key := newAccessKey(t)
	tok, err := key.Sign(jwtx.NewAccessClaims("u1", "student", "s1", time.Minute, "", time.Now()))
	require.NoError(t, err)

	var got httpx.Principal
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = httpx.PrincipalFrom(r.Context())
	}), httpx.AuthnMiddleware(key))

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u1", got.UserID)
		require.Equal(t, "student", got.Role)
		require.Equal(t, "s1", got.SessionID)
	})

	t.Run("cookie", func(t *testing.T) {
		got = httpx.Principal{}
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: httpx.AccessTokenCookie, Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u1", got.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("bad token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme ignores cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		r.AddCookie(&http.Cookie{Name: httpx.AccessTokenCookie, Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
