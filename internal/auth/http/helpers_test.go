package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/httpx"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "careerhub-http-test"
	testPassword = "correct horse battery"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "careerhub-http-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Tests log in many times from 127.0.0.1. The rate limit test uses its
	// own tighter limiter.
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testServer struct {
	*httptest.Server
	store  *sqlite.Store
	auth   *service.AuthService
	client *authsdk.SDKClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	accessKey, err := jwtx.NewHS256([]byte(strings.Repeat("a", 32)), jwtx.HS256Options{Issuer: testIssuer, Type: jwtx.TypeAccess})
	require.NoError(t, err)
	refreshKey, err := jwtx.NewHS256([]byte(strings.Repeat("r", 32)), jwtx.HS256Options{Issuer: testIssuer, Type: jwtx.TypeRefresh})
	require.NoError(t, err)

	users := &service.UserService{Store: st}
	totpEngine := &service.TOTPEngine{Issuer: "Careerhub", Window: service.DefaultTOTPWindow}
	recovery := &service.RecoveryCodeManager{Store: st}
	tokens := &service.TokenService{
		Store:      st,
		AccessKey:  accessKey,
		RefreshKey: refreshKey,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	sessions := &service.SessionRegistry{Store: st, MaxSessions: service.DefaultMaxSessions}
	auth := &service.AuthService{
		Store:    st,
		Users:    users,
		TOTP:     totpEngine,
		Recovery: recovery,
		Tokens:   tokens,
		Sessions: sessions,
	}

	router := NewRouter(accessKey, "test", st, slogx.Discard(), CookieConfig{Secure: true}, 5*time.Second)
	router.AuthService = auth
	router.UserService = users
	router.MFAService = &service.MFAService{Store: st, TOTP: totpEngine, Recovery: recovery}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		store:  st,
		auth:   auth,
		client: authsdk.NewSDKClient(srv.URL),
	}
}

// device returns a client that presents as its own browser.
func (s *testServer) device(name string) *authsdk.SDKClient {
	c := authsdk.NewSDKClient(s.URL)
	c.Headers = map[string]string{
		"User-Agent":      "Mozilla/5.0 (" + name + ")",
		"Accept-Language": "en-AU",
	}
	return c
}

func (s *testServer) register(t *testing.T, email string) *authsdk.UserResponse {
	t.Helper()
	u, err := s.client.Register(context.Background(), authsdk.RegisterRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return u
}

func (s *testServer) login(t *testing.T, c *authsdk.SDKClient, email string) *authsdk.Session {
	t.Helper()
	sess, err := c.AuthenticateWithPassword(context.Background(), email, testPassword)
	require.NoError(t, err)
	return sess
}

// enableMFA enrolls the session's user and returns the secret and the
// recovery codes.
func enableMFA(t *testing.T, sess *authsdk.Session) (string, []string) {
	t.Helper()
	ctx := context.Background()

	enrollment, err := sess.EnrollMFA(ctx)
	require.NoError(t, err)

	codes, err := sess.VerifyMFA(ctx, enrollment.Secret, currentCode(t, enrollment.Secret))
	require.NoError(t, err)
	return enrollment.Secret, codes.RecoveryCodes
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// postJSON sends a raw request so tests can look at headers and cookies.
func postJSON(t *testing.T, url string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func requireAPIError(t *testing.T, err error, status int, code string) *authsdk.APIError {
	t.Helper()
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
