package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "careerhub-test"
	testPassword = "correct horse battery"
)

// testEpoch sits exactly on a 30 second TOTP step boundary.
var testEpoch = time.Unix(1_700_000_010, 0).UTC()

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "careerhub-service-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) Observe(_ context.Context, e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) Named(name string) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Event
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type harnessConfig struct {
	MaxSessions   int
	RotateRefresh bool
	ReuseDevice   bool

	// File uses an on-disk database, needed when goroutines share the store.
	File bool
}

type harness struct {
	store    *sqlite.Store
	clock    *fakeClock
	events   *recordingObserver
	users    *UserService
	totp     *TOTPEngine
	recovery *RecoveryCodeManager
	tokens   *TokenService
	sessions *SessionRegistry
	mfa      *MFAService
	auth     *AuthService
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	dsn := ":memory:"
	if cfg.File {
		dsn = filepath.Join(t.TempDir(), "auth.db")
	}
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clock := &fakeClock{t: testEpoch}
	events := &recordingObserver{}

	accessKey, err := jwtx.NewHS256([]byte(strings.Repeat("a", 32)), jwtx.HS256Options{
		Issuer: testIssuer,
		Type:   jwtx.TypeAccess,
		Now:    clock.Now,
	})
	require.NoError(t, err)
	refreshKey, err := jwtx.NewHS256([]byte(strings.Repeat("r", 32)), jwtx.HS256Options{
		Issuer: testIssuer,
		Type:   jwtx.TypeRefresh,
		Now:    clock.Now,
	})
	require.NoError(t, err)

	h := &harness{store: st, clock: clock, events: events}
	h.users = &UserService{Store: st, Observer: events, Now: clock.Now}
	h.totp = &TOTPEngine{Issuer: "Careerhub", Window: DefaultTOTPWindow, Now: clock.Now}
	h.recovery = &RecoveryCodeManager{Store: st, Now: clock.Now}
	h.tokens = &TokenService{
		Store:         st,
		AccessKey:     accessKey,
		RefreshKey:    refreshKey,
		Issuer:        testIssuer,
		AccessTTL:     jwtx.DefaultAccessTokenTTL,
		RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
		RotateRefresh: cfg.RotateRefresh,
		Observer:      events,
		Now:           clock.Now,
	}
	h.sessions = &SessionRegistry{
		Store:       st,
		MaxSessions: cfg.MaxSessions,
		ReuseDevice: cfg.ReuseDevice,
		Observer:    events,
		Now:         clock.Now,
	}
	h.mfa = &MFAService{Store: st, TOTP: h.totp, Recovery: h.recovery, Observer: events, Now: clock.Now}
	h.auth = &AuthService{
		Store:    st,
		Users:    h.users,
		TOTP:     h.totp,
		Recovery: h.recovery,
		Tokens:   h.tokens,
		Sessions: h.sessions,
		Observer: events,
	}
	return h
}

func (h *harness) register(t *testing.T, email string) domain.User {
	t.Helper()
	u, err := h.users.Register(context.Background(), email, testPassword, domain.RoleStudent)
	require.NoError(t, err)
	return u
}

// enableMFA runs enrolment end to end and returns the secret and the
// recovery codes.
func (h *harness) enableMFA(t *testing.T, userID string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	enrollment, err := h.mfa.Enroll(ctx, userID)
	require.NoError(t, err)

	codes, err := h.mfa.Enable(ctx, userID, enrollment.Secret, totpCode(t, enrollment.Secret, h.clock.Now()))
	require.NoError(t, err)
	require.Len(t, codes, RecoveryCodeCount)
	return enrollment.Secret, codes
}

func (h *harness) login(t *testing.T, email string, meta domain.RequestMeta) LoginResult {
	t.Helper()
	res, err := h.auth.Login(context.Background(), LoginRequest{Email: email, Password: testPassword, Meta: meta})
	require.NoError(t, err)
	return res
}

func (h *harness) sessionCount(t *testing.T, userID string) int {
	t.Helper()
	n, err := h.store.Sessions().CountUserSessions(context.Background(), userID)
	require.NoError(t, err)
	return n
}

func (h *harness) refreshStored(t *testing.T, raw string) bool {
	t.Helper()
	_, found, err := h.tokens.lookup(context.Background(), raw)
	require.NoError(t, err)
	return found
}

func device(name string) domain.RequestMeta {
	return domain.RequestMeta{
		IPAddress:      "198.51.100.7",
		UserAgent:      "Mozilla/5.0 (" + name + ")",
		AcceptLanguage: "en-AU,en;q=0.9",
		AcceptEncoding: "gzip, br",
	}
}

func totpCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}
