package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("0123456789abcdef0123456789abcdef")
	refreshSecret = []byte("fedcba9876543210fedcba9876543210")
)

func newKey(t *testing.T, secret []byte, typ jwtx.TokenType, now func() time.Time) *jwtx.HS256 {
	t.Helper()
	k, err := jwtx.NewHS256(secret, jwtx.HS256Options{Issuer: "careerhub", Type: typ, Now: now})
	require.NoError(t, err)
	return k
}

func TestNewHS256_RejectsWeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), jwtx.HS256Options{Type: jwtx.TypeAccess})
	require.ErrorIs(t, err, jwtx.ErrWeakKey)

	_, err = jwtx.NewHS256(accessSecret, jwtx.HS256Options{})
	require.Error(t, err)
}

func TestHS256_SignVerify(t *testing.T) {
	k := newKey(t, accessSecret, jwtx.TypeAccess, nil)
	require.Equal(t, "HS256", k.Alg())

	tok, err := k.Sign(jwtx.NewAccessClaims("u1", "admin", "s1", time.Minute, "careerhub", time.Now()))
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	c, err := k.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, "s1", c.SID)
}

func TestHS256_SignRefusesWrongType(t *testing.T) {
	k := newKey(t, accessSecret, jwtx.TypeAccess, nil)
	_, err := k.Sign(jwtx.NewRefreshClaims("u1", "s1", time.Minute, "careerhub", time.Now()))
	require.ErrorIs(t, err, jwtx.ErrTokenType)
}

func TestHS256_Verify(t *testing.T) {
	now := time.Now()
	access := newKey(t, accessSecret, jwtx.TypeAccess, nil)
	refresh := newKey(t, refreshSecret, jwtx.TypeRefresh, nil)

	good, err := access.Sign(jwtx.NewAccessClaims("u1", "student", "s1", time.Minute, "careerhub", now))
	require.NoError(t, err)
	expired, err := access.Sign(jwtx.NewAccessClaims("u1", "student", "s1", time.Minute, "careerhub", now.Add(-time.Hour)))
	require.NoError(t, err)
	refreshTok, err := refresh.Sign(jwtx.NewRefreshClaims("u1", "s1", time.Hour, "careerhub", now))
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwtx.NewAccessClaims("u1", "student", "s1", time.Minute, "elsewhere", now)).SignedString(accessSecret)
	require.NoError(t, err)

	// Same secret as access but typ "refresh": must not pass as an access token.
	wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwtx.NewRefreshClaims("u1", "s1", time.Minute, "careerhub", now)).SignedString(accessSecret)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512,
		jwtx.NewAccessClaims("u1", "student", "s1", time.Minute, "careerhub", now)).SignedString(accessSecret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", good, nil},
		{"expired", expired, jwtx.ErrExpired},
		{"signed with refresh key", refreshTok, jwtx.ErrInvalidSig},
		{"wrong issuer", otherIssuer, jwtx.ErrIssuer},
		{"wrong type", wrongType, jwtx.ErrTokenType},
		{"other algorithm", hs512, jwtx.ErrInvalidSig},
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"tampered", good[:len(good)-2] + "xx", jwtx.ErrInvalidSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := access.Verify(tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHS256_VerifyUsesClock(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	clock := issued
	k := newKey(t, refreshSecret, jwtx.TypeRefresh, func() time.Time { return clock })

	tok, err := k.Sign(jwtx.NewRefreshClaims("u1", "s1", time.Hour, "careerhub", issued))
	require.NoError(t, err)

	_, err = k.Verify(tok)
	require.NoError(t, err)

	clock = issued.Add(2 * time.Hour)
	_, err = k.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
