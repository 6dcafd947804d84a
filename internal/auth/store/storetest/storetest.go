// Package storetest is a conformance suite run against every store driver.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated, empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("mfa", func(t *testing.T) { testMFA(t, newStore(t)) })
	t.Run("sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
	t.Run("refresh_tokens", func(t *testing.T) { testRefreshTokens(t, newStore(t)) })
	t.Run("recovery_codes", func(t *testing.T) { testRecoveryCodes(t, newStore(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, newStore(t)) })
	t.Run("tx_rollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("concurrent_burn", func(t *testing.T) { testConcurrentBurn(t, newStore(t)) })
	t.Run("concurrent_rotation", func(t *testing.T) { testConcurrentRotation(t, newStore(t)) })
}

// now is truncated to the microsecond since postgres does not keep more.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// CreateUser inserts a user with a placeholder hash.
func CreateUser(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()
	at := now()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleStudent,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

// CreateSession inserts a session created at the given time.
func CreateSession(t *testing.T, st store.Store, userID, fingerprint string, at time.Time) domain.Session {
	t.Helper()
	s := domain.Session{
		ID:           idx.NewAt(at).String(),
		UserID:       userID,
		Fingerprint:  fingerprint,
		IPAddress:    "203.0.113.1",
		UserAgent:    "test-agent",
		CreatedAt:    at,
		LastActiveAt: at,
	}
	require.NoError(t, st.Sessions().CreateSession(context.Background(), s))
	return s
}

func createToken(t *testing.T, st store.Store, u domain.User, s domain.Session, hash string, expires time.Time) {
	t.Helper()
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(context.Background(), domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		SessionID: s.ID,
		TokenHash: hash,
		ExpiresAt: expires,
		CreatedAt: now(),
	}))
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "ada@uni.example")

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, domain.RoleStudent, got.Role)
	require.False(t, got.MFAEnabled())
	require.True(t, u.CreatedAt.Equal(got.CreatedAt))

	got, err = st.Users().GetUserByEmail(ctx, "ada@uni.example")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@uni.example")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	err = st.WithTx(ctx, func(tx store.Tx) error { return tx.Users().LockUser(ctx, u.ID) })
	require.NoError(t, err)

	err = st.WithTx(ctx, func(tx store.Tx) error { return tx.Users().LockUser(ctx, "missing") })
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMFA(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "grace@uni.example")
	at := now()

	require.NoError(t, st.Users().EnableMFA(ctx, u.ID, "sealed-secret", at))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.MFAEnabled())
	require.Equal(t, "sealed-secret", *got.MFASecret)
	require.True(t, at.Equal(*got.MFAEnrolledAt))

	require.NoError(t, st.Users().DisableMFA(ctx, u.ID, at))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled())
	require.Nil(t, got.MFASecret)

	require.ErrorIs(t, st.Users().EnableMFA(ctx, "missing", "x", at), store.ErrNotFound)
}

func testSessions(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "linus@uni.example")
	base := now().Add(-time.Hour)

	s1 := CreateSession(t, st, u.ID, "fp-1", base)
	s2 := CreateSession(t, st, u.ID, "fp-2", base.Add(time.Minute))
	s3 := CreateSession(t, st, u.ID, "fp-3", base.Add(2*time.Minute))

	n, err := st.Sessions().CountUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	oldest, err := st.Sessions().OldestUserSessions(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Equal(t, []string{s1.ID, s2.ID}, sessionIDs(oldest))

	// Touching s1 moves it to the front of the activity list but not of
	// the creation order.
	require.NoError(t, st.Sessions().TouchSession(ctx, s1.ID, base.Add(time.Hour)))
	list, err := st.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{s1.ID, s3.ID, s2.ID}, sessionIDs(list))

	oldest, err = st.Sessions().OldestUserSessions(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Equal(t, s1.ID, oldest[0].ID)

	byFP, err := st.Sessions().GetSessionByFingerprint(ctx, u.ID, "fp-2")
	require.NoError(t, err)
	require.Equal(t, s2.ID, byFP.ID)
	_, err = st.Sessions().GetSessionByFingerprint(ctx, u.ID, "fp-x")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Sessions().RebindSession(ctx, s2.ID, "198.51.100.9", "new-agent", base.Add(2*time.Hour)))
	got, err := st.Sessions().GetSession(ctx, s2.ID)
	require.NoError(t, err)
	require.Equal(t, "198.51.100.9", got.IPAddress)
	require.Equal(t, "new-agent", got.UserAgent)

	require.ErrorIs(t, st.Sessions().TouchSession(ctx, "missing", base), store.ErrNotFound)

	require.NoError(t, st.Sessions().DeleteSession(ctx, s3.ID))
	require.ErrorIs(t, st.Sessions().DeleteSession(ctx, s3.ID), store.ErrNotFound)

	// s1 active at base+1h, s2 at base+2h.
	swept, err := st.Sessions().DeleteInactiveSessions(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)
	_, err = st.Sessions().GetSession(ctx, s1.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	removed, err := st.Sessions().DeleteUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func testRefreshTokens(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "ken@uni.example")
	s := CreateSession(t, st, u.ID, "fp", now())
	other := CreateSession(t, st, u.ID, "fp-other", now())

	createToken(t, st, u, s, "hash-live", now().Add(time.Hour))
	createToken(t, st, u, s, "hash-dead", now().Add(-time.Minute))
	createToken(t, st, u, other, "hash-other", now().Add(time.Hour))

	got, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-live")
	require.NoError(t, err)
	require.Equal(t, s.ID, got.SessionID)
	require.False(t, got.Expired(now()))

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, SessionID: s.ID, TokenHash: "hash-live",
		ExpiresAt: now(), CreatedAt: now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	n, err := st.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	deleted, err := st.RefreshTokens().DeleteRefreshToken(ctx, "hash-live")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = st.RefreshTokens().DeleteRefreshToken(ctx, "hash-live")
	require.NoError(t, err)
	require.False(t, deleted)

	require.NoError(t, st.RefreshTokens().DeleteSessionRefreshTokens(ctx, other.ID))
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-other")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testRecoveryCodes(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "barbara@uni.example")

	codes := make([]domain.RecoveryCode, 3)
	for i := range codes {
		codes[i] = domain.RecoveryCode{
			ID: idx.New().String(), UserID: u.ID, CodeHash: fmt.Sprintf("h%d", i), CreatedAt: now(),
		}
	}
	require.NoError(t, st.RecoveryCodes().CreateRecoveryCodes(ctx, codes))

	n, err := st.RecoveryCodes().CountUnusedRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	ok, err := st.RecoveryCodes().MarkRecoveryCodeUsed(ctx, u.ID, "h1", now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.RecoveryCodes().MarkRecoveryCodeUsed(ctx, u.ID, "h1", now())
	require.NoError(t, err)
	require.False(t, ok, "a burned code must not burn twice")

	ok, err = st.RecoveryCodes().MarkRecoveryCodeUsed(ctx, "someone-else", "h0", now())
	require.NoError(t, err)
	require.False(t, ok)

	n, err = st.RecoveryCodes().CountUnusedRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, st.RecoveryCodes().DeleteUserRecoveryCodes(ctx, u.ID))
	n, err = st.RecoveryCodes().CountUnusedRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func testCascade(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "edsger@uni.example")
	s := CreateSession(t, st, u.ID, "fp", now())
	createToken(t, st, u, s, "cascade-hash", now().Add(time.Hour))

	require.NoError(t, st.Sessions().DeleteSession(ctx, s.ID))
	_, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "cascade-hash")
	require.ErrorIs(t, err, store.ErrNotFound, "deleting a session removes its refresh tokens")
}

func testTxRollback(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "tony@uni.example")
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		CreateSession(t, tx, u.ID, "fp", now())
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := st.Sessions().CountUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are refused")
}

func testConcurrentBurn(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "margaret@uni.example")
	require.NoError(t, st.RecoveryCodes().CreateRecoveryCodes(ctx, []domain.RecoveryCode{{
		ID: idx.New().String(), UserID: u.ID, CodeHash: "only", CreatedAt: now(),
	}}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.WithTx(ctx, func(tx store.Tx) error {
				ok, err := tx.RecoveryCodes().MarkRecoveryCodeUsed(ctx, u.ID, "only", now())
				if ok {
					wins.Add(1)
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func testConcurrentRotation(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := CreateUser(t, st, "frances@uni.example")
	s := CreateSession(t, st, u.ID, "fp", now())
	createToken(t, st, u, s, "rotate-me", now().Add(time.Hour))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.WithTx(ctx, func(tx store.Tx) error {
				ok, err := tx.RefreshTokens().DeleteRefreshToken(ctx, "rotate-me")
				if ok {
					wins.Add(1)
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func sessionIDs(ss []domain.Session) []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}
