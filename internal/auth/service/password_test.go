package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	var h PasswordHasher

	t.Run("round trip", func(t *testing.T) {
		hash, err := h.Hash(testPassword)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"))
		require.True(t, h.Verify(testPassword, hash))
		require.False(t, h.Verify("wrong password", hash))
	})

	t.Run("salted", func(t *testing.T) {
		a, err := h.Hash(testPassword)
		require.NoError(t, err)
		b, err := h.Hash(testPassword)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("long passwords are not truncated", func(t *testing.T) {
		long := strings.Repeat("x", 100)
		hash, err := h.Hash(long)
		require.NoError(t, err)
		require.True(t, h.Verify(long, hash))
		require.False(t, h.Verify(long[:72], hash))
	})

	t.Run("malformed hash is a mismatch", func(t *testing.T) {
		require.False(t, h.Verify(testPassword, ""))
		require.False(t, h.Verify(testPassword, "$2a$10$notargon"))
		require.False(t, h.Verify(testPassword, "$argon2id$v=19$m=x$salt$key"))
	})

	t.Run("dummy verify", func(t *testing.T) {
		require.NotPanics(t, func() { h.VerifyDummy(testPassword) })
	})
}
