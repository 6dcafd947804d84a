package service

import (
	"sync"

	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
)

// PasswordHasher wraps the argon2id helpers in cryptox.
type PasswordHasher struct{}

func (PasswordHasher) Hash(plaintext string) (string, error) {
	return cryptox.HashPassword(plaintext)
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error.
func (PasswordHasher) Verify(plaintext, hash string) bool {
	return cryptox.VerifyPassword(plaintext, hash) == nil
}

var dummyHash = sync.OnceValues(func() (string, error) {
	return cryptox.HashPassword("careerhub-timing-equaliser")
})

// VerifyDummy burns the same work as Verify against a hash nobody owns. It
// is used when the account does not exist so both paths take as long.
func (h PasswordHasher) VerifyDummy(plaintext string) {
	hash, err := dummyHash()
	if err != nil {
		return
	}
	_ = h.Verify(plaintext, hash)
}
