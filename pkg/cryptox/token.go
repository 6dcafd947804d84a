package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// RandomString returns n characters drawn uniformly from alphabet using
// crypto/rand.
func RandomString(alphabet string, n int) (string, error) {
	if alphabet == "" || n <= 0 {
		return "", fmt.Errorf("random string: empty alphabet or length %d", n)
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// FingerprintToken returns the SHA-256 of token as base64url (43 chars).
// Stored in place of bearer secrets so a database leak does not leak tokens.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// KeyedFingerprint returns HMAC-SHA256(key, msg) as base64url. Used for
// low-entropy secrets such as recovery codes, where a bare hash could be
// brute forced offline.
func KeyedFingerprint(key, msg string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
