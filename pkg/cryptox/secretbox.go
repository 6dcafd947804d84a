package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// MasterKeyEnv is consulted when no master key file has been configured.
const MasterKeyEnv = "CAREERHUB_MASTER_KEY"

var (
	masterKeyMu   sync.Mutex
	masterKey     []byte
	masterKeyPath string
)

// ErrCiphertext is returned when sealed data is truncated or fails
// authentication.
var ErrCiphertext = errors.New("invalid ciphertext")

// SetMasterKeyPath configures the file the AES master key material is read
// from. Must be called before the first Seal or Open.
func SetMasterKeyPath(path string) {
	masterKeyMu.Lock()
	defer masterKeyMu.Unlock()
	masterKeyPath = path
	masterKey = nil
}

// getMasterKey derives a 32-byte AES-256 key from the configured file, the
// MasterKeyEnv variable, or an ephemeral random value, in that order.
// Ephemeral keys do not survive restarts.
func getMasterKey() ([]byte, error) {
	masterKeyMu.Lock()
	defer masterKeyMu.Unlock()

	if masterKey != nil {
		return masterKey, nil
	}

	var material []byte
	switch {
	case masterKeyPath != "":
		data, err := os.ReadFile(masterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read master key file: %w", err)
		}
		material = data
	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("generate ephemeral master key: %w", err)
		}
	}

	sum := sha256.Sum256(material)
	masterKey = sum[:]
	return masterKey, nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := getMasterKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM under the master key. The result
// is nonce || ciphertext || tag.
func Seal(plaintext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	n := gcm.NonceSize()
	if len(sealed) < n+gcm.Overhead() {
		return nil, ErrCiphertext
	}
	plaintext, err := gcm.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return plaintext, nil
}

// SealString is Seal for text columns; the result is base64url.
func SealString(plaintext string) (string, error) {
	sealed, err := Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString.
func OpenString(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	plaintext, err := Open(raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// ResetMasterKeyForTesting drops the cached key so the next call reloads it.
func ResetMasterKeyForTesting() {
	SetMasterKeyPath("")
}
