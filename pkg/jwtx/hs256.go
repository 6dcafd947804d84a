package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACKeySize is the shortest secret accepted for HS256 (256 bits).
const MinHMACKeySize = 32

// HS256Options configures an HS256 key.
type HS256Options struct {
	// Issuer the token must carry. Empty means "don't care".
	Issuer string

	// Type the verified token must carry.
	Type TokenType

	// Leeway allows small clock skew on exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret.
type HS256 struct {
	secret []byte
	opts   HS256Options
}

// NewHS256 returns an HS256 key. The secret must be at least MinHMACKeySize
// bytes.
func NewHS256(secret []byte, opts HS256Options) (*HS256, error) {
	if len(secret) < MinHMACKeySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakKey, MinHMACKeySize, len(secret))
	}
	if opts.Type == "" {
		return nil, errors.New("jwtx: token type required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HS256{secret: append([]byte(nil), secret...), opts: opts}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign produces a compact HS256 JWT. Claims of the wrong type are refused.
func (h *HS256) Sign(claims Claims) (string, error) {
	if err := claims.ValidateType(h.opts.Type); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify checks the signature first and then the claims, so ErrExpired is
// only ever returned for a token this key actually signed.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.opts.Now),
		jwt.WithLeeway(h.opts.Leeway),
	}
	if h.opts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.opts.Issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateType(h.opts.Type); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
