package service

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSecretSize = 20 // 160 bits
	totpQRSize     = 200

	// DefaultTOTPWindow accepts the previous and next 30 second step.
	DefaultTOTPWindow = 1
)

// TOTPEngine generates and checks RFC 6238 codes (SHA1, 6 digits, 30s).
type TOTPEngine struct {
	Issuer string

	// Window is how many steps either side of now are accepted. Zero only
	// accepts the current step.
	Window uint

	Now func() time.Time
}

func (e *TOTPEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// GenerateSecret creates a new secret for account. Nothing is stored; the
// caller persists the secret once the user has proven they can use it.
func (e *TOTPEngine) GenerateSecret(account string) (domain.MFAEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}

	return domain.MFAEnrollment{
		Secret:  key.Secret(),
		URI:     key.URL(),
		QRCode:  qr,
		Issuer:  e.Issuer,
		Account: account,
	}, nil
}

// Verify checks code against secret at the current time.
func (e *TOTPEngine) Verify(secret, code string) bool {
	return e.VerifyAt(secret, code, e.now())
}

// VerifyAt checks code against secret at t. Codes are stateless per step,
// so the same code verifies again until its step leaves the window.
func (e *TOTPEngine) VerifyAt(secret, code string, t time.Time) bool {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if len(code) != otp.DigitsSix.Length() || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      e.Window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// secretEncoding is how pquerna/otp encodes generated secrets.
var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// CheckSecret reports whether secret is base32 and carries at least as much
// key material as GenerateSecret produces.
func (e *TOTPEngine) CheckSecret(secret string) bool {
	raw, err := secretEncoding.DecodeString(strings.TrimRight(secret, "="))
	return err == nil && len(raw) >= totpSecretSize
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(totpQRSize, totpQRSize)
	if err != nil {
		return "", fmt.Errorf("render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
