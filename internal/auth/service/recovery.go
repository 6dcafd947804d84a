package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
)

const (
	RecoveryCodeCount  = 10
	RecoveryCodeLength = 8

	// No 0/O, 1/I/L: codes get read off paper.
	recoveryAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// RecoveryCodeManager issues and burns single-use fallback codes.
type RecoveryCodeManager struct {
	Store store.Store
	Now   func() time.Time
}

func (m *RecoveryCodeManager) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

// Generate replaces every code the user has with a fresh batch and returns
// the plaintext. It is the only time the plaintext exists; callers must not
// log or store it. repo is normally bound to the caller's transaction.
func (m *RecoveryCodeManager) Generate(ctx context.Context, repo store.RecoveryCodes, userID string) ([]string, error) {
	if err := repo.DeleteUserRecoveryCodes(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete old recovery codes: %w", err)
	}

	now := m.now()
	plain := make([]string, RecoveryCodeCount)
	rows := make([]domain.RecoveryCode, RecoveryCodeCount)
	for i := range RecoveryCodeCount {
		code, err := cryptox.RandomString(recoveryAlphabet, RecoveryCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate recovery code: %w", err)
		}
		hash, err := hashRecoveryCode(userID, code)
		if err != nil {
			return nil, err
		}
		plain[i] = code
		rows[i] = domain.RecoveryCode{
			ID:        idx.New().String(),
			UserID:    userID,
			CodeHash:  hash,
			CreatedAt: now,
		}
	}

	if err := repo.CreateRecoveryCodes(ctx, rows); err != nil {
		return nil, fmt.Errorf("store recovery codes: %w", err)
	}
	return plain, nil
}

// VerifyAndBurn marks code used if it is one of the user's unused codes.
// Unknown, malformed and already used codes all return false.
func (m *RecoveryCodeManager) VerifyAndBurn(ctx context.Context, userID, code string) (bool, error) {
	return m.burn(ctx, m.Store.RecoveryCodes(), userID, code)
}

func (m *RecoveryCodeManager) burn(ctx context.Context, repo store.RecoveryCodes, userID, code string) (bool, error) {
	normalized := NormalizeRecoveryCode(code)
	if len(normalized) != RecoveryCodeLength {
		return false, nil
	}
	hash, err := hashRecoveryCode(userID, normalized)
	if err != nil {
		return false, err
	}
	ok, err := repo.MarkRecoveryCodeUsed(ctx, userID, hash, m.now())
	if err != nil {
		return false, fmt.Errorf("burn recovery code: %w", err)
	}
	return ok, nil
}

// Remaining counts the user's unused codes.
func (m *RecoveryCodeManager) Remaining(ctx context.Context, userID string) (int, error) {
	n, err := m.Store.RecoveryCodes().CountUnusedRecoveryCodes(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count recovery codes: %w", err)
	}
	return n, nil
}

// NormalizeRecoveryCode accepts codes typed with spaces, dashes or in lower
// case.
func NormalizeRecoveryCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(code)))
}

// hashRecoveryCode is HMAC-SHA256 keyed with the pepper over
// "<user id>:<code>".
func hashRecoveryCode(userID, normalized string) (string, error) {
	pepper, err := cryptox.Pepper()
	if err != nil {
		return "", fmt.Errorf("load pepper: %w", err)
	}
	return cryptox.KeyedFingerprint(pepper, userID+":"+normalized), nil
}
