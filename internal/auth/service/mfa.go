package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
)

// MFAService is self-service management of the TOTP second factor.
//
// Enrolment is NOT_ENROLLED → SECRET_GENERATED → ENABLED. The generated
// secret lives only on the client until Enable proves the user can produce
// codes from it; Enable stores the sealed secret and the first batch of
// recovery codes in one transaction.
type MFAService struct {
	Store     store.Store
	TOTP      *TOTPEngine
	Recovery  *RecoveryCodeManager
	Passwords PasswordHasher
	Observer  Observer
	Now       func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Enroll generates a secret and enrolment URI for the user. Nothing is
// stored.
func (s *MFAService) Enroll(ctx context.Context, userID string) (domain.MFAEnrollment, error) {
	user, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if user.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	enrollment, err := s.TOTP.GenerateSecret(user.Email)
	if err != nil {
		return domain.MFAEnrollment{}, classify(err)
	}
	return enrollment, nil
}

// Enable turns MFA on once code proves the user holds secret, and returns
// the first batch of recovery codes.
func (s *MFAService) Enable(ctx context.Context, userID, secret, code string) ([]string, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" || code == "" {
		return nil, invalid("secret and code are required")
	}
	if !s.TOTP.CheckSecret(secret) {
		return nil, invalid("secret must be the one returned by enroll")
	}
	if !s.TOTP.Verify(secret, code) {
		return nil, ErrMFAInvalid
	}

	sealed, err := cryptox.SealString(secret)
	if err != nil {
		return nil, classify(fmt.Errorf("seal MFA secret: %w", err))
	}

	var codes []string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().LockUser(ctx, userID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		user, err := s.user(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.MFAEnabled() {
			return ErrMFAAlreadyEnabled
		}

		if err := tx.Users().EnableMFA(ctx, userID, sealed, s.now()); err != nil {
			return fmt.Errorf("enable MFA: %w", err)
		}
		codes, err = s.Recovery.Generate(ctx, tx.RecoveryCodes(), userID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	observe(ctx, s.Observer, Event{Name: EventMFAEnabled, UserID: userID})
	return codes, nil
}

// Disable turns MFA off. Both the password and a current TOTP code are
// required; all recovery codes are deleted.
func (s *MFAService) Disable(ctx context.Context, userID, password, code string) error {
	user, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled() {
		return ErrMFANotEnabled
	}
	if !s.Passwords.Verify(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := s.verifyCode(user, code); err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RecoveryCodes().DeleteUserRecoveryCodes(ctx, userID); err != nil {
			return fmt.Errorf("delete recovery codes: %w", err)
		}
		if err := tx.Users().DisableMFA(ctx, userID, s.now()); err != nil {
			return fmt.Errorf("disable MFA: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	observe(ctx, s.Observer, Event{Name: EventMFADisabled, UserID: userID})
	return nil
}

// RegenerateRecoveryCodes replaces the user's recovery codes after checking
// a current TOTP code. Every previous code stops working, used or not.
func (s *MFAService) RegenerateRecoveryCodes(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return nil, err
	}
	if !user.MFAEnabled() {
		return nil, ErrMFANotEnabled
	}
	if err := s.verifyCode(user, code); err != nil {
		return nil, err
	}

	var codes []string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		codes, err = s.Recovery.Generate(ctx, tx.RecoveryCodes(), userID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	observe(ctx, s.Observer, Event{
		Name:   EventRecoveryCodesRenewed,
		UserID: userID,
		Attrs:  []slog.Attr{slog.Int("count", len(codes))},
	})
	return codes, nil
}

// Status reports whether MFA is on and how many recovery codes are left.
func (s *MFAService) Status(ctx context.Context, userID string) (domain.MFAStatus, error) {
	user, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return domain.MFAStatus{}, err
	}
	if !user.MFAEnabled() {
		return domain.MFAStatus{}, nil
	}

	remaining, err := s.Recovery.Remaining(ctx, userID)
	if err != nil {
		return domain.MFAStatus{}, classify(err)
	}
	return domain.MFAStatus{
		Enabled:                true,
		EnrolledAt:             user.MFAEnrolledAt,
		RecoveryCodesRemaining: remaining,
	}, nil
}

func (s *MFAService) verifyCode(user domain.User, code string) error {
	secret, err := cryptox.OpenString(*user.MFASecret)
	if err != nil {
		return fail(KindStoreUnavailable, fmt.Errorf("open MFA secret: %w", err))
	}
	if !s.TOTP.Verify(secret, code) {
		return ErrMFAInvalid
	}
	return nil
}

func (s *MFAService) user(ctx context.Context, st store.Store, userID string) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, invalid("user not found")
	}
	if err != nil {
		return domain.User{}, classify(fmt.Errorf("get user: %w", err))
	}
	return u, nil
}
