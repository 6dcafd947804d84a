package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// AuthService sequences login, the optional second factor, token issuance
// and session binding, and the refresh/logout flows that follow.
//
// Login moves through
//
//	UNAUTHENTICATED → CREDENTIALS_VERIFIED → (MFA_REQUIRED → MFA_VERIFIED)
//	→ AUTHENTICATED → SESSION_BOUND
//
// and tokens are only returned once the session is bound. There is no path
// past MFA_REQUIRED without a valid TOTP or recovery code.
type AuthService struct {
	Store     store.Store
	Users     *UserService
	Passwords PasswordHasher
	TOTP      *TOTPEngine
	Recovery  *RecoveryCodeManager
	Tokens    *TokenService
	Sessions  *SessionRegistry
	Observer  Observer
}

type LoginRequest struct {
	Email        string
	Password     string
	TOTPCode     string
	RecoveryCode string
	Meta         domain.RequestMeta
}

type LoginResult struct {
	User      domain.User
	Session   domain.Session
	Tokens    domain.TokenPair
	MFAMethod domain.MFAMethod
}

type LogoutOptions struct {
	// EndSession also deletes the session the refresh token belongs to.
	EndSession bool
}

// Login authenticates req and returns a fresh token pair bound to a
// session for the requesting device.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.verifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return s.loginFailed(ctx, "", err)
	}

	method := domain.MFAMethodNone
	if user.MFAEnabled() {
		switch {
		case req.TOTPCode != "":
			secret, err := cryptox.OpenString(*user.MFASecret)
			if err != nil {
				return s.loginFailed(ctx, user.ID, fail(KindStoreUnavailable, fmt.Errorf("open MFA secret: %w", err)))
			}
			if !s.TOTP.Verify(secret, req.TOTPCode) {
				return s.loginFailed(ctx, user.ID, ErrMFAInvalid)
			}
			method = domain.MFAMethodTOTP
		case req.RecoveryCode != "":
			// Burned below, in the same transaction as the session.
			method = domain.MFAMethodRecoveryCode
		default:
			return s.loginFailed(ctx, user.ID, ErrMFARequired)
		}
	}

	var (
		binding Binding
		pair    domain.TokenPair
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if method == domain.MFAMethodRecoveryCode {
			ok, err := s.Recovery.burn(ctx, tx.RecoveryCodes(), user.ID, req.RecoveryCode)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRecoveryCodeInvalid
			}
		}

		var err error
		if binding, err = s.Sessions.Create(ctx, tx, user.ID, req.Meta); err != nil {
			return err
		}
		pair, err = s.Tokens.issuePair(ctx, tx.RefreshTokens(), user, binding.Session.ID)
		return err
	})
	if err != nil {
		return s.loginFailed(ctx, user.ID, classify(err))
	}

	s.Sessions.report(ctx, binding)
	if method == domain.MFAMethodRecoveryCode {
		observe(ctx, s.Observer, Event{Name: EventRecoveryCodeUsed, UserID: user.ID, SessionID: binding.Session.ID})
	}
	observe(ctx, s.Observer, Event{
		Name:      EventLoginSucceeded,
		UserID:    user.ID,
		SessionID: binding.Session.ID,
		Attrs:     []slog.Attr{slog.String("mfa_method", string(method))},
	})

	return LoginResult{
		User:      user,
		Session:   binding.Session,
		Tokens:    pair,
		MFAMethod: method,
	}, nil
}

// verifyCredentials returns the user for a matching email and password.
// An unknown email and a wrong password are the same error and cost the
// same time.
func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		s.Passwords.VerifyDummy(password)
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.Passwords.VerifyDummy(password)
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, classify(fmt.Errorf("get user by email: %w", err))
	}

	if !s.Passwords.Verify(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID string, err error) (LoginResult, error) {
	if KindOf(err) == KindStoreUnavailable {
		slogx.FromContext(ctx).Error("login failed", "error", err)
	}
	observe(ctx, s.Observer, Event{
		Name:   EventLoginFailed,
		UserID: userID,
		Attrs:  []slog.Attr{slog.String("reason", KindOf(err).Code())},
	})
	return LoginResult{}, err
}

// Refresh mints a new access token from a refresh token and marks the
// session active.
func (s *AuthService) Refresh(ctx context.Context, raw string) (RefreshResult, error) {
	res, err := s.Tokens.Refresh(ctx, raw)
	if err != nil {
		return RefreshResult{}, err
	}
	if err := s.Sessions.Touch(ctx, res.SessionID); err != nil {
		slogx.FromContext(ctx).Warn("failed to touch session", "session_id", res.SessionID, "error", err)
	}
	return res, nil
}

// Logout revokes the refresh token. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, raw string, opts LogoutOptions) error {
	if raw == "" {
		return nil
	}

	var row domain.RefreshToken
	if opts.EndSession {
		r, found, err := s.Tokens.lookup(ctx, raw)
		if err != nil {
			return err
		}
		if found {
			row = r
			err := s.Sessions.Revoke(ctx, row.UserID, row.SessionID)
			if err != nil && !errors.Is(err, ErrSessionNotFound) {
				return err
			}
		}
	}

	if err := s.Tokens.Revoke(ctx, raw); err != nil {
		return err
	}
	observe(ctx, s.Observer, Event{
		Name:      EventLogout,
		UserID:    row.UserID,
		SessionID: row.SessionID,
		Attrs:     []slog.Attr{slog.Bool("end_session", opts.EndSession)},
	})
	return nil
}

// Register creates an account; see UserService.Register.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (domain.User, error) {
	return s.Users.Register(ctx, email, password, role)
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.Sessions.List(ctx, userID)
}

func (s *AuthService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	return s.Sessions.Revoke(ctx, userID, sessionID)
}

// RevokeAllSessions signs the user out of every device.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) (int64, error) {
	return s.Sessions.RevokeAll(ctx, userID)
}

// TokenTTLs exposes the configured lifetimes to the transport for cookie
// max-age.
func (s *AuthService) TokenTTLs() (access, refresh time.Duration) {
	return s.Tokens.accessTTL(), s.Tokens.refreshTTL()
}
