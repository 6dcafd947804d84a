package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

const (
	DefaultMaxSessions = 3
	DefaultIdleTimeout = 30 * 24 * time.Hour
)

// SessionRegistry tracks signed-in devices and caps how many a user may
// hold at once. When the cap is reached the oldest session by creation
// time is evicted along with its refresh tokens.
type SessionRegistry struct {
	Store       store.Store
	MaxSessions int

	// ReuseDevice rebinds a login to an existing session with the same
	// fingerprint instead of opening a new one. Off by default: every
	// login gets its own session.
	ReuseDevice bool

	Observer Observer
	Now      func() time.Time
}

// Binding is the result of attaching a login to a session.
type Binding struct {
	Session domain.Session
	Reused  bool
	Evicted []domain.Session
}

func (r *SessionRegistry) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *SessionRegistry) maxSessions() int {
	if r.MaxSessions > 0 {
		return r.MaxSessions
	}
	return DefaultMaxSessions
}

// Fingerprint hashes the headers that describe a browser configuration.
// Two browsers with identical headers collapse to one fingerprint, so this
// buckets devices and proves nothing about identity.
func Fingerprint(meta domain.RequestMeta) string {
	h := sha256.New()
	for _, v := range []string{meta.UserAgent, meta.AcceptLanguage, meta.AcceptEncoding} {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Create binds userID's login from meta to a new session inside tx,
// evicting the oldest sessions until there is room for it. With
// ReuseDevice a session with the same fingerprint is rebound instead.
//
// The user row is locked first, so concurrent logins for one user are
// serialised and cannot both skip eviction.
func (r *SessionRegistry) Create(ctx context.Context, tx store.Tx, userID string, meta domain.RequestMeta) (Binding, error) {
	if err := tx.Users().LockUser(ctx, userID); err != nil {
		return Binding{}, fmt.Errorf("lock user: %w", err)
	}

	now := r.now()
	fp := Fingerprint(meta)

	if r.ReuseDevice {
		b, found, err := r.rebind(ctx, tx, userID, fp, meta, now)
		if err != nil || found {
			return b, err
		}
	}

	count, err := tx.Sessions().CountUserSessions(ctx, userID)
	if err != nil {
		return Binding{}, fmt.Errorf("count sessions: %w", err)
	}

	var evicted []domain.Session
	if over := count - r.maxSessions() + 1; over > 0 {
		evicted, err = tx.Sessions().OldestUserSessions(ctx, userID, over)
		if err != nil {
			return Binding{}, fmt.Errorf("list oldest sessions: %w", err)
		}
		for _, old := range evicted {
			if err := deleteSession(ctx, tx, old.ID); err != nil {
				return Binding{}, err
			}
		}
	}

	sess := domain.Session{
		ID:           idx.NewAt(now).String(),
		UserID:       userID,
		Fingerprint:  fp,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
		return Binding{}, fmt.Errorf("create session: %w", err)
	}
	return Binding{Session: sess, Evicted: evicted}, nil
}

func (r *SessionRegistry) rebind(ctx context.Context, tx store.Tx, userID, fp string, meta domain.RequestMeta, now time.Time) (Binding, bool, error) {
	existing, err := tx.Sessions().GetSessionByFingerprint(ctx, userID, fp)
	if errors.Is(err, store.ErrNotFound) {
		return Binding{}, false, nil
	}
	if err != nil {
		return Binding{}, false, fmt.Errorf("find session by fingerprint: %w", err)
	}
	if err := tx.Sessions().RebindSession(ctx, existing.ID, meta.IPAddress, meta.UserAgent, now); err != nil {
		return Binding{}, false, fmt.Errorf("rebind session: %w", err)
	}
	existing.IPAddress = meta.IPAddress
	existing.UserAgent = meta.UserAgent
	existing.LastActiveAt = now
	return Binding{Session: existing, Reused: true}, true, nil
}

// Open runs Create in its own transaction and reports the outcome.
func (r *SessionRegistry) Open(ctx context.Context, userID string, meta domain.RequestMeta) (domain.Session, error) {
	var b Binding
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		b, err = r.Create(ctx, tx, userID, meta)
		return err
	})
	if err != nil {
		return domain.Session{}, classify(err)
	}
	r.report(ctx, b)
	return b.Session, nil
}

// report emits the events for a committed binding. Eviction is a policy
// action, never an error.
func (r *SessionRegistry) report(ctx context.Context, b Binding) {
	for _, old := range b.Evicted {
		observe(ctx, r.Observer, Event{
			Name:      EventSessionEvicted,
			UserID:    old.UserID,
			SessionID: old.ID,
			Attrs: []slog.Attr{
				slog.String("replaced_by", b.Session.ID),
				slog.Int("max_sessions", r.maxSessions()),
			},
		})
	}
	name := EventSessionCreated
	if b.Reused {
		name = EventSessionReused
	}
	observe(ctx, r.Observer, Event{Name: name, UserID: b.Session.UserID, SessionID: b.Session.ID})
}

// Touch marks the session active now. Callers decide how often.
func (r *SessionRegistry) Touch(ctx context.Context, sessionID string) error {
	err := r.Store.Sessions().TouchSession(ctx, sessionID, r.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return classify(fmt.Errorf("touch session: %w", err))
	}
	return nil
}

func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	s, err := r.Store.Sessions().GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, classify(fmt.Errorf("get session: %w", err))
	}
	return s, nil
}

// List returns the user's sessions, most recently active first.
func (r *SessionRegistry) List(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := r.Store.Sessions().ListUserSessions(ctx, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("list sessions: %w", err))
	}
	return sessions, nil
}

// Revoke deletes one of userID's sessions and its refresh tokens. A session
// owned by someone else is reported as not found.
func (r *SessionRegistry) Revoke(ctx context.Context, userID, sessionID string) error {
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		s, err := tx.Sessions().GetSession(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && s.UserID != userID) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return deleteSession(ctx, tx, sessionID)
	})
	if err != nil {
		return classify(err)
	}
	observe(ctx, r.Observer, Event{Name: EventSessionRevoked, UserID: userID, SessionID: sessionID})
	return nil
}

// RevokeAll signs the user out everywhere: every session and every refresh
// token goes, so nothing left on a device can mint new access tokens.
func (r *SessionRegistry) RevokeAll(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().DeleteUserRefreshTokens(ctx, userID); err != nil {
			return fmt.Errorf("delete refresh tokens: %w", err)
		}
		var err error
		if n, err = tx.Sessions().DeleteUserSessions(ctx, userID); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, classify(err)
	}
	observe(ctx, r.Observer, Event{
		Name:   EventSessionsRevokedAll,
		UserID: userID,
		Attrs:  []slog.Attr{slog.Int64("sessions", n)},
	})
	return n, nil
}

// SweepInactive deletes sessions idle for longer than idle. It is best
// effort: the error is for the caller to log.
func (r *SessionRegistry) SweepInactive(ctx context.Context, idle time.Duration) (int64, error) {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	before := r.now().Add(-idle)
	n, err := r.Store.Sessions().DeleteInactiveSessions(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("sweep inactive sessions: %w", err)
	}
	if n > 0 {
		slogx.FromContext(ctx).Info("swept inactive sessions", "count", n, "idle", idle)
		observe(ctx, r.Observer, Event{Name: EventSessionsSwept, Attrs: []slog.Attr{slog.Int64("sessions", n)}})
	}
	return n, nil
}

func deleteSession(ctx context.Context, tx store.Tx, sessionID string) error {
	if err := tx.RefreshTokens().DeleteSessionRefreshTokens(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session refresh tokens: %w", err)
	}
	if err := tx.Sessions().DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
