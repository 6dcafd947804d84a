package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// Event names reported to an Observer.
const (
	EventLoginSucceeded       = "login_succeeded"
	EventLoginFailed          = "login_failed"
	EventRegistered           = "user_registered"
	EventRefreshSucceeded     = "refresh_succeeded"
	EventRefreshRejected      = "refresh_rejected"
	EventLogout               = "logout"
	EventSessionCreated       = "session_created"
	EventSessionReused        = "session_reused"
	EventSessionEvicted       = "session_evicted"
	EventSessionRevoked       = "session_revoked"
	EventSessionsRevokedAll   = "sessions_revoked_all"
	EventSessionsSwept        = "sessions_swept"
	EventMFAEnabled           = "mfa_enabled"
	EventMFADisabled          = "mfa_disabled"
	EventRecoveryCodeUsed     = "recovery_code_used"
	EventRecoveryCodesRenewed = "recovery_codes_regenerated"
)

// Event is something security relevant that happened. Attrs must never
// carry secrets, codes or tokens.
type Event struct {
	Name      string
	UserID    string
	SessionID string
	Attrs     []slog.Attr
}

// Observer receives events. Implementations must not block and must not
// fail the operation that produced the event.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// SlogObserver writes events to the request logger.
type SlogObserver struct{}

func (SlogObserver) Observe(ctx context.Context, e Event) {
	attrs := make([]slog.Attr, 0, len(e.Attrs)+3)
	attrs = append(attrs, slog.String("event", e.Name))
	if e.UserID != "" {
		attrs = append(attrs, slog.String("user_id", e.UserID))
	}
	if e.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", e.SessionID))
	}
	attrs = append(attrs, e.Attrs...)

	level := slog.LevelInfo
	switch e.Name {
	case EventLoginFailed, EventRefreshRejected:
		level = slog.LevelWarn
	}
	slogx.FromContext(ctx).LogAttrs(ctx, level, "auth event", attrs...)
}

// NopObserver drops everything.
type NopObserver struct{}

func (NopObserver) Observe(context.Context, Event) {}

func observe(ctx context.Context, o Observer, e Event) {
	if o == nil {
		return
	}
	o.Observe(ctx, e)
}
