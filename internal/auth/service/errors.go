package service

import "errors"

// ErrorKind is the stable failure taxonomy of the identity core. Transports
// map kinds to status codes; nothing else about a failure crosses the
// boundary.
type ErrorKind int

const (
	KindInvalidCredentials ErrorKind = iota + 1
	KindMFARequired
	KindMFAInvalid
	KindRecoveryCodeInvalid
	KindRefreshInvalid
	KindRefreshExpired
	KindStoreUnavailable

	// Self-service kinds. The caller already owns the account, so these
	// may be precise.
	KindMFAAlreadyEnabled
	KindMFANotEnabled
	KindSessionNotFound
	KindEmailTaken
	KindInvalidRequest
)

var kindInfo = map[ErrorKind]struct{ code, message string }{
	KindInvalidCredentials:  {"invalid_credentials", "invalid email or password"},
	KindMFARequired:         {"mfa_required", "a second factor is required"},
	KindMFAInvalid:          {"mfa_invalid", "invalid verification code"},
	KindRecoveryCodeInvalid: {"recovery_code_invalid", "invalid verification code"},
	KindRefreshInvalid:      {"refresh_invalid", "refresh token is invalid"},
	KindRefreshExpired:      {"refresh_expired", "refresh token has expired"},
	KindStoreUnavailable:    {"store_unavailable", "service temporarily unavailable"},
	KindMFAAlreadyEnabled:   {"mfa_already_enabled", "MFA is already enabled"},
	KindMFANotEnabled:       {"mfa_not_enabled", "MFA is not enabled"},
	KindSessionNotFound:     {"session_not_found", "session not found"},
	KindEmailTaken:          {"email_taken", "an account with this email already exists"},
	KindInvalidRequest:      {"invalid_request", "invalid request"},
}

// Code is the machine readable name of the kind, e.g. "mfa_required".
func (k ErrorKind) Code() string {
	if info, ok := kindInfo[k]; ok {
		return info.code
	}
	return "internal_error"
}

func (k ErrorKind) String() string { return k.Code() }

// Retryable reports whether the same request may succeed later.
func (k ErrorKind) Retryable() bool { return k == KindStoreUnavailable }

// Error is returned by every service operation. Message is safe to show to
// the user; the cause is only for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.Code() + ": " + e.cause.Error()
	}
	return e.Kind.Code()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Code is shorthand for e.Kind.Code().
func (e *Error) Code() string { return e.Kind.Code() }

// Retryable is shorthand for e.Kind.Retryable().
func (e *Error) Retryable() bool { return e.Kind.Retryable() }

func newError(kind ErrorKind) *Error {
	return &Error{Kind: kind, Message: kindInfo[kind].message}
}

// fail builds an error of kind that remembers cause for logging.
func fail(kind ErrorKind, cause error) *Error {
	e := newError(kind)
	e.cause = cause
	return e
}

// invalid is a KindInvalidRequest with a specific message.
func invalid(message string) *Error {
	e := newError(KindInvalidRequest)
	e.Message = message
	return e
}

var (
	ErrInvalidCredentials  = newError(KindInvalidCredentials)
	ErrMFARequired         = newError(KindMFARequired)
	ErrMFAInvalid          = newError(KindMFAInvalid)
	ErrRecoveryCodeInvalid = newError(KindRecoveryCodeInvalid)
	ErrRefreshInvalid      = newError(KindRefreshInvalid)
	ErrRefreshExpired      = newError(KindRefreshExpired)
	ErrStoreUnavailable    = newError(KindStoreUnavailable)
	ErrMFAAlreadyEnabled   = newError(KindMFAAlreadyEnabled)
	ErrMFANotEnabled       = newError(KindMFANotEnabled)
	ErrSessionNotFound     = newError(KindSessionNotFound)
	ErrEmailTaken          = newError(KindEmailTaken)
	ErrInvalidRequest      = newError(KindInvalidRequest)
)

// classify turns anything that is not already an *Error into
// KindStoreUnavailable. Driver and context errors end up here.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return fail(KindStoreUnavailable, err)
}

// KindOf returns the kind of err, or 0 when err is nil. Unclassified errors
// count as KindStoreUnavailable, matching what the services return.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreUnavailable
}
