package domain

import "time"

// Session is one signed-in device. Refresh tokens hang off a session and
// are deleted with it.
type Session struct {
	ID           string
	UserID       string
	Fingerprint  string // hash of the client's identifying headers
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// RequestMeta is what the transport tells us about the client.
type RequestMeta struct {
	IPAddress      string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}
