package models

import "time"

// Session is an authenticated browser session at the authorization server.
// It is referenced by the opaque SID carried in the sid cookie.
type Session struct {
	SID       string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the session has lapsed at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
