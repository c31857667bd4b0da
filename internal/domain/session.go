package domain

import "time"

// Session is a persisted refresh token. The token string itself is the
// primary key; a session is revoked by deleting the row, so the row (not
// the token payload) is the source of truth for revocation.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Live reports whether the session expiry has not passed yet.
// Both sides are normalized to UTC before comparison.
func (s Session) Live(now time.Time) bool {
	return now.UTC().Before(s.ExpiresAt.UTC())
}
