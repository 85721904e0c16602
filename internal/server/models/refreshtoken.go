package models

import "time"

// RefreshToken is the server-side record of an issued refresh token. The
// token is usable only while the row exists and the current time is strictly
// before ExpiresAt.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the record is still usable at now.
func (t *RefreshToken) ValidAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
