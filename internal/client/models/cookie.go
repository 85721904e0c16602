package models

import "time"

// StoredCookie is a cookie persisted between CLI runs. Origin is the
// scheme and host it was received from. A zero ExpiresAt means the cookie
// lives only as long as the process.
type StoredCookie struct {
	Origin    string
	Name      string
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the cookie must no longer be sent at now.
func (c StoredCookie) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
