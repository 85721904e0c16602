package models

import (
	"testing"
	"time"
)

func TestRefreshToken_ValidAt(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rt := &RefreshToken{ExpiresAt: exp}

	if !rt.ValidAt(exp.Add(-time.Nanosecond)) {
		t.Fatal("token must be valid just before expiry")
	}
	if rt.ValidAt(exp) {
		t.Fatal("token must be expired when now == expiresAt")
	}
	if rt.ValidAt(exp.Add(time.Second)) {
		t.Fatal("token must be expired after expiresAt")
	}
}
