package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// CookiePolicy describes the refresh cookie attributes.
type CookiePolicy struct {
	Secure bool
	MaxAge time.Duration
}

func (p CookiePolicy) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (p CookiePolicy) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, p.cookie(token, int(p.MaxAge/time.Second)))
}

func (p CookiePolicy) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie("", -1))
}

func refreshCookie(r *http.Request) string {
	c, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
