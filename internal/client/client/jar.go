package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// PersistentJar is an http.CookieJar that mirrors selected cookies (by
// default only the refresh token) into a cookies.Repository, so they
// survive a restart.
type PersistentJar struct {
	jar    *cookiejar.Jar
	repo   cookies.Repository
	names  map[string]struct{}
	logger logging.Logger
	now    func() time.Time
}

// JarOption configures a PersistentJar.
type JarOption func(*PersistentJar)

// WithPersistedNames replaces the set of cookie names that are persisted.
func WithPersistedNames(names ...string) JarOption {
	return func(j *PersistentJar) {
		j.names = make(map[string]struct{}, len(names))
		for _, n := range names {
			j.names[n] = struct{}{}
		}
	}
}

// WithJarLogger sets where store failures are reported.
func WithJarLogger(l logging.Logger) JarOption {
	return func(j *PersistentJar) { j.logger = l }
}

// WithJarClock replaces time.Now for cookie expiry checks.
func WithJarClock(now func() time.Time) JarOption {
	return func(j *PersistentJar) { j.now = now }
}

// NewPersistentJar returns an empty jar over repo. Call Restore to load what
// an earlier run stored.
func NewPersistentJar(repo cookies.Repository, opts ...JarOption) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &PersistentJar{
		jar:    jar,
		repo:   repo,
		names:  map[string]struct{}{common.RefreshTokenCookieName: {}},
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

// Restore loads the stored cookies for u into memory. Expired ones are
// dropped from the store.
func (j *PersistentJar) Restore(ctx context.Context, u *url.URL) error {
	origin := originOf(u)
	stored, err := j.repo.List(ctx, origin)
	if err != nil {
		return err
	}

	now := j.now()
	restored := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if c.Expired(now) {
			if err := j.repo.Delete(ctx, origin, c.Name); err != nil {
				return err
			}
			continue
		}
		restored = append(restored, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     "/",
			Expires:  c.ExpiresAt,
			HttpOnly: true,
		})
	}
	if len(restored) > 0 {
		j.jar.SetCookies(u, restored)
	}
	return nil
}

// Cookies returns the in-memory cookies for u.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// SetCookies stores cookies in memory and mirrors the persisted names.
// Store failures are logged; the in-memory jar stays authoritative.
func (j *PersistentJar) SetCookies(u *url.URL, cs []*http.Cookie) {
	j.jar.SetCookies(u, cs)

	ctx := context.Background()
	origin := originOf(u)
	now := j.now()

	for _, c := range cs {
		if _, ok := j.names[c.Name]; !ok {
			continue
		}

		expiresAt := c.Expires
		if c.MaxAge > 0 {
			expiresAt = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		var err error
		if c.MaxAge < 0 || c.Value == "" || (!expiresAt.IsZero() && !now.Before(expiresAt)) {
			err = j.repo.Delete(ctx, origin, c.Name)
		} else {
			err = j.repo.Set(ctx, models.StoredCookie{Origin: origin, Name: c.Name, Value: c.Value, ExpiresAt: expiresAt})
		}
		if err != nil {
			j.logger.Warn(ctx, "cookie persistence failed", "cookie", c.Name, "error", err)
		}
	}
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
