// Package services contains application services for the sessionkeeper client.
// This file defines the session coordinator: it owns the in-memory access
// token, publishes the current user and lets the transport refresh or drop
// the session.
package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// AuthService is the client-side session coordinator. The access token lives
// only in process memory; the refresh token lives only in the cookie jar.
//
// It implements client.Session, so the retrying transport can read the token,
// refresh it and force a logout.
type AuthService struct {
	client client.Client

	mu    sync.RWMutex
	token string
	user  *models.User

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan *models.User
}

var _ client.Session = (*AuthService)(nil)

// NewAuthService constructs a coordinator over c and attaches it to the
// transport when c supports it.
func NewAuthService(c client.Client) *AuthService {
	s := &AuthService{client: c, subs: make(map[int]chan *models.User)}
	if a, ok := c.(interface{ AttachSession(client.Session) }); ok {
		a.AttachSession(s)
	}
	return s
}

// Register creates the account; the server signs the new user in at once.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	res, err := s.client.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.signIn(res)
	return res.User, nil
}

// Login signs in and publishes the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.signIn(res)
	return res.User, nil
}

// Refresh exchanges the refresh cookie for a new access token. Any failure
// drops the session.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	token, err := s.client.Refresh(ctx)
	if err != nil {
		s.ForceLogout()
		return "", err
	}
	s.SetAccessToken(token)
	return token, nil
}

// Logout asks the server to forget the refresh token and clears local state
// whatever the outcome. The transport error, if any, is returned. The
// retrying transport calls it too when a refresh fails.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.ForceLogout()
	return err
}

// Me fetches the current user through the retrying transport and publishes it.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.publish(user)
	s.mu.Unlock()
	return user, nil
}

// Initialize restores a session from a surviving refresh cookie. It reports
// whether a session is active; failures are not surfaced.
func (s *AuthService) Initialize(ctx context.Context) bool {
	if _, err := s.Refresh(ctx); err != nil {
		return false
	}
	// the token is valid even if the profile cannot be loaded right now
	_, _ = s.Me(ctx)
	return true
}

// AccessToken returns the token the transport attaches, or "" when
// signed out.
func (s *AuthService) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetAccessToken replaces the access token without touching the user.
func (s *AuthService) SetAccessToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// IsAuthenticated reports whether a user is currently published.
func (s *AuthService) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// CurrentUser returns the last published user, nil when signed out.
func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// ForceLogout clears the token and the user without calling the server.
func (s *AuthService) ForceLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.user != nil {
		s.user = nil
		s.publish(nil)
	}
}

// Subscribe returns a channel that receives the current user immediately and
// every change after that. A slow reader only sees the newest value. The
// returned func unsubscribes and closes the channel.
func (s *AuthService) Subscribe() (<-chan *models.User, func()) {
	ch := make(chan *models.User, 1)

	// mu first, so no publish can slip between the snapshot and registration
	s.mu.RLock()
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.user
	s.subMu.Unlock()
	s.mu.RUnlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Close ends every subscription and closes the client. Unsubscribing after
// Close is a no-op.
func (s *AuthService) Close() error {
	s.subMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()
	return s.client.Close()
}

func (s *AuthService) signIn(res *client.AuthResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = res.AccessToken
	s.user = res.User
	s.publish(res.User)
}

// publish must be called with mu held.
func (s *AuthService) publish(u *models.User) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}
