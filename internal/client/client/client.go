package client

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// AuthResult is returned by Register and Login. The refresh token never
// shows up here: it travels only in the cookie jar.
type AuthResult struct {
	AccessToken string
	User        *models.User
}

// Client is the REST API as the session coordinator uses it.
type Client interface {
	Close() error
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Refresh exchanges the refresh cookie for a new access token.
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

// Session is the state the transport needs to authorize requests and to
// recover from an expired access token.
type Session interface {
	AccessToken() string
	Refresh(ctx context.Context) (string, error)
	// Logout revokes the session on the server and clears the refresh
	// cookie. The transport ignores its error.
	Logout(ctx context.Context) error
	// ForceLogout drops local session state without calling the server.
	ForceLogout()
}
