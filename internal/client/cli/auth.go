package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// Register prompts for an email and password and creates the account. The
// server signs the new user in straight away.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials(common.MinPasswordLength)
	if err != nil {
		return err
	}

	u, err := a.authService.Register(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn("Registered and logged in as", u.Email)
	return nil
}

// Login prompts for credentials and signs in. Password length is left to the
// server so accounts made under an older policy can still log in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials(0)
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn("Logged in as", u.Email)
	return nil
}

// Me loads the profile through the retrying transport, so an expired access
// token is refreshed on the way.
func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	printlnFn("id:     ", u.ID)
	printlnFn("email:  ", u.Email)
	if !u.CreatedAt.IsZero() {
		printlnFn("created:", u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// WhoAmI prints the locally known user without calling the server.
func (a *App) WhoAmI(_ context.Context) error {
	u := a.authService.CurrentUser()
	if u == nil {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn(u.Email)
	return nil
}

// Logout always ends the local session; a server error is still reported.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	printlnFn("Logged out")
	return err
}

// credentials asks for an email and a password of at least minLen bytes.
func (a *App) credentials(minLen int) (string, string, error) {
	p := newPrompter(a.in, a.out)
	email, err := p.email()
	if err != nil {
		return "", "", err
	}
	password, err := p.password(minLen)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)
	return email, string(password), nil
}

// describe turns client errors into short messages for the prompt.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return "session expired, please login"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}
