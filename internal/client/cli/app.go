package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/services"
	"github.com/dmitrijs2005/sessionkeeper/internal/filex"
)

// authService is the part of services.AuthService the CLI drives.
type authService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Initialize(ctx context.Context) bool
	IsAuthenticated() bool
	CurrentUser() *models.User
	Subscribe() (<-chan *models.User, func())
	Close() error
}

// App is the interactive client. Commands and prompt answers share in.
type App struct {
	config      *config.Config
	authService authService
	in          *bufio.Scanner
	out         io.Writer

	mu       sync.RWMutex
	userName string
}

// NewApp opens the cookie store, restores the refresh cookie and wires the
// HTTP client to the session coordinator.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if _, err := filex.EnsureParentDir(c.CookieStorePath); err != nil {
		return nil, fmt.Errorf("cookie store: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.CookieStorePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	jar, err := client.NewPersistentJar(cookies.NewSQLiteRepository(db))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if err := jar.Restore(ctx, u); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore cookies: %w", err)
	}

	hc, err := client.NewHTTPClient(client.Options{
		BaseURL:        c.ServerURL,
		Jar:            jar,
		RefreshTimeout: c.RefreshTimeout,
		RequestTimeout: c.RequestTimeout,
		ShareRefresh:   c.ShareRefresh,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	hc.OnAuthFailure(func() {
		printlnFn("Session expired, please login")
	})

	return &App{
		config:      c,
		authService: &closingService{AuthService: services.NewAuthService(hc), close: db.Close},
		in:          bufio.NewScanner(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// closingService closes the cookie store after the client.
type closingService struct {
	*services.AuthService
	close func() error
}

func (s *closingService) Close() error {
	err := s.AuthService.Close()
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

// Run restores a previous session if possible and starts the REPL. It
// returns when the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close()

	printlnFn("Welcome to sessionkeeper CLI (type 'help' for commands)")

	updates, unsubscribe := a.authService.Subscribe()
	defer unsubscribe()
	go a.watchSession(updates)

	if a.authService.Initialize(ctx) {
		if u := a.authService.CurrentUser(); u != nil {
			printlnFn("Session restored for", u.Email)
		}
	}

	runREPL(ctx, a, a.getStatus, a.in)
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

// watchSession keeps the prompt status in line with the published user
// until updates is closed.
func (a *App) watchSession(updates <-chan *models.User) {
	for u := range updates {
		a.mu.Lock()
		if u != nil {
			a.userName = u.Email
		} else {
			a.userName = ""
		}
		a.mu.Unlock()
	}
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.userName == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}
